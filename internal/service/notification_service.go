package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
)

var ErrDeviceNotFound = errors.New("device not found")

// NotificationService writes in-app notifications and fans them out to the
// user's registered devices
type NotificationService struct {
	repo *repository.NotificationRepository
	push *PushService
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo *repository.NotificationRepository, push *PushService) *NotificationService {
	return &NotificationService{repo: repo, push: push}
}

// Notify records an in-app notification and pushes it to the user's
// devices. Best effort: failures are logged so callers never roll back the
// action that produced the notification.
func (s *NotificationService) Notify(userID int64, notificationType, title, body string) {
	n := &models.Notification{
		UserID: userID,
		Type:   notificationType,
		Title:  title,
		Body:   body,
	}
	if err := s.repo.CreateNotification(n); err != nil {
		log.Printf("notification: failed to create for user %d: %v", userID, err)
		return
	}

	devices, err := s.repo.ListDeviceTokensByUser(userID)
	if err != nil {
		log.Printf("notification: failed to list devices for user %d: %v", userID, err)
		return
	}
	for _, device := range devices {
		s.push.Publish(context.Background(), device, title, body)
	}
}

// List retrieves a page of a user's notifications
func (s *NotificationService) List(userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListNotifications(userID, unreadOnly, limit, offset)
}

// CountUnread counts a user's unread notifications
func (s *NotificationService) CountUnread(userID int64) (int, error) {
	return s.repo.CountUnread(userID)
}

// MarkRead marks one notification as read
func (s *NotificationService) MarkRead(userID, notificationID int64) error {
	return s.repo.MarkRead(userID, notificationID)
}

// MarkAllRead marks every notification as read
func (s *NotificationService) MarkAllRead(userID int64) error {
	return s.repo.MarkAllRead(userID)
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(userID, notificationID int64) error {
	return s.repo.DeleteNotification(userID, notificationID)
}

// RegisterDevice registers a device token for push delivery, creating the
// SNS endpoint when push is enabled
func (s *NotificationService) RegisterDevice(ctx context.Context, userID int64, token, platform string) (*models.DeviceToken, error) {
	if platform != models.PlatformIOS && platform != models.PlatformAndroid {
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}

	endpointARN, err := s.push.RegisterDevice(ctx, token)
	if err != nil {
		return nil, err
	}

	device := &models.DeviceToken{
		UserID:      userID,
		Token:       token,
		Platform:    platform,
		EndpointARN: endpointARN,
	}
	if err := s.repo.UpsertDeviceToken(device); err != nil {
		return nil, err
	}
	return device, nil
}

// UnregisterDevice removes a device registration and its SNS endpoint
func (s *NotificationService) UnregisterDevice(ctx context.Context, userID int64, token string) error {
	device, err := s.repo.GetDeviceToken(token)
	if err != nil {
		return err
	}
	if device == nil || device.UserID != userID {
		return ErrDeviceNotFound
	}

	if err := s.push.UnregisterDevice(ctx, device.EndpointARN); err != nil {
		log.Printf("notification: failed to delete endpoint %s: %v", device.EndpointARN, err)
	}
	return s.repo.DeleteDeviceToken(userID, token)
}
