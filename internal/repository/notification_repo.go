package repository

import (
	"database/sql"
	"fmt"

	"pennyjar/internal/database"
	"pennyjar/internal/models"
)

// NotificationRepository handles database operations for in-app
// notifications and push device registrations
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts an in-app notification
func (r *NotificationRepository) CreateNotification(n *models.Notification) error {
	query := "INSERT INTO notifications (user_id, type, title, body) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, n.UserID, n.Type, n.Title, n.Body)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	n.ID = id
	return nil
}

// ListNotifications retrieves a page of a user's notifications, unread
// first then newest first, optionally unread only
func (r *NotificationRepository) ListNotifications(userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	query := "SELECT id, user_id, type, title, body, is_read, created_at FROM notifications WHERE user_id = ?"
	if unreadOnly {
		query += " AND is_read = " + r.db.Dialect.BoolValue(false)
	}
	query += " ORDER BY is_read ASC, created_at DESC, id DESC LIMIT ? OFFSET ?"

	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountUnread counts a user's unread notifications
func (r *NotificationRepository) CountUnread(userID int64) (int, error) {
	query := "SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = " + r.db.Dialect.BoolValue(false)
	var count int
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read
func (r *NotificationRepository) MarkRead(userID, notificationID int64) error {
	query := "UPDATE notifications SET is_read = " + r.db.Dialect.BoolValue(true) + " WHERE id = ? AND user_id = ?"
	if _, err := r.db.Exec(query, notificationID, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification for the user as read
func (r *NotificationRepository) MarkAllRead(userID int64) error {
	dialect := r.db.Dialect
	query := "UPDATE notifications SET is_read = " + dialect.BoolValue(true) +
		" WHERE user_id = ? AND is_read = " + dialect.BoolValue(false)
	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// DeleteNotification removes one of the user's notifications
func (r *NotificationRepository) DeleteNotification(userID, notificationID int64) error {
	if _, err := r.db.Exec("DELETE FROM notifications WHERE id = ? AND user_id = ?", notificationID, userID); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// UpsertDeviceToken registers a device, replacing any prior registration
// for the same token string
func (r *NotificationRepository) UpsertDeviceToken(dt *models.DeviceToken) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM device_tokens WHERE token = ?", dt.Token); err != nil {
		return fmt.Errorf("failed to replace device token: %w", err)
	}

	id, err := tx.ExecReturningID(
		"INSERT INTO device_tokens (user_id, token, platform, endpoint_arn) VALUES (?, ?, ?, ?)",
		dt.UserID, dt.Token, dt.Platform, dt.EndpointARN,
	)
	if err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	dt.ID = id

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetDeviceToken retrieves a registration by token string
func (r *NotificationRepository) GetDeviceToken(token string) (*models.DeviceToken, error) {
	query := "SELECT id, user_id, token, platform, endpoint_arn, created_at FROM device_tokens WHERE token = ?"
	dt := &models.DeviceToken{}
	err := r.db.QueryRow(query, token).Scan(&dt.ID, &dt.UserID, &dt.Token, &dt.Platform, &dt.EndpointARN, &dt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device token: %w", err)
	}
	return dt, nil
}

// ListDeviceTokensByUser retrieves a user's registered devices
func (r *NotificationRepository) ListDeviceTokensByUser(userID int64) ([]models.DeviceToken, error) {
	query := "SELECT id, user_id, token, platform, endpoint_arn, created_at FROM device_tokens WHERE user_id = ?"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []models.DeviceToken
	for rows.Next() {
		var dt models.DeviceToken
		if err := rows.Scan(&dt.ID, &dt.UserID, &dt.Token, &dt.Platform, &dt.EndpointARN, &dt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, dt)
	}
	return tokens, rows.Err()
}

// DeleteDeviceToken removes a registration owned by the user
func (r *NotificationRepository) DeleteDeviceToken(userID int64, token string) error {
	if _, err := r.db.Exec("DELETE FROM device_tokens WHERE user_id = ? AND token = ?", userID, token); err != nil {
		return fmt.Errorf("failed to delete device token: %w", err)
	}
	return nil
}
