package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"pennyjar/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// PushService delivers push notifications through SNS platform endpoints.
// With no platform application ARN configured the service starts disabled:
// device registrations still succeed (with an empty endpoint) and publishes
// are skipped.
type PushService struct {
	client      *sns.Client
	platformARN string
	enabled     bool
}

// NewPushService creates a new push service
func NewPushService(awsRegion, platformARN string) (*PushService, error) {
	if platformARN == "" {
		log.Println("Push service disabled: SNS_PLATFORM_ARN not configured")
		return &PushService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Push service enabled: region=%s", awsRegion)
	return &PushService{
		client:      sns.NewFromConfig(cfg),
		platformARN: platformARN,
		enabled:     true,
	}, nil
}

// IsEnabled returns whether the push service is enabled
func (s *PushService) IsEnabled() bool {
	return s.enabled
}

// RegisterDevice creates an SNS platform endpoint for a device token and
// returns its ARN
func (s *PushService) RegisterDevice(ctx context.Context, token string) (string, error) {
	if !s.enabled {
		return "", nil
	}

	out, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(s.platformARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create platform endpoint: %w", err)
	}
	return aws.ToString(out.EndpointArn), nil
}

// UnregisterDevice deletes the SNS platform endpoint
func (s *PushService) UnregisterDevice(ctx context.Context, endpointARN string) error {
	if !s.enabled || endpointARN == "" {
		return nil
	}

	_, err := s.client.DeleteEndpoint(ctx, &sns.DeleteEndpointInput{
		EndpointArn: aws.String(endpointARN),
	})
	if err != nil {
		return fmt.Errorf("failed to delete platform endpoint: %w", err)
	}
	return nil
}

// Publish sends a notification to one registered device. Delivery is best
// effort; a dead endpoint is logged and skipped.
func (s *PushService) Publish(ctx context.Context, device models.DeviceToken, title, body string) {
	if !s.enabled || device.EndpointARN == "" {
		return
	}

	payload, err := buildPushPayload(device.Platform, title, body)
	if err != nil {
		log.Printf("push: failed to build payload: %v", err)
		return
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(device.EndpointARN),
		Message:          aws.String(payload),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		log.Printf("push: failed to publish to %s: %v", device.EndpointARN, err)
	}
}

func buildPushPayload(platform, title, body string) (string, error) {
	var inner []byte
	var err error
	var key string

	switch platform {
	case models.PlatformIOS:
		key = "APNS"
		inner, err = json.Marshal(map[string]interface{}{
			"aps": map[string]interface{}{
				"alert": map[string]string{"title": title, "body": body},
			},
		})
	default:
		key = "GCM"
		inner, err = json.Marshal(map[string]interface{}{
			"notification": map[string]string{"title": title, "body": body},
		})
	}
	if err != nil {
		return "", err
	}

	outer, err := json.Marshal(map[string]string{
		"default": body,
		key:       string(inner),
	})
	if err != nil {
		return "", err
	}
	return string(outer), nil
}
