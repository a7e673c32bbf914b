package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. With no from address
// configured the service starts disabled and silently skips every send.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail greets a newly registered parent
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to PennyJar!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #2e8b57;">Welcome to PennyJar!</h1>
		<p>Hi %s,</p>
		<p>Your account is ready. Add your children, set up their weekly allowance and start their first savings goal.</p>
		<p style="text-align: center;">
			<a href="%s" style="display: inline-block; padding: 12px 30px; background-color: #2e8b57; color: white; text-decoration: none; border-radius: 5px;">Open PennyJar</a>
		</p>
		<p style="font-size: 12px; color: #666;">This is an automated email from PennyJar. Please do not reply.</p>
	</div>
</body>
</html>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your PennyJar account is ready. Add your children, set up their weekly allowance and start their first savings goal.

%s

---
This is an automated email from PennyJar. Please do not reply.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendGiftLinkEmail shares a gift link with a relative
func (s *EmailService) SendGiftLinkEmail(ctx context.Context, toEmail, childName, token, message string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): gift link to %s", toEmail)
		return nil
	}

	giftURL := fmt.Sprintf("%s/gift/%s", s.appBaseURL, token)
	subject := fmt.Sprintf("Send a gift to %s", childName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #2e8b57;">A gift for %s</h1>
		<p>%s</p>
		<p style="text-align: center;">
			<a href="%s" style="display: inline-block; padding: 12px 30px; background-color: #2e8b57; color: white; text-decoration: none; border-radius: 5px;">Send a Gift</a>
		</p>
		<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
	</div>
</body>
</html>
`, childName, message, giftURL, giftURL)

	textBody := fmt.Sprintf(`A gift for %s

%s

Use this link to send a gift:
%s
`, childName, message, giftURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendThankYouEmail delivers a child's thank-you note to the gift giver
func (s *EmailService) SendThankYouEmail(ctx context.Context, toEmail, giverName, childName, note string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): thank-you to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("A thank-you note from %s", childName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #2e8b57;">Thank you, %s!</h1>
		<p>%s wrote you a note:</p>
		<blockquote style="border-left: 4px solid #2e8b57; margin: 0; padding-left: 16px;">%s</blockquote>
		<p style="font-size: 12px; color: #666;">Sent with PennyJar.</p>
	</div>
</body>
</html>
`, giverName, childName, note)

	textBody := fmt.Sprintf(`Thank you, %s!

%s wrote you a note:

%s

---
Sent with PennyJar.
`, giverName, childName, note)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
