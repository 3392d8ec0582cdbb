// Package contact dispatches visitor inquiries from the public contact form
// to the farm's inbox.
package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

// Mailer sends one plain-text message.
type Mailer interface {
	SendEmail(ctx context.Context, to, replyTo, subject, body string) error
}

// SESMailer implements Mailer on AWS SESv2.
type SESMailer struct {
	client *sesv2.Client
	sender string
}

// NewSESMailer creates a mailer sending from the given verified address.
func NewSESMailer(client *sesv2.Client, sender string) *SESMailer {
	return &SESMailer{client: client, sender: sender}
}

func (m *SESMailer) SendEmail(ctx context.Context, to, replyTo, subject, body string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.sender),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body:    &types.Body{Text: &types.Content{Data: aws.String(body)}},
			},
		},
	}
	if replyTo != "" {
		input.ReplyToAddresses = []string{replyTo}
	}
	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}

// Inquiry is one submitted contact form.
type Inquiry struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Service validates inquiries and hands them to the mailer.
type Service struct {
	mailer    Mailer
	recipient string
	logger    *zap.Logger
}

// NewService creates a contact service delivering to the given inbox.
func NewService(mailer Mailer, recipient string, logger *zap.Logger) *Service {
	return &Service{mailer: mailer, recipient: recipient, logger: logger}
}

// Dispatch sends the inquiry. Delivery failures surface to the caller; there
// is no retry or queue behind the form.
func (s *Service) Dispatch(ctx context.Context, inquiry *Inquiry) error {
	if strings.TrimSpace(inquiry.Name) == "" {
		return &pastures.ValidationError{Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(inquiry.Email) == "" {
		return &pastures.ValidationError{Field: "email", Reason: "required"}
	}
	if !strings.Contains(inquiry.Email, "@") {
		return &pastures.ValidationError{Field: "email", Reason: "not a valid address"}
	}
	if strings.TrimSpace(inquiry.Message) == "" {
		return &pastures.ValidationError{Field: "message", Reason: "required"}
	}

	subject := inquiry.Subject
	if subject == "" {
		subject = "New inquiry from the farm website"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s <%s>\n", inquiry.Name, inquiry.Email)
	if inquiry.Phone != "" {
		fmt.Fprintf(&body, "Phone: %s\n", inquiry.Phone)
	}
	body.WriteString("\n")
	body.WriteString(inquiry.Message)
	body.WriteString("\n")

	if err := s.mailer.SendEmail(ctx, s.recipient, inquiry.Email, subject, body.String()); err != nil {
		return err
	}
	s.logger.Info("contact inquiry dispatched", zap.String("from", inquiry.Email))
	return nil
}
