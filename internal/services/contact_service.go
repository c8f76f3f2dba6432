package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/kdblock/panel/internal/models"
)

// ContactMessage is a visitor submission from the public contact form.
type ContactMessage struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ContactService forwards visitor messages to the office inbox.
type ContactService interface {
	Forward(ctx context.Context, msg *ContactMessage) error
}

// AWSSESContactService sends contact-form messages using AWS SES.
type AWSSESContactService struct {
	sesClient   *ses.Client
	fromAddress string
	officeInbox string
	logger      *slog.Logger
}

func NewAWSSESContactService(region, fromAddress, officeInbox string, logger *slog.Logger) (*AWSSESContactService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESContactService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		officeInbox: officeInbox,
		logger:      logger,
	}, nil
}

// Forward sends the visitor's message to the office inbox with the
// visitor's address as reply-to, so staff can answer directly.
func (s *AWSSESContactService) Forward(ctx context.Context, msg *ContactMessage) error {
	phone := msg.Phone
	if phone == "" {
		phone = "not provided"
	}

	textBody := fmt.Sprintf(`Contact form submission

From: %s <%s>
Phone: %s
Received: %s

%s
`, msg.Name, msg.Email, phone, time.Now().UTC().Format(time.RFC1123), msg.Message)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.officeInbox},
		},
		ReplyToAddresses: []string{msg.Email},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("[Contact form] Message from " + msg.Name),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to forward contact message via SES", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("contact message forwarded",
		slog.String("message_id", *result.MessageId))

	return nil
}
