package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	config "github.com/Fooxyj/dacha/configs"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSender mails the staff inbox through Amazon SES.
type EmailSender struct {
	client    sesAPI
	sender    string
	recipient string
}

// NewEmailSender returns nil, nil when sender or staff address is missing.
func NewEmailSender(ctx context.Context, cfg config.EmailConfig) (*EmailSender, error) {
	if cfg.SenderEmail == "" || cfg.StaffEmail == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return &EmailSender{
		client:    ses.NewFromConfig(awsCfg),
		sender:    cfg.SenderEmail,
		recipient: cfg.StaffEmail,
	}, nil
}

func (e *EmailSender) Send(ctx context.Context, subject, text, html string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(e.sender),
		Destination: &types.Destination{
			ToAddresses: []string{e.recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(html),
				},
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(text),
				},
			},
		},
	}

	if _, err := e.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Debug("staff email sent", "subject", subject, "to", e.recipient)
	return nil
}
