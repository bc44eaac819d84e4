package service

import (
	"context"
	"log/slog"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/middleware"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsPublisher is the part of *sns.Client the messenger uses.
type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSMessenger sends SMS through AWS SNS direct publish.
type SNSMessenger struct {
	client snsPublisher
	cfg    *config.SMSConfig
}

// NewSNSMessenger builds the SNS client, picking credentials by auth_type.
func NewSNSMessenger(cfg *config.Config) Messenger {
	var awsCfgOpts []func(*awsconfig.LoadOptions) error
	awsCfgOpts = append(awsCfgOpts, awsconfig.WithRegion(cfg.SMS.Region))

	switch cfg.SMS.AuthType {
	case "static_credentials":
		slog.Info("Configuring SNS with static credentials.")
		if cfg.SMS.AccessKeyID == "" || cfg.SMS.SecretAccessKey == "" {
			slog.Error("SMS auth_type is 'static_credentials' but access_key_id or secret_access_key is missing in config.")
			panic("missing static credentials for SNS")
		}
		creds := credentials.NewStaticCredentialsProvider(cfg.SMS.AccessKeyID, cfg.SMS.SecretAccessKey, "")
		awsCfgOpts = append(awsCfgOpts, awsconfig.WithCredentialsProvider(creds))
	case "iam_role":
		slog.Info("Configuring SNS with IAM Role credentials.")
	default:
		slog.Warn("Unknown SMS auth_type specified, defaulting to IAM Role.", "type", cfg.SMS.AuthType)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsCfgOpts...)
	if err != nil {
		slog.Error("Failed to load AWS config for SNS", "error", err)
		panic(err)
	}

	return &SNSMessenger{
		client: sns.NewFromConfig(awsCfg),
		cfg:    &cfg.SMS,
	}
}

func (m *SNSMessenger) Text(ctx context.Context, phoneNumber, body string) error {
	logger := middleware.GetLogger(ctx)

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if m.cfg.SenderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(m.cfg.SenderID),
		}
	}

	out, err := m.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phoneNumber),
		Message:           aws.String(body),
		MessageAttributes: attrs,
	})
	if err != nil {
		logger.Error("Failed to send text via SNS", "error", err, "to", phoneNumber)
		return err
	}

	logger.Info("Text sent successfully via SNS", "to", phoneNumber, "message_id", aws.ToString(out.MessageId))
	return nil
}
