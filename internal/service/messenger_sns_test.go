package service

import (
	"context"
	"errors"
	"testing"

	"go_phrase_texter/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	input *sns.PublishInput
	err   error
}

func (f *fakePublisher) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSMessenger_Text(t *testing.T) {
	pub := &fakePublisher{}
	m := &SNSMessenger{client: pub, cfg: &config.SMSConfig{SenderID: "Phrases"}}

	require.NoError(t, m.Text(context.Background(), "+15551234567", "What does \"hola\" mean?"))

	require.NotNil(t, pub.input)
	assert.Equal(t, "+15551234567", aws.ToString(pub.input.PhoneNumber))
	assert.Equal(t, "What does \"hola\" mean?", aws.ToString(pub.input.Message))
	assert.Equal(t, "Transactional", aws.ToString(pub.input.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
	assert.Equal(t, "Phrases", aws.ToString(pub.input.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestSNSMessenger_Text_Error(t *testing.T) {
	pub := &fakePublisher{err: errors.New("throttled")}
	m := &SNSMessenger{client: pub, cfg: &config.SMSConfig{}}

	err := m.Text(context.Background(), "+15551234567", "hi")
	assert.EqualError(t, err, "throttled")
	_, hasSender := pub.input.MessageAttributes["AWS.SNS.SMS.SenderID"]
	assert.False(t, hasSender)
}

func TestNewMessenger_DefaultsToLog(t *testing.T) {
	for _, typ := range []string{"log", "", "carrier-pigeon"} {
		m := NewMessenger(&config.Config{SMS: config.SMSConfig{Type: typ}})
		assert.IsType(t, &LogMessenger{}, m, typ)
		assert.NoError(t, m.Text(context.Background(), "+15550000000", "hi"))
	}
}
