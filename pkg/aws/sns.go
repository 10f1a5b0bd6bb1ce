package aws

import (
	"context"
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// EventTypeAttribute is the message attribute subscribers filter on.
const EventTypeAttribute = "event_type"

// SNSPublisher publishes batch events.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

// SNSClient publishes JSON events to a topic.
type SNSClient struct {
	client    *sns.Client
	eventType string
}

// NewSNSClient creates a publisher. Messages carry the event_type attribute
// "batch_completed".
func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg), eventType: "batch_completed"}
}

func (s *SNSClient) Publish(ctx context.Context, topicArn string, message []byte) error {
	if topicArn == "" {
		return errors.New("sns: empty topic arn")
	}
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(topicArn),
		Message:  sdkaws.String(string(message)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			EventTypeAttribute: {DataType: sdkaws.String("String"), StringValue: sdkaws.String(s.eventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topicArn, err)
	}
	return nil
}
