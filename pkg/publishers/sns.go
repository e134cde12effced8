package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsClient is the part of *sns.Client the publisher calls.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type snsPublisher struct {
	id       string
	topicARN string
	client   snsClient
	log      Logger
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.AWSConfig)
	if err != nil {
		return nil, err
	}
	endpoint := endpointOverride(cfg.SNS.AWSConfig)

	return &snsPublisher{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		client: sns.NewFromConfig(awsCfg, func(o *sns.Options) {
			o.BaseEndpoint = endpoint
		}),
		log: orDiscard(log),
	}, nil
}

func (s *snsPublisher) ID() string   { return s.id }
func (s *snsPublisher) Type() string { return TypeSNS }

// Publish broadcasts the event on the topic.
func (s *snsPublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := newBrokerMessage(evt, isFIFO(s.topicARN))
	if err != nil {
		return err
	}

	attrs := make(map[string]types.MessageAttributeValue, len(msg.attrs))
	for name, value := range msg.attrs {
		attrs[name] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(value)}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:               aws.String(s.topicARN),
		Message:                aws.String(msg.body),
		MessageAttributes:      attrs,
		MessageGroupId:         msg.groupID,
		MessageDeduplicationId: msg.dedupID,
	})
	if err != nil {
		s.log.ErrorObj("article broadcast failed", "publisher_sns_error", map[string]any{
			"publisher_id": s.id,
			"article_id":   evt.ArticleID,
			"error":        err.Error(),
		})
		return fmt.Errorf("sns publish to %s: %w", s.topicARN, err)
	}

	s.log.DebugObj("article broadcast", "publisher_sns_delivery", map[string]any{
		"publisher_id": s.id,
		"article_id":   evt.ArticleID,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
