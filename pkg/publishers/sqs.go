package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// sqsClient is the part of *sqs.Client the publisher calls.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type sqsPublisher struct {
	id       string
	queueURL string
	client   sqsClient
	log      Logger
}

func newSQSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.AWSConfig)
	if err != nil {
		return nil, err
	}
	endpoint := endpointOverride(cfg.SQS.AWSConfig)

	return &sqsPublisher{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		client: sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			o.BaseEndpoint = endpoint
		}),
		log: orDiscard(log),
	}, nil
}

func (s *sqsPublisher) ID() string   { return s.id }
func (s *sqsPublisher) Type() string { return TypeSQS }

// Publish enqueues the event as one message.
func (s *sqsPublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := newBrokerMessage(evt, isFIFO(s.queueURL))
	if err != nil {
		return err
	}

	attrs := make(map[string]types.MessageAttributeValue, len(msg.attrs))
	for name, value := range msg.attrs {
		attrs[name] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(value)}
	}

	out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:               aws.String(s.queueURL),
		MessageBody:            aws.String(msg.body),
		MessageAttributes:      attrs,
		MessageGroupId:         msg.groupID,
		MessageDeduplicationId: msg.dedupID,
	})
	if err != nil {
		s.log.ErrorObj("article enqueue failed", "publisher_sqs_error", map[string]any{
			"publisher_id": s.id,
			"article_id":   evt.ArticleID,
			"error":        err.Error(),
		})
		return fmt.Errorf("sqs send to %s: %w", s.queueURL, err)
	}

	s.log.DebugObj("article enqueued", "publisher_sqs_delivery", map[string]any{
		"publisher_id": s.id,
		"article_id":   evt.ArticleID,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
