package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves an aws.Config for c, preferring static credentials when present.
func loadAWSConfig(ctx context.Context, c AWSConfig) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(c.Region)}
	if c.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// endpointOverride returns a pointer for the service BaseEndpoint option, nil when unset.
func endpointOverride(c AWSConfig) *string {
	if c.Endpoint == "" {
		return nil
	}
	return aws.String(c.Endpoint)
}

// brokerMessage is an event prepared for SQS or SNS.
type brokerMessage struct {
	body  string
	attrs map[string]string
	// groupID and dedupID are set only for FIFO targets. Deduplicating on
	// the article ID keeps a re-run from enqueueing the same article twice
	// within the broker's deduplication window.
	groupID *string
	dedupID *string
}

func newBrokerMessage(evt Event, fifo bool) (brokerMessage, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return brokerMessage{}, fmt.Errorf("marshal event: %w", err)
	}
	msg := brokerMessage{body: string(payload), attrs: evt.attributes()}
	if fifo {
		group := evt.Source
		if group == "" {
			group = "articles"
		}
		msg.groupID = aws.String(group)
		msg.dedupID = aws.String(evt.ArticleID)
	}
	return msg, nil
}

// isFIFO reports whether a queue URL or topic ARN names a FIFO target.
func isFIFO(target string) bool {
	return strings.HasSuffix(target, ".fifo")
}
