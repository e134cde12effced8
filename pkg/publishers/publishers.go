package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Supported publisher types.
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"
	TypeStdout    = "stdout"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// configFile represents the structure of the publishers configuration file.
type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig represents a single publisher entry declared in config files.
type PublisherConfig struct {
	ID      string               `json:"id" yaml:"id"`
	Type    string               `json:"type" yaml:"type"`
	Enabled *bool                `json:"enabled" yaml:"enabled"`
	HTTP    *HTTPPublisherConfig `json:"http" yaml:"http"`
	SQS     *SQSPublisherConfig  `json:"sqs" yaml:"sqs"`
	SNS     *SNSPublisherConfig  `json:"sns" yaml:"sns"`
	PubSub  *PubSubConfig        `json:"gcp_pubsub" yaml:"gcp_pubsub"`
}

// AWSConfig carries the settings shared by AWS-backed publishers. Static
// credentials are optional; without them the default AWS chain is used.
type AWSConfig struct {
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSPublisherConfig holds AWS SQS specific settings.
type SQSPublisherConfig struct {
	QueueURL  string `json:"uri" yaml:"uri"`
	AWSConfig `yaml:",inline"`
}

// SNSPublisherConfig holds AWS SNS specific settings.
type SNSPublisherConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	AWSConfig `yaml:",inline"`
}

// PubSubConfig holds Google Cloud Pub/Sub settings.
type PubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// HTTPPublisherConfig holds generic HTTP sink settings.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// ConfigRegistry materializes publisher definitions loaded from config files.
type ConfigRegistry struct {
	publishers []PublisherConfig
}

// LoadRegistry reads and validates the publishers file at path. The format
// follows the extension: .json is JSON, anything else is YAML.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	entries, err := decodePublishers(raw, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: no publishers declared", path)
	}

	reg := &ConfigRegistry{publishers: make([]PublisherConfig, 0, len(entries))}
	ids := make(map[string]bool, len(entries))
	var problems []error
	for i, entry := range entries {
		cfg := sanitizePublisherConfig(entry)
		if err := validatePublisherConfig(cfg); err != nil {
			problems = append(problems, fmt.Errorf("publishers[%d]: %w", i, err))
			continue
		}
		if ids[cfg.ID] {
			problems = append(problems, fmt.Errorf("publishers[%d]: duplicate id %q", i, cfg.ID))
			continue
		}
		ids[cfg.ID] = true
		reg.publishers = append(reg.publishers, cfg)
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return reg, nil
}

func decodePublishers(data []byte, ext string) ([]PublisherConfig, error) {
	var file configFile
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode json publishers: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode yaml publishers: %w", err)
		}
	}
	return file.Publishers, nil
}

// sanitizePublisherConfig trims every field, lower-cases the type and fills
// defaults. The type-specific blocks are copied so callers keep their input.
func sanitizePublisherConfig(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	if cfg.HTTP != nil {
		c := cfg.HTTP.normalized()
		cfg.HTTP = &c
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.AWSConfig = c.AWSConfig.normalized()
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.AWSConfig = c.AWSConfig.normalized()
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := cfg.PubSub.normalized()
		cfg.PubSub = &c
	}
	return cfg
}

func (c HTTPPublisherConfig) normalized() HTTPPublisherConfig {
	c.URL = strings.TrimSpace(c.URL)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = httpDefaultMethod
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = httpDefaultTimeoutSeconds
	}
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			headers[k] = v
		}
	}
	c.Headers = nil
	if len(headers) > 0 {
		c.Headers = headers
	}
	return c
}

func (c AWSConfig) normalized() AWSConfig {
	for _, field := range []*string{&c.Region, &c.Endpoint, &c.AccessKeyID, &c.SecretAccessKey, &c.SessionToken} {
		*field = strings.TrimSpace(*field)
	}
	return c
}

func (c PubSubConfig) normalized() PubSubConfig {
	for _, field := range []*string{&c.ProjectID, &c.Topic, &c.CredentialsFile, &c.Endpoint} {
		*field = strings.TrimSpace(*field)
	}
	return c
}

// validatePublisherConfig checks a sanitized entry has what its type needs.
func validatePublisherConfig(cfg PublisherConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	missing := func(block string) error {
		return fmt.Errorf("publisher %q: %s is required", cfg.ID, block)
	}

	switch cfg.Type {
	case "":
		return missing("type")
	case TypeStdout:
		return nil
	case TypeHTTP:
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			return missing("http.url")
		}
		return nil
	case TypeSQS:
		if cfg.SQS == nil || cfg.SQS.QueueURL == "" {
			return missing("sqs.uri")
		}
		return cfg.SQS.AWSConfig.validate("sqs", cfg.ID)
	case TypeSNS:
		if cfg.SNS == nil || cfg.SNS.TopicARN == "" {
			return missing("sns.topic_arn")
		}
		return cfg.SNS.AWSConfig.validate("sns", cfg.ID)
	case TypeGCPPubSub:
		if cfg.PubSub == nil || cfg.PubSub.ProjectID == "" {
			return missing("gcp_pubsub.project_id")
		}
		if cfg.PubSub.Topic == "" {
			return missing("gcp_pubsub.topic")
		}
		return nil
	default:
		return fmt.Errorf("publisher %q: unsupported type %q", cfg.ID, cfg.Type)
	}
}

func (c AWSConfig) validate(block, id string) error {
	if c.Region == "" {
		return fmt.Errorf("publisher %q: %s.region is required", id, block)
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("publisher %q: %s.access_key_id and %s.secret_access_key go together", id, block, block)
	}
	return nil
}

// All returns all configured publishers.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	out := make([]PublisherConfig, len(r.publishers))
	copy(out, r.publishers)
	return out
}

// Enabled returns publishers that are enabled.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]PublisherConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
