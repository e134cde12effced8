package publishers

import (
	"context"
	"fmt"
	"strings"
)

// Builder creates a Publisher from a config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Builders maps a publisher type to the function that constructs it.
type Builders map[string]Builder

// DefaultBuilders knows every publisher type a publishers file may name.
func DefaultBuilders() Builders {
	return Builders{
		TypeHTTP:      newHTTPPublisher,
		TypeSQS:       newSQSPublisher,
		TypeSNS:       newSNSPublisher,
		TypeGCPPubSub: newGCPPubSubPublisher,
		TypeStdout:    newStdoutPublisher,
	}
}

// Build constructs the publisher for cfg.
func (b Builders) Build(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	typ := strings.ToLower(strings.TrimSpace(cfg.Type))
	if typ == "" {
		return nil, fmt.Errorf("publisher %q has no type configured", cfg.ID)
	}
	build, ok := b[typ]
	if !ok || build == nil {
		return nil, fmt.Errorf("no publisher registered for type %q", cfg.Type)
	}
	return build(ctx, cfg, log)
}

// BuildAll constructs a publisher per config, in order. On failure the
// publishers already built are closed before the error is returned.
func BuildAll(ctx context.Context, builders Builders, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	built := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := builders.Build(ctx, cfg, log)
		if err != nil {
			_ = NewFanout(built).Close()
			return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
		}
		built = append(built, pub)
	}
	return built, nil
}
