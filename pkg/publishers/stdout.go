package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// stdoutPublisher writes one JSON event per line.
type stdoutPublisher struct {
	id string
	mu sync.Mutex
	w  io.Writer
}

func newStdoutPublisher(_ context.Context, cfg PublisherConfig, _ Logger) (Publisher, error) {
	return &stdoutPublisher{id: cfg.ID, w: os.Stdout}, nil
}

func (s *stdoutPublisher) ID() string   { return s.id }
func (s *stdoutPublisher) Type() string { return TypeStdout }

func (s *stdoutPublisher) Publish(_ context.Context, evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := json.NewEncoder(s.w).Encode(evt); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
