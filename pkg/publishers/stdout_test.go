package publishers

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStdoutPublisherWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	pub := &stdoutPublisher{id: "out", w: &buf}

	for _, id := range []string{"1", "2"} {
		if err := pub.Publish(context.Background(), Event{ArticleID: id}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], `"article_id":"2"`) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
