package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Request is a single prompt sent to an LLM.
type Request struct {
	System      string
	Prompt      string
	JSONObject  bool // ask for a JSON object response
	Temperature float64
}

// Completer sends a prompt to an LLM and returns the raw text response.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
