// Package llm provides the chat-completion client used to generate book
// recommendations. The rest of the pipeline depends only on the Client
// interface so tests can substitute canned responses.
package llm

import "context"

// Client produces a completion for a system/user prompt pair.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
