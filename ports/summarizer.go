package ports

import "context"

// Summarizer produces a natural-language summary of a text digest via a
// hosted model.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}
