// Package engine abstracts the formula recognition backend a worker runs
// jobs against.
package engine

import "context"

// Result is the output of one recognition.
type Result struct {
	LaTeX string
	Demo  bool
}

// Engine produces LaTeX from a formula image.
type Engine interface {
	// Recognize runs OCR over an image (PNG, JPEG or GIF bytes).
	Recognize(ctx context.Context, image []byte) (Result, error)
	// Health reports whether the backend can take work.
	Health(ctx context.Context) error
}
