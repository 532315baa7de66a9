package transcribe

import "context"

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Recognize(ctx context.Context, audio []byte, contentType string) (*Result, error)
	Name() string  // "watson"
	Model() string // model identifier for logs
}

// Result is the common transcription result from any provider.
type Result struct {
	Text       string  // full transcript, never empty on success
	Confidence float64 // 0 when the provider doesn't report one
}
