// Package ocr runs image recognition with a primary engine and a local
// fallback, and turns the recognised text into receipt and score sheet
// readings.
package ocr

import (
	"context"
	"errors"
)

var (
	// ErrEmptyText is returned when an engine recognised nothing.
	ErrEmptyText = errors.New("no text recognised")

	// ErrEmptyImage is returned for a zero-length image.
	ErrEmptyImage = errors.New("image is empty")
)

// Recognition is the raw output of one engine.
type Recognition struct {
	Text string
	// LineConfidences holds one score in [0, 1] per recognised line.
	LineConfidences []float64
	Engine          string
}

// Confidence is the mean line confidence, 0 when no line was scored.
func (r *Recognition) Confidence() float64 {
	if len(r.LineConfidences) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range r.LineConfidences {
		sum += c
	}
	return sum / float64(len(r.LineConfidences))
}

// Recognizer turns image bytes into text.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (*Recognition, error)
}
