package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/clubsettle/internal/apperr"
	"github.com/mmynk/clubsettle/internal/metrics"
)

// Preprocessor prepares an image for an engine that needs clean input.
type Preprocessor func(image []byte) ([]byte, error)

// Orchestrator tries the primary engine and falls back to the secondary.
// There are no retries on the same engine.
type Orchestrator struct {
	primary              Recognizer
	secondary            Recognizer
	preprocess           Preprocessor
	timeout              time.Duration
	minPrimaryConfidence float64
	logger               *slog.Logger
	metrics              *metrics.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPreprocessor sets the preprocessing applied before the secondary engine only.
func WithPreprocessor(p Preprocessor) Option {
	return func(o *Orchestrator) { o.preprocess = p }
}

// WithTimeout bounds each engine call. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithMinPrimaryConfidence makes a primary result below c fall back too.
// Zero disables the check.
func WithMinPrimaryConfidence(c float64) Option {
	return func(o *Orchestrator) { o.minPrimaryConfidence = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// NewOrchestrator creates an Orchestrator. primary may be nil when no remote
// engine is configured; secondary is required.
func NewOrchestrator(primary, secondary Recognizer, opts ...Option) (*Orchestrator, error) {
	if secondary == nil {
		return nil, fmt.Errorf("secondary recognizer is required")
	}
	o := &Orchestrator{
		primary:   primary,
		secondary: secondary,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Recognize returns the first successful recognition.
//
// Algorithm:
//   - primary (if configured) on the raw image
//   - on error, empty text or low confidence: secondary on the preprocessed image
//   - both failed: the secondary's error
//   - primary low confidence and secondary failed: the primary result
//
// A cancelled caller context stops before the fallback.
func (o *Orchestrator) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	if len(image) == 0 {
		return nil, apperr.InvalidArgument("%s", ErrEmptyImage)
	}

	var lowConfidence *Recognition
	if o.primary != nil {
		rec, err := o.attempt(ctx, o.primary, image)
		switch {
		case err == nil && o.minPrimaryConfidence > 0 && rec.Confidence() < o.minPrimaryConfidence:
			o.logger.Info("Primary recognition below confidence floor",
				"engine", o.primary.Name(),
				"confidence", rec.Confidence(),
				"min", o.minPrimaryConfidence,
			)
			lowConfidence = rec
		case err == nil:
			return rec, nil
		default:
			o.logger.Warn("Primary recognition failed", "engine", o.primary.Name(), "error", err)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.metrics.OCRFallback()
	}

	input := image
	if o.preprocess != nil {
		processed, err := o.preprocess(image)
		if err != nil {
			o.logger.Warn("Image preprocessing failed, using raw image", "error", err)
		} else {
			input = processed
		}
	}

	rec, err := o.attempt(ctx, o.secondary, input)
	if err != nil {
		if lowConfidence != nil {
			o.logger.Warn("Secondary recognition failed, keeping low-confidence primary result",
				"engine", o.secondary.Name(), "error", err)
			return lowConfidence, nil
		}
		return nil, fmt.Errorf("%s: %w", o.secondary.Name(), err)
	}
	return rec, nil
}

func (o *Orchestrator) attempt(ctx context.Context, r Recognizer, image []byte) (*Recognition, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	rec, err := r.Recognize(ctx, image)
	if err == nil && (rec == nil || strings.TrimSpace(rec.Text) == "") {
		err = ErrEmptyText
	}
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrEmptyText) {
			outcome = "empty"
		}
		o.metrics.OCRAttempt(r.Name(), outcome)
		return nil, err
	}

	if rec.Engine == "" {
		rec.Engine = r.Name()
	}
	o.metrics.OCRAttempt(r.Name(), "success")
	o.logger.Debug("Recognition finished",
		"engine", r.Name(),
		"lines", len(rec.LineConfidences),
		"confidence", rec.Confidence(),
		"duration", time.Since(start),
	)
	return rec, nil
}
