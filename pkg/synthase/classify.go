package synthase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/macropower/synthaser/pkg/domain"
	"github.com/macropower/synthaser/pkg/log"
	"github.com/macropower/synthaser/pkg/rulegraph"
)

var tracer = otel.Tracer("synthase")

// Classifier classifies domain hits into a classification path.
type Classifier interface {
	Classify(hits []*domain.Hit) ([]string, error)
}

var _ Classifier = (*rulegraph.Graph)(nil)

// ClassifyOpt configures [Classify].
type ClassifyOpt func(*classifyOptions)

type classifyOptions struct {
	relabeler *Relabeler
	workers   int
}

// WithWorkers limits the number of synthases classified concurrently.
// Values less than 1 use GOMAXPROCS.
func WithWorkers(n int) ClassifyOpt {
	return func(o *classifyOptions) {
		o.workers = n
	}
}

// WithRelabeler applies r to each synthase after it is classified.
func WithRelabeler(r *Relabeler) ClassifyOpt {
	return func(o *classifyOptions) {
		o.relabeler = r
	}
}

// Classify assigns a classification path to every synthase, overwriting any
// previous classification.
//
// Synthases are independent and classified concurrently. A failure aborts
// the classification of that synthase only: its Classification is cleared
// and the error is included in the returned error. The context is checked
// between synthases.
func Classify(ctx context.Context, synthases []*Synthase, c Classifier, opts ...ClassifyOpt) error {
	o := &classifyOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	ctx, span := tracer.Start(ctx, "classify", trace.WithAttributes(
		attribute.Int("synthases", len(synthases)),
		attribute.Int("workers", o.workers),
	))
	defer span.End()

	logger := log.WithContext(ctx)

	errs := make([]error, len(synthases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, s := range synthases {
		g.Go(func() error {
			err := ctx.Err()
			if err != nil {
				return err //nolint:wrapcheck // Return the context error.
			}

			err = classifyOne(s, c, o.relabeler)
			if err != nil {
				logger.WarnContext(ctx, "classification failed",
					slog.String("header", s.Header),
					slog.Any("error", err),
				)

				errs[i] = fmt.Errorf("%s: %w", s.Header, err)
			}

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("classify: %w", err)
	}

	err = errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification failed")

		return err
	}

	return nil
}

func classifyOne(s *Synthase, c Classifier, r *Relabeler) error {
	path, err := c.Classify(s.Domains)
	if err != nil {
		s.Classification = nil
		return err //nolint:wrapcheck // Wrapped by the caller.
	}

	s.Classification = path

	if r != nil {
		r.Apply(s)
	}

	return nil
}
