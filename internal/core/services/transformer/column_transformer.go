// Package transformer adapts the text refinery to tabular data: it maps one
// text column of a batch of records to a batch of cleaned strings, following
// the fit/transform shape that feature pipelines expect.
package transformer

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alejandroruanova/text-refinery/internal/core/domain"
	"github.com/alejandroruanova/text-refinery/internal/core/services/refinery"
	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// DefaultColumn is the column read when none is configured
const DefaultColumn = "text"

// FeatureTransformer turns a batch of records into one feature per record
type FeatureTransformer interface {
	// Fit learns nothing for stateless transformers
	Fit(ctx context.Context, rows []domain.Record) error

	// Transform returns exactly one output per row, in row order
	Transform(ctx context.Context, rows []domain.Record) ([]string, error)
}

// TextFunc maps one text value to its feature
type TextFunc func(string) string

// Option configures a ColumnTransformer
type Option func(*ColumnTransformer)

// WithWorkers processes rows on up to n goroutines. n <= 1 keeps the
// transform sequential.
func WithWorkers(n int) Option {
	return func(t *ColumnTransformer) {
		if n < 1 {
			n = 1
		}
		t.workers = n
	}
}

// WithColumn reads text from column instead of the default
func WithColumn(column string) Option {
	return func(t *ColumnTransformer) {
		if column != "" {
			t.column = column
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(t *ColumnTransformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// ColumnTransformer applies a TextFunc to one column of every record
type ColumnTransformer struct {
	column  string
	fn      TextFunc
	workers int
	logger  *slog.Logger
}

var _ FeatureTransformer = (*ColumnTransformer)(nil)

// NewColumnTransformer creates a transformer applying fn to column
func NewColumnTransformer(column string, fn TextFunc, opts ...Option) *ColumnTransformer {
	if column == "" {
		column = DefaultColumn
	}

	t := &ColumnTransformer{
		column:  column,
		fn:      fn,
		workers: 1,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTextCleanTransformer cleans the "text" column with the pipeline
func NewTextCleanTransformer(pipeline *refinery.Pipeline, opts ...Option) *ColumnTransformer {
	return NewColumnTransformer(DefaultColumn, pipeline.CleanText, opts...)
}

// Column returns the column the transformer reads
func (t *ColumnTransformer) Column() string {
	return t.column
}

// Fit is a no-op; the transformer holds no learned state
func (t *ColumnTransformer) Fit(ctx context.Context, rows []domain.Record) error {
	return ctx.Err()
}

// Transform extracts the column from every row and maps it through the
// text function. Every row is validated before any text is processed, so a
// missing or non-string value fails the whole batch with no output.
func (t *ColumnTransformer) Transform(ctx context.Context, rows []domain.Record) ([]string, error) {
	texts, err := t.extract(ctx, rows)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	if t.workers <= 1 || len(texts) == 1 {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = t.fn(text)
		}
		return out, nil
	}

	if err := t.transformParallel(ctx, texts, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *ColumnTransformer) extract(ctx context.Context, rows []domain.Record) ([]string, error) {
	texts := make([]string, len(rows))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value, ok := row[t.column]
		if !ok {
			t.logger.Debug("record missing text column",
				slog.String("column", t.column),
				slog.Int("row_index", i))
			return nil, apperrors.MissingField(t.column, i)
		}

		text, ok := value.(string)
		if !ok {
			return nil, apperrors.InvalidFieldType(t.column, i, value)
		}
		texts[i] = text
	}

	return texts, nil
}

// transformParallel fans rows out over a bounded errgroup. Each goroutine
// writes only its own index of out.
func (t *ColumnTransformer) transformParallel(ctx context.Context, texts []string, out []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)

	for i := range texts {
		if err := gctx.Err(); err != nil {
			break
		}

		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = t.fn(texts[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// FitTransform fits the transformer and transforms rows in one call
func FitTransform(ctx context.Context, t FeatureTransformer, rows []domain.Record) ([]string, error) {
	if err := t.Fit(ctx, rows); err != nil {
		return nil, err
	}
	return t.Transform(ctx, rows)
}
