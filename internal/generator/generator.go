// Package generator builds dummy data records from a list of requested
// field names.
package generator

import (
	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
)

// Supported field names.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
)

// fieldOrder is the canonical order reported by Fields.
var fieldOrder = []string{FieldFirstName, FieldLastName, FieldEmail}

// preallocLimit bounds the up-front slice allocation for large counts.
const preallocLimit = 1024

// Observer is notified about every requested field the generator does not
// recognise.
type Observer interface {
	InvalidField(field string)
}

// Generator produces records of fake values. It is safe for concurrent use.
type Generator struct {
	values   map[string]func() string
	logger   *zap.Logger
	observer Observer
	maxCount int
}

type options struct {
	seed     int64
	logger   *zap.Logger
	observer Observer
	maxCount int
}

// Option configures a Generator.
type Option func(*options)

// WithSeed makes generation deterministic for a non-zero seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLogger sets the logger used for invalid field diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers an Observer for invalid fields.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithMaxCount clamps the number of records per call. Zero means unlimited.
func WithMaxCount(n int) Option {
	return func(o *options) { o.maxCount = n }
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	// gofakeit.New guards its source with a mutex; seed 0 draws from crypto/rand.
	faker := gofakeit.New(o.seed)

	return &Generator{
		values: map[string]func() string{
			FieldFirstName: faker.FirstName,
			FieldLastName:  faker.LastName,
			FieldEmail:     faker.Email,
		},
		logger:   o.logger,
		observer: o.observer,
		maxCount: o.maxCount,
	}
}

// Fields returns the supported field names.
func (g *Generator) Fields() []string {
	return append([]string(nil), fieldOrder...)
}

// Supports reports whether field is a known field name.
func (g *Generator) Supports(field string) bool {
	_, ok := g.values[field]
	return ok
}

// With returns a Generator sharing g's value sources whose diagnostics carry
// the given fields, typically a request id.
func (g *Generator) With(fields ...zap.Field) *Generator {
	c := *g
	c.logger = g.logger.With(fields...)
	return &c
}

// Generate returns count records. Each record holds a value for every
// recognised entry of fields, in the order given. Unknown fields are logged
// once per occurrence per record and left out. A non-positive count yields an
// empty, non-nil set.
func (g *Generator) Generate(fields []string, count int) RecordSet {
	if g.maxCount > 0 && count > g.maxCount {
		count = g.maxCount
	}

	records := make(RecordSet, 0, min(max(count, 0), preallocLimit))
	for i := 0; i < count; i++ {
		var rec Record
		for _, field := range fields {
			value, ok := g.values[field]
			if !ok {
				g.logger.Warn("invalid field", zap.String("field", field))
				if g.observer != nil {
					g.observer.InvalidField(field)
				}
				continue
			}
			rec.Set(field, value())
		}
		records = append(records, rec)
	}
	return records
}
