package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/alfagnish/dummydata/internal/generator"
	"github.com/alfagnish/dummydata/internal/middleware"
	"github.com/alfagnish/dummydata/internal/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const errMissingParams = "Fields and count parameters are required."

// RecordCounter receives the number of records served per request.
type RecordCounter interface {
	RecordsGenerated(n int)
}

// DummyDataHandler serves generated records.
type DummyDataHandler struct {
	gen     *generator.Generator
	logger  *zap.Logger
	counter RecordCounter
}

// NewDummyDataHandler creates a new DummyDataHandler. counter may be nil.
func NewDummyDataHandler(gen *generator.Generator, logger *zap.Logger, counter RecordCounter) *DummyDataHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DummyDataHandler{
		gen:     gen,
		logger:  logger,
		counter: counter,
	}
}

// Routes registers the dummy data routes on the given chi router.
func (h *DummyDataHandler) Routes(r chi.Router) {
	r.Get("/", h.Generate)
	r.Get("/fields", h.Fields)
}

// Generate handles GET ?fields=a,b&count=n. Both parameters must be present
// and non-empty. Unknown fields and a count that is not a number degrade to
// missing keys and an empty array.
func (h *DummyDataHandler) Generate(w http.ResponseWriter, r *http.Request) {
	q := queryParams(r.URL.RawQuery)
	fields, count := q["fields"], q["count"]
	if fields == "" || count == "" {
		writeError(w, http.StatusBadRequest, errMissingParams)
		return
	}

	requestID := zap.String("request_id", middleware.RequestIDFromContext(r.Context()))
	n, ok := generator.ParseCount(count)
	if !ok {
		h.logger.Debug("count is not a number", zap.String("count", count), requestID)
	}
	fieldList := generator.ParseFields(fields)

	_, span := tracing.StartSpan(tracing.Extract(r), "dummydata.generate",
		trace.WithAttributes(
			attribute.StringSlice("dummydata.fields", fieldList),
			attribute.Int("dummydata.count", n),
		),
	)
	records := h.gen.With(requestID).Generate(fieldList, n)
	span.SetAttributes(attribute.Int("dummydata.records", len(records)))
	span.End()

	if h.counter != nil {
		h.counter.RecordsGenerated(len(records))
	}

	writeJSON(w, http.StatusOK, records)
}

// Fields lists the supported field names.
func (h *DummyDataHandler) Fields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"fields": h.gen.Fields()})
}

// queryParams decodes a raw query string keeping the first value of each
// key. Only '&' separates pairs, and a key or value that fails to unescape is
// kept as written, so "a=x;y" and "a=%zz" still yield a value for a.
func queryParams(raw string) map[string]string {
	params := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key, value = unescape(key), unescape(value)
		if _, seen := params[key]; !seen {
			params[key] = value
		}
	}
	return params
}

func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}
