package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alfagnish/dummydata/internal/generator"
	"github.com/alfagnish/dummydata/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordCounter struct{ n int }

func (c *recordCounter) RecordsGenerated(n int) { c.n += n }

func newTestRouter(h *DummyDataHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/dummy-data", h.Routes)
	return r
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// objectKeys decodes a JSON array of objects and returns each object's keys
// in document order.
func objectKeys(t *testing.T, body []byte) [][]string {
	t.Helper()
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(body, &raw))

	out := make([][]string, 0, len(raw))
	for _, obj := range raw {
		dec := json.NewDecoder(bytes.NewReader(obj))
		tok, err := dec.Token()
		require.NoError(t, err)
		require.Equal(t, json.Delim('{'), tok)

		keys := []string{}
		for dec.More() {
			k, err := dec.Token()
			require.NoError(t, err)
			keys = append(keys, k.(string))
			_, err = dec.Token()
			require.NoError(t, err)
		}
		out = append(out, keys)
	}
	return out
}

func TestGenerateMissingParams(t *testing.T) {
	router := newTestRouter(NewDummyDataHandler(generator.New(), nil, nil))

	targets := []string{
		"/api/dummy-data",
		"/api/dummy-data?fields=firstName",
		"/api/dummy-data?count=3",
		"/api/dummy-data?fields=&count=3",
		"/api/dummy-data?fields=firstName&count=",
		"/api/dummy-data?fields=&count=",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			rec := doGet(t, router, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			assert.JSONEq(t, `{"error":"Fields and count parameters are required."}`, rec.Body.String())
		})
	}
}

func TestGenerateRecords(t *testing.T) {
	router := newTestRouter(NewDummyDataHandler(generator.New(), nil, nil))

	tests := []struct {
		name     string
		query    string
		wantLen  int
		wantKeys []string
	}{
		{"first name and email", "fields=firstName,email&count=3", 3, []string{"firstName", "email"}},
		{"all fields reordered", "fields=email,lastName,firstName&count=2", 2, []string{"email", "lastName", "firstName"}},
		{"unknown field", "fields=bogus&count=2", 2, []string{}},
		{"mixed fields", "fields=bogus,lastName,nope&count=4", 4, []string{"lastName"}},
		{"zero count", "fields=firstName&count=0", 0, nil},
		{"negative count", "fields=firstName&count=-3", 0, nil},
		{"count not a number", "fields=firstName&count=abc", 0, nil},
		{"count with trailing text", "fields=firstName&count=2items", 2, []string{"firstName"}},
		{"count with decimals", "fields=lastName&count=2.9", 2, []string{"lastName"}},
		{"repeated param uses first", "fields=email&fields=firstName&count=1&count=5", 1, []string{"email"}},
		{"escaped comma", "fields=firstName%2ClastName&count=1", 1, []string{"firstName", "lastName"}},
		{"semicolon kept in value", "fields=firstName;email&count=2", 2, []string{}},
		{"bad escape kept raw", "fields=%zz&count=2", 2, []string{}},
		{"bad escape in count", "fields=firstName&count=2%", 2, []string{"firstName"}},
		{"plus decodes to space", "fields=email&count=+3", 3, []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, router, "/api/dummy-data?"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			keys := objectKeys(t, rec.Body.Bytes())
			require.Len(t, keys, tt.wantLen)
			for _, k := range keys {
				assert.Equal(t, tt.wantKeys, k)
			}

			var records []map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
			for _, r := range records {
				for k, v := range r {
					assert.NotEmpty(t, v, "field %s", k)
				}
			}
		})
	}
}

func TestGenerateEmptyArrayBody(t *testing.T) {
	router := newTestRouter(NewDummyDataHandler(generator.New(), nil, nil))

	for _, q := range []string{"fields=firstName&count=0", "fields=firstName&count=abc"} {
		rec := doGet(t, router, "/api/dummy-data?"+q)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	}

	rec := doGet(t, router, "/api/dummy-data?fields=bogus&count=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{},{}]`, rec.Body.String())
}

func TestGenerateLogsInvalidFields(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	counter := &recordCounter{}
	h := NewDummyDataHandler(generator.New(generator.WithLogger(logger)), logger, counter)

	rec := doGet(t, newTestRouter(h), "/api/dummy-data?fields=firstName,bogus&count=3")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 3, logs.FilterMessage("invalid field").FilterField(zap.String("field", "bogus")).Len())
	assert.Equal(t, 3, counter.n)
}

func TestGenerateLogsSemicolonField(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	h := NewDummyDataHandler(generator.New(generator.WithLogger(logger)), logger, nil)

	rec := doGet(t, newTestRouter(h), "/api/dummy-data?fields=firstName;email&count=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{},{}]`, rec.Body.String())
	assert.Equal(t, 2, logs.FilterMessage("invalid field").FilterField(zap.String("field", "firstName;email")).Len())
}

func TestGenerateInvalidFieldCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	h := NewDummyDataHandler(generator.New(generator.WithLogger(logger)), logger, nil)
	router := middleware.RequestID(newTestRouter(h))

	req := httptest.NewRequest(http.MethodGet, "/api/dummy-data?fields=bogus&count=2", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("invalid field").All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "req-42", e.ContextMap()["request_id"])
	}
}

func TestQueryParams(t *testing.T) {
	tests := []struct {
		raw  string
		want map[string]string
	}{
		{"", map[string]string{}},
		{"a=1&b=2", map[string]string{"a": "1", "b": "2"}},
		{"a=1&a=2", map[string]string{"a": "1"}},
		{"a=x;y", map[string]string{"a": "x;y"}},
		{"a=%zz&b=%41", map[string]string{"a": "%zz", "b": "A"}},
		{"a=x+y&&flag", map[string]string{"a": "x y", "flag": ""}},
		{"a=b=c", map[string]string{"a": "b=c"}},
		{"%61=1", map[string]string{"a": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, queryParams(tt.raw))
		})
	}
}

func TestGenerateMaxCount(t *testing.T) {
	router := newTestRouter(NewDummyDataHandler(generator.New(generator.WithMaxCount(5)), nil, nil))

	rec := doGet(t, router, "/api/dummy-data?fields=email&count=1000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, objectKeys(t, rec.Body.Bytes()), 5)
}

func TestFieldsRoute(t *testing.T) {
	router := newTestRouter(NewDummyDataHandler(generator.New(), nil, nil))

	rec := doGet(t, router, "/api/dummy-data/fields")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"fields":["firstName","lastName","email"]}`, rec.Body.String())
}
