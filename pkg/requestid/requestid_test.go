package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/pkg/requestid"
)

func serve(t *testing.T, header string) (ctxID, respID string) {
	t.Helper()
	h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = requestid.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(requestid.Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return ctxID, rec.Header().Get(requestid.Header)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates id", func(t *testing.T) {
		t.Parallel()
		ctxID, respID := serve(t, "")
		_, err := uuid.Parse(ctxID)
		require.NoError(t, err)
		assert.Equal(t, ctxID, respID)
	})

	t.Run("keeps valid incoming id", func(t *testing.T) {
		t.Parallel()
		ctxID, respID := serve(t, "req_123-abc")
		assert.Equal(t, "req_123-abc", ctxID)
		assert.Equal(t, "req_123-abc", respID)
	})

	t.Run("replaces malformed id", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"has space", "<script>", strings.Repeat("a", 129)} {
			ctxID, _ := serve(t, bad)
			assert.NotEqual(t, bad, ctxID)
			_, err := uuid.Parse(ctxID)
			assert.NoError(t, err)
		}
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := requestid.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(requestid.WithContext(context.Background(), "abc"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
}
