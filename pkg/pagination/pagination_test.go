package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreg/registry/internal/platform/apperr"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestFromContext_Defaults(t *testing.T) {
	p, err := FromContext(ctxWithQuery(""))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestFromContext_Explicit(t *testing.T) {
	p, err := FromContext(ctxWithQuery("page=3&limit=50"))
	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 100, p.Offset())
}

func TestFromContext_Invalid(t *testing.T) {
	for _, query := range []string{"page=0", "page=-1", "page=abc", "limit=0", "limit=101", "limit=x"} {
		_, err := FromContext(ctxWithQuery(query))
		require.Error(t, err, query)
		assert.True(t, apperr.IsInvalidPagination(err), query)
	}
}

func TestTotalPages(t *testing.T) {
	p := Params{Page: 1, Limit: 2}
	assert.Equal(t, 3, p.TotalPages(5))
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(2))
}

func TestNewResponse_Flags(t *testing.T) {
	// total_items=5, limit=2 -> 3 pages
	for _, tc := range []struct {
		page    int
		hasNext bool
		hasPrev bool
	}{
		{1, true, false},
		{2, true, true},
		{3, false, true},
	} {
		resp := NewResponse([]int{1, 2}, 5, Params{Page: tc.page, Limit: 2})
		assert.Equal(t, 3, resp.TotalPages)
		assert.Equal(t, tc.hasNext, resp.HasNext, "page %d", tc.page)
		assert.Equal(t, tc.hasPrev, resp.HasPrev, "page %d", tc.page)
		assert.Equal(t, 2, resp.PerPage)
		assert.Equal(t, 5, resp.TotalItems)
	}
}
