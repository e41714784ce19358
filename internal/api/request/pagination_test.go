package request

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/agents", nil)
	p := ParsePagination(r)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, "", p.Cursor)
}

func TestParsePagination_Explicit(t *testing.T) {
	r := httptest.NewRequest("GET", "/agents?limit=25&cursor=agent-9", nil)
	p := ParsePagination(r)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, "agent-9", p.Cursor)
}

func TestParsePagination_ClampsToMax(t *testing.T) {
	r := httptest.NewRequest("GET", "/agents?limit=9999", nil)
	p := ParsePagination(r)
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestParsePagination_IgnoresInvalidLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/agents?limit=-5", nil)
	p := ParsePagination(r)
	assert.Equal(t, DefaultLimit, p.Limit)

	r = httptest.NewRequest("GET", "/agents?limit=abc", nil)
	p = ParsePagination(r)
	assert.Equal(t, DefaultLimit, p.Limit)
}
