package templates

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, name := range []string{
		"post_list.html", "post_detail.html", "post_form.html", "post_confirm_delete.html",
		"register.html", "login.html", "error.html",
		"password_change.html", "password_change_done.html",
		"password_reset.html", "password_reset_done.html",
		"password_reset_confirm.html", "password_reset_complete.html",
		"admin_index.html", "admin_list.html", "admin_form.html",
	} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has(layoutFile))
	assert.False(t, r.Has("post_card.partial.html"))
}

func TestRenderEscapes(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = r.Instance("error.html", map[string]any{
		"Title":   "Page not found",
		"Status":  404,
		"Message": "<script>alert(1)</script>",
	}).Render(w)
	require.NoError(t, err)

	body := w.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "Page not found")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	assert.Error(t, r.Instance("missing.html", nil).Render(httptest.NewRecorder()))
}

func TestParagraphs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"one", []string{"one"}},
		{"one\n\ntwo", []string{"one", "two"}},
		{"one\r\n\r\ntwo\n\n\n\nthree ", []string{"one", "two", "three"}},
		{"line one\nline two", []string{"line one\nline two"}},
		{"  \n\n  ", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Paragraphs(tt.in), tt.in)
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		n    int
		in   string
		want string
	}{
		{3, "one two three", "one two three"},
		{3, "one two three four", "one two three …"},
		{2, "  spaced   out words ", "spaced out …"},
		{5, "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateWords(tt.n, tt.in), tt.in)
	}
}
