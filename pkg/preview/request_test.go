package preview

import (
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whenderson/siteshot/pkg/metadata"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2024-03-05", "March 5, 2024"},
		{"2024-12-25", "December 25, 2024"},
		{"2021-01-01", "January 1, 2021"},
		{"2023-07-09T18:30:00Z", "July 9, 2023"},
		{"2023-07-09T23:30:00-05:00", "July 9, 2023"},
		{"2022-11-30T08:00:00", "November 30, 2022"},
		{"June 07, 2020", "June 7, 2020"},
		{"June 7, 2020", "June 7, 2020"},
		{" 2024-03-05 ", "March 5, 2024"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDate(tt.input), "FormatDate(%q)", tt.input)
	}
}

func TestFormatDateInvalid(t *testing.T) {
	assert.Equal(t, "someday", FormatDate("someday"))
	assert.Equal(t, "", FormatDate(""))
	assert.Equal(t, "2024-13-45", FormatDate("2024-13-45"))
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		slug     string
		expected string
	}{
		{"/blog/my-post", "my-post.png"},
		{"blog/nested/deep-post", "deep-post.png"},
		{"standalone", "standalone.png"},
		{"/blog/trailing/", ".png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, OutputName(tt.slug), "OutputName(%q)", tt.slug)
	}
}

func TestTemplateURLRoundTrip(t *testing.T) {
	tests := []struct {
		title string
		date  string
	}{
		{"Hello World", "March 5, 2024"},
		{"Rust & Go: a #comparison", "December 25, 2024"},
		{"100% + more?", "January 1, 2021"},
		{"Ünïcödé ✓ 日本語", "June 7, 2020"},
		{"a=b&c=d", "x/y"},
	}
	tmpl := filepath.Join(t.TempDir(), "template.html")

	for _, tt := range tests {
		raw, err := TemplateURL(tmpl, tt.title, tt.date)
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "file", u.Scheme)
		assert.Equal(t, filepath.ToSlash(tmpl), u.Path)
		assert.Equal(t, tt.title, u.Query().Get("title"))
		assert.Equal(t, tt.date, u.Query().Get("date"))
		assert.NotContains(t, u.RawQuery, " ")
		assert.NotContains(t, u.RawQuery, "+")
	}
}

func TestTemplateURLEncodesSpacesLikeEncodeURIComponent(t *testing.T) {
	raw, err := TemplateURL("/site/template.html", "A B", "March 5, 2024")
	require.NoError(t, err)
	assert.Equal(t, "file:///site/template.html?title=A%20B&date=March%205%2C%202024", raw)
}

func TestTemplateURLRelativePath(t *testing.T) {
	raw, err := TemplateURL("template.html", "t", "d")
	require.NoError(t, err)

	abs, err := filepath.Abs("template.html")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(abs), u.Path)
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest("/site/template.html", metadata.Post{
		Title: "My Post",
		Date:  "2024-03-05",
		Slug:  "/blog/my-post",
	})
	require.NoError(t, err)

	assert.Equal(t, "My Post", req.Title)
	assert.Equal(t, "March 5, 2024", req.Date)
	assert.Equal(t, "my-post.png", req.Filename)
	assert.Equal(t, "file:///site/template.html?title=My%20Post&date=March%205%2C%202024", req.URL)
}
