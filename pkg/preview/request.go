package preview

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/whenderson/siteshot/pkg/metadata"
)

// DateLayout is the long form dates are rendered in, e.g. "March 5, 2024".
const DateLayout = "January 2, 2006"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
	"January 02, 2006",
}

// Request describes the render of a single post.
type Request struct {
	Post     metadata.Post
	Title    string
	Date     string
	URL      string
	Filename string
}

// NewRequest builds the render request for post against the template at
// templatePath.
func NewRequest(templatePath string, post metadata.Post) (Request, error) {
	date := FormatDate(post.Date)
	u, err := TemplateURL(templatePath, post.Title, date)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Post:     post,
		Title:    post.Title,
		Date:     date,
		URL:      u,
		Filename: OutputName(post.Slug),
	}, nil
}

// FormatDate renders s as "January 2, 2006". Input that cannot be parsed
// is returned as is.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return s
}

// OutputName returns the image file name for slug: the last path segment
// with a .png extension.
func OutputName(slug string) string {
	return slug[strings.LastIndex(slug, "/")+1:] + ".png"
}

// TemplateURL returns a file URL for the template with title and date
// set as query parameters.
func TemplateURL(templatePath, title, date string) (string, error) {
	abs, err := filepath.Abs(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve template path: %w", err)
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "title=" + encodeComponent(title) + "&date=" + encodeComponent(date),
	}
	return u.String(), nil
}

// encodeComponent escapes s for a query value with spaces as %20 rather
// than "+". QueryEscape already turns a literal "+" into %2B.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
