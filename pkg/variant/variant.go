// Package variant splits pages containing <variant name="..."> blocks into
// one page per variant.
//
// The default page keeps only the "default" variants. Every other name
// produces a sibling page <name>.html that keeps only its own variant
// content and is marked noindex.
package variant

import (
	"bytes"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultName is the variant kept in the rewritten index.html.
const DefaultName = "default"

const (
	pageName = "index.html"
	marker   = "<variant"
	headTag  = "<head"
)

// Output is the result of splitting a page.
type Output struct {
	Default  []byte
	Variants map[string][]byte
}

// Names returns the non-default variant names in sorted order.
func (o Output) Names() []string {
	names := make([]string, 0, len(o.Variants))
	for n := range o.Variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Split splits page into its default page and one page per other variant.
// A page without variant blocks is returned unchanged with no variants.
func Split(page []byte) (Output, error) {
	names, err := variantNames(page)
	if err != nil {
		return Output{}, err
	}
	if len(names) == 0 {
		return Output{Default: page, Variants: map[string][]byte{}}, nil
	}

	def, err := render(page, DefaultName, false)
	if err != nil {
		return Output{}, err
	}
	out := Output{Default: def, Variants: make(map[string][]byte)}
	for _, name := range names {
		if name == DefaultName {
			continue
		}
		data, err := render(page, name, true)
		if err != nil {
			return Output{}, err
		}
		out.Variants[name] = data
	}
	return out, nil
}

func parse(page []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

func variantNames(page []byte) ([]string, error) {
	doc, err := parse(page)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	doc.Find("variant[name]").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(s.AttrOr("name", "")))
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	return names, nil
}

// render keeps the content of variants called name, wrapped in <p>, and
// drops every other variant.
func render(page []byte, name string, noindex bool) ([]byte, error) {
	doc, err := parse(page)
	if err != nil {
		return nil, err
	}

	doc.Find("variant").Each(func(_ int, s *goquery.Selection) {
		if !strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), name) {
			s.Remove()
			return
		}
		inner, err := s.Html()
		inner = strings.TrimSpace(inner)
		if err != nil || inner == "" {
			s.Remove()
			return
		}
		s.ReplaceWithHtml("<p>" + inner + "</p>")
	})

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() == 0 && strings.TrimSpace(s.Text()) == "" {
			s.Remove()
		}
	})

	// The parser synthesizes a <head> for fragments; only mark pages that
	// had one.
	if noindex && bytes.Contains(bytes.ToLower(page), []byte(headTag)) {
		doc.Find("head").PrependHtml(`<meta name="robots" content="noindex">`)
	}

	html, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return nil, fmt.Errorf("failed to render html: %w", err)
	}
	return []byte(html), nil
}

// Process rewrites every index.html under dir that contains variant
// blocks and writes the variant pages beside it. A page that fails is
// logged and skipped. It returns the paths of the variant pages written.
func Process(dir string, logger *log.Logger) ([]string, error) {
	var written []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != pageName {
			return nil
		}
		files, err := processPage(path, logger)
		if err != nil {
			logger.Printf("error processing %s: %v", path, err)
			return nil
		}
		written = append(written, files...)
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return written, nil
}

func processPage(path string, logger *log.Logger) ([]string, error) {
	page, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !bytes.Contains(bytes.ToLower(page), []byte(marker)) {
		return nil, nil
	}
	logger.Printf("processing variants in %s", path)

	out, err := Split(page)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, out.Default, 0o644); err != nil {
		return nil, err
	}

	var written []string
	for _, name := range out.Names() {
		p := filepath.Join(filepath.Dir(path), name+".html")
		if err := os.WriteFile(p, out.Variants[name], 0o644); err != nil {
			return written, err
		}
		logger.Printf("created variant file %s", p)
		written = append(written, p)
	}
	return written, nil
}
