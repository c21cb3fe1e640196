// Package metadata loads blog post records from the site's content index.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Node types found in the content index.
const (
	TypeDirectory = "directory"
	TypeMarkdown  = "markdown"
)

// ErrDirectoryNotFound is returned when the index has no directory node
// with the requested name.
var ErrDirectoryNotFound = errors.New("content directory not found in index")

// Post is the metadata of a single blog post.
type Post struct {
	Title       string `json:"title" yaml:"title"`
	Date        string `json:"date" yaml:"date"`
	Slug        string `json:"slug" yaml:"slug"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Node is an entry in the content index tree.
type Node struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Value    *Post  `json:"value,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// Index is the top-level shape of the content index file.
type Index struct {
	Data []Node `json:"data"`
}

// LoadIndex reads the index file at path and returns the markdown posts
// under the directory node named dir, in index order.
func LoadIndex(path, dir string) ([]Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", path, err)
	}

	return idx.Posts(dir)
}

// Posts returns the posts under the first directory node named dir.
func (idx Index) Posts(dir string) ([]Post, error) {
	for _, n := range idx.Data {
		if n.Type != TypeDirectory || n.Name != dir {
			continue
		}
		posts := make([]Post, 0, len(n.Children))
		for _, c := range n.Children {
			if c.Type != TypeMarkdown || c.Value == nil {
				continue
			}
			posts = append(posts, *c.Value)
		}
		return posts, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrDirectoryNotFound, dir)
}

// LoadDir parses the YAML front matter of every markdown file in dir.
// Files are read in lexical order. A post without a slug gets
// "/<dir>/<file stem>".
func LoadDir(dir string) ([]Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	posts := make([]Post, 0, len(names))
	for _, name := range names {
		p, err := parseFrontMatter(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if p.Slug == "" {
			p.Slug = "/" + filepath.Base(dir) + "/" + strings.TrimSuffix(name, ".md")
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func parseFrontMatter(path string) (Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Post{}, fmt.Errorf("failed to read file: %w", err)
	}

	parts := bytes.SplitN(data, []byte("---"), 3)
	if len(parts) < 3 {
		return Post{}, fmt.Errorf("invalid front matter in %s: missing --- delimiters", path)
	}

	var p Post
	if err := yaml.Unmarshal(parts[1], &p); err != nil {
		return Post{}, fmt.Errorf("failed to parse front matter in %s: %w", path, err)
	}
	if p.Title == "" {
		return Post{}, fmt.Errorf("missing required field title in %s", path)
	}

	return p, nil
}
