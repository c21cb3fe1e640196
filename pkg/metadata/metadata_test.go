package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIndex = `{
  "data": [
    {"type": "markdown", "name": "about.md", "value": {"title": "About", "date": "2020-01-01", "slug": "/about"}},
    {"type": "directory", "name": "projects", "children": []},
    {"type": "directory", "name": "blog", "children": [
      {"type": "markdown", "name": "b.md", "value": {"title": "Second", "date": "2024-03-05", "slug": "/blog/second"}},
      {"type": "image", "name": "cover.png"},
      {"type": "markdown", "name": "a.md", "value": {"title": "First & Foremost", "date": "2023-12-25", "slug": "/blog/first", "description": "Hello"}}
    ]}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadIndex(t *testing.T) {
	path := writeFile(t, t.TempDir(), "metadata.json", sampleIndex)

	posts, err := LoadIndex(path, "blog")
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Index order is preserved, non-markdown children are dropped.
	assert.Equal(t, "Second", posts[0].Title)
	assert.Equal(t, "/blog/second", posts[0].Slug)
	assert.Equal(t, "First & Foremost", posts[1].Title)
	assert.Equal(t, "2023-12-25", posts[1].Date)
	assert.Equal(t, "Hello", posts[1].Description)
}

func TestLoadIndexEmptyDirectory(t *testing.T) {
	path := writeFile(t, t.TempDir(), "metadata.json", sampleIndex)

	posts, err := LoadIndex(path, "projects")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLoadIndexMissingDirectory(t *testing.T) {
	path := writeFile(t, t.TempDir(), "metadata.json", sampleIndex)

	_, err := LoadIndex(path, "notes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDirectoryNotFound))
}

func TestLoadIndexDirectoryMustBeDirectoryType(t *testing.T) {
	path := writeFile(t, t.TempDir(), "metadata.json",
		`{"data": [{"type": "markdown", "name": "blog", "value": {"title": "x"}}]}`)

	_, err := LoadIndex(path, "blog")
	assert.ErrorIs(t, err, ErrDirectoryNotFound)
}

func TestLoadIndexErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadIndex(filepath.Join(dir, "missing.json"), "blog")
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.json", `{"data": [`)
	_, err = LoadIndex(bad, "blog")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrDirectoryNotFound))
}

func TestLoadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blog")
	require.NoError(t, os.Mkdir(dir, 0755))

	writeFile(t, dir, "b-post.md", "---\ntitle: \"B Post\"\ndate: 2024-03-05\n---\n\nBody\n")
	writeFile(t, dir, "a-post.md", "---\ntitle: A Post\ndate: 2023-01-02\nslug: /blog/custom\ndescription: Desc\n---\nBody\n")
	writeFile(t, dir, "notes.txt", "ignored")

	posts, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, Post{Title: "A Post", Date: "2023-01-02", Slug: "/blog/custom", Description: "Desc"}, posts[0])
	assert.Equal(t, Post{Title: "B Post", Date: "2024-03-05", Slug: "/blog/b-post"}, posts[1])
}

func TestLoadDirRequiresTitle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "untitled.md", "---\ndate: 2024-03-05\n---\nBody\n")

	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestLoadDirRequiresFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain.md", "# Just markdown\n")

	_, err := LoadDir(dir)
	assert.Error(t, err)
}
