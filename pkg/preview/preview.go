// Package preview renders social preview images for blog posts.
//
// A Generator drives a single Session across a whole batch: the session is
// launched once, sized to the viewport once, and every post is captured on
// it in turn before it is closed.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/whenderson/siteshot/pkg/metadata"
)

// Standard Open Graph / Twitter Card image size.
const (
	DefaultWidth  = 1200
	DefaultHeight = 630
)

// Viewport is the size of the rendering surface in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Session is a rendering surface reused for every post of a batch.
type Session interface {
	// Capture renders req and returns the PNG encoded image.
	Capture(ctx context.Context, req Request) ([]byte, error)
	Close() error
}

// Launcher starts a Session sized to vp.
type Launcher func(ctx context.Context, vp Viewport) (Session, error)

// Hook is run on every image once it has been written.
type Hook interface {
	Process(ctx context.Context, post metadata.Post, path string) error
}

// Generator writes one preview image per post into OutputDir.
type Generator struct {
	TemplatePath string
	OutputDir    string
	Viewport     Viewport
	Launch       Launcher
	// Timeout bounds the capture of a single post. Zero means no limit.
	Timeout time.Duration
	Hooks   []Hook
	Logger  *log.Logger
}

// Result is the result from a batch run.
type Result struct {
	// Files are the images written, in post order.
	Files []string
}

// Run renders posts in the order given. The first failure aborts the
// batch; images already written are left in place.
func (g *Generator) Run(ctx context.Context, posts []metadata.Post) (result *Result, err error) {
	if g.Launch == nil {
		return nil, errors.New("no session launcher configured")
	}
	if err := ensureDir(g.OutputDir); err != nil {
		return nil, err
	}

	session, err := g.Launch(ctx, g.viewport())
	if err != nil {
		return nil, fmt.Errorf("failed to launch session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close session: %w", cerr)
		}
	}()

	result = &Result{Files: make([]string, 0, len(posts))}
	for _, post := range posts {
		path, err := g.render(ctx, session, post)
		if err != nil {
			return result, fmt.Errorf("failed to render %s: %w", post.Slug, err)
		}
		result.Files = append(result.Files, path)
		g.logger().Printf("wrote %s", path)
	}
	return result, nil
}

func (g *Generator) render(ctx context.Context, session Session, post metadata.Post) (string, error) {
	req, err := NewRequest(g.TemplatePath, post)
	if err != nil {
		return "", err
	}

	captureCtx := ctx
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		captureCtx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	img, err := session.Capture(captureCtx, req)
	if err != nil {
		return "", fmt.Errorf("failed to capture %s: %w", req.URL, err)
	}

	path := filepath.Join(g.OutputDir, req.Filename)
	if err := writeFile(path, img); err != nil {
		return "", err
	}

	for _, h := range g.Hooks {
		if err := h.Process(ctx, post, path); err != nil {
			return "", err
		}
	}
	return path, nil
}

func (g *Generator) viewport() Viewport {
	vp := g.Viewport
	if vp.Width <= 0 {
		vp.Width = DefaultWidth
	}
	if vp.Height <= 0 {
		vp.Height = DefaultHeight
	}
	return vp
}

func (g *Generator) logger() *log.Logger {
	if g.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return g.Logger
}

// ensureDir creates dir if it is missing. Parents are not created.
func ensureDir(dir string) error {
	if err := os.Mkdir(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("failed creating output dir: %w", err)
	}
	return nil
}

// writeFile replaces path with data through a temporary file in the same
// directory.
func writeFile(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.tmp", uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
