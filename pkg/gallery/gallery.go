// Package gallery serves the rendered preview images for review.
package gallery

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/whenderson/siteshot/pkg/metadata"
	"github.com/whenderson/siteshot/pkg/preview"
)

// Server is the gallery HTTP server.
type Server struct {
	*echo.Echo
	posts     []metadata.Post
	outputDir string
}

// New returns a gallery over posts whose images live in outputDir.
func New(posts []metadata.Post, outputDir string, logger *log.Logger) *Server {
	s := &Server{Echo: echo.New(), posts: posts, outputDir: outputDir}
	s.HideBanner = true
	s.HidePort = true

	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Printf("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	s.Use(middleware.Recover())

	s.GET("/", s.handleIndex)
	s.GET("/healthz", handleHealth)
	s.Static("/images", outputDir)
	return s
}

// ListenAndServe serves on addr until the server is shut down.
func (s *Server) ListenAndServe(addr string) error {
	if err := s.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(c echo.Context) error {
	cards := make([]card, 0, len(s.posts))
	for _, p := range s.posts {
		name := preview.OutputName(p.Slug)
		_, err := os.Stat(filepath.Join(s.outputDir, name))
		cards = append(cards, card{
			Title:   p.Title,
			Date:    preview.FormatDate(p.Date),
			Slug:    p.Slug,
			Image:   name,
			Missing: err != nil,
		})
	}
	return render(c, indexPage(cards))
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
