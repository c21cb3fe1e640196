package preview

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// Card colours for the canvas renderer.
var (
	cardBackground = color.RGBA{0x1e, 0x1e, 0x1e, 0xff}
	cardAccent     = color.RGBA{0x4e, 0xc9, 0xb0, 0xff}
	cardTitle      = color.White
	cardDate       = color.RGBA{0x9d, 0x9d, 0x9d, 0xff}
)

const (
	cardMargin      = 80.0
	cardLineSpacing = 1.3
	dateFontSize    = 32.0
)

type canvasSession struct {
	vp    Viewport
	title *truetype.Font
	mono  *truetype.Font
}

// NewCanvasLauncher returns a Launcher that draws preview cards directly
// instead of rendering the HTML template in a browser.
func NewCanvasLauncher() Launcher {
	return func(ctx context.Context, vp Viewport) (Session, error) {
		title, err := truetype.Parse(gobold.TTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse title font: %w", err)
		}
		mono, err := truetype.Parse(gomono.TTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date font: %w", err)
		}
		return &canvasSession{vp: vp, title: title, mono: mono}, nil
	}
}

func (s *canvasSession) Capture(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dc := gg.NewContext(s.vp.Width, s.vp.Height)
	dc.SetColor(cardBackground)
	dc.Clear()

	dc.SetColor(cardAccent)
	dc.DrawRectangle(0, 0, float64(s.vp.Width), 12)
	dc.Fill()

	width := float64(s.vp.Width) - 2*cardMargin
	s.fitTitle(dc, req.Title, width, float64(s.vp.Height)*0.55)
	dc.SetColor(cardTitle)
	dc.DrawStringWrapped(req.Title, cardMargin, float64(s.vp.Height)*0.42, 0, 0.5, width, cardLineSpacing, gg.AlignLeft)

	dc.SetFontFace(newFace(s.mono, dateFontSize))
	dc.SetColor(cardDate)
	dc.DrawStringAnchored(req.Date, cardMargin, float64(s.vp.Height)-cardMargin, 0, 0)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *canvasSession) Close() error { return nil }

// fitTitle picks the largest font size at which the wrapped title stays
// within maxWidth × maxHeight.
func (s *canvasSession) fitTitle(dc *gg.Context, text string, maxWidth, maxHeight float64) {
	var prev font.Face
	for size := 36.0; size <= 120; size += 6 {
		face := newFace(s.title, size)
		dc.SetFontFace(face)
		lines := dc.WordWrap(text, maxWidth)
		tooWide := false
		for _, line := range lines {
			if w, _ := dc.MeasureString(line); w > maxWidth {
				tooWide = true
				break
			}
		}
		_, h := dc.MeasureMultilineString(strings.Join(lines, "\n"), cardLineSpacing)
		if tooWide || h > maxHeight {
			if prev != nil {
				dc.SetFontFace(prev)
			}
			return
		}
		prev = face
	}
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
