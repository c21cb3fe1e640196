// Package publish post-processes rendered preview images.
package publish

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/whenderson/siteshot/pkg/metadata"
)

var formatArgs = map[string]ffmpeg.KwArgs{
	"webp": {"c:v": "libwebp", "quality": "85"},
	"jpg":  {"q:v": "2"},
}

// Transcoder writes extra encodings of each image beside it using ffmpeg.
type Transcoder struct {
	formats []string
}

// NewTranscoder returns a Transcoder for the given formats ("webp", "jpg").
func NewTranscoder(formats []string) (*Transcoder, error) {
	t := &Transcoder{}
	for _, f := range formats {
		f = strings.ToLower(strings.TrimPrefix(f, "."))
		if f == "jpeg" {
			f = "jpg"
		}
		if _, ok := formatArgs[f]; !ok {
			return nil, fmt.Errorf("unsupported output format %q", f)
		}
		t.formats = append(t.formats, f)
	}
	return t, nil
}

// Process transcodes the image at path into every configured format.
func (t *Transcoder) Process(ctx context.Context, post metadata.Post, path string) error {
	for _, f := range t.formats {
		args := t.command(path, f).Args
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("failed transcoding %s to %s: %w: %s", path, f, err, strings.TrimSpace(string(out)))
		}
	}
	return nil
}

func (t *Transcoder) command(src, format string) *exec.Cmd {
	dst := strings.TrimSuffix(src, filepath.Ext(src)) + "." + format
	return ffmpeg.
		Input(src).
		Output(dst, formatArgs[format]).
		OverWriteOutput().
		Compile()
}
