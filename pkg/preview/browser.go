package preview

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// BrowserOptions configures the headless browser.
type BrowserOptions struct {
	// ExecPath overrides the browser binary lookup.
	ExecPath  string
	NoSandbox bool
}

type browserSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewBrowserLauncher returns a Launcher that starts one headless Chrome with
// a single tab.
func NewBrowserLauncher(opts BrowserOptions) Launcher {
	return func(ctx context.Context, vp Viewport) (Session, error) {
		allocOpts := chromedp.DefaultExecAllocatorOptions[:]
		if opts.ExecPath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
		}
		if opts.NoSandbox {
			allocOpts = append(allocOpts, chromedp.NoSandbox)
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
		tabCtx, cancelTab := chromedp.NewContext(allocCtx)

		if err := chromedp.Run(tabCtx, chromedp.EmulateViewport(int64(vp.Width), int64(vp.Height))); err != nil {
			cancelTab()
			cancelAlloc()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}

		return &browserSession{
			ctx:         tabCtx,
			cancelTab:   cancelTab,
			cancelAlloc: cancelAlloc,
		}, nil
	}
}

// Capture navigates the tab to the template URL, waits for the load event
// and screenshots the viewport.
func (s *browserSession) Capture(ctx context.Context, req Request) ([]byte, error) {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var buf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate(req.URL),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("screenshot buffer is empty")
	}
	return buf, nil
}

func (s *browserSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancelTab()
	s.cancelAlloc()
	return err
}
