package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/whenderson/siteshot/pkg/config"
	"github.com/whenderson/siteshot/pkg/feed"
	"github.com/whenderson/siteshot/pkg/gallery"
	"github.com/whenderson/siteshot/pkg/metadata"
	"github.com/whenderson/siteshot/pkg/preview"
	"github.com/whenderson/siteshot/pkg/publish"
	"github.com/whenderson/siteshot/pkg/variant"
	"github.com/whenderson/siteshot/pkg/watch"
)

// options are the flags shared by every command. Flags that are set win
// over the config file and environment.
type options struct {
	fs         *flag.FlagSet
	configPath string
	metadata   string
	contentDir string
	template   string
	outputDir  string
	renderer   string
	timeout    time.Duration
}

func newOptions(name string) *options {
	o := &options{fs: flag.NewFlagSet(name, flag.ExitOnError)}
	o.fs.StringVar(&o.configPath, "config", os.Getenv("SITESHOT_CONFIG"), "Path to the YAML config file")
	o.fs.StringVar(&o.metadata, "metadata", "", "Path to the content index (metadata.json)")
	o.fs.StringVar(&o.contentDir, "content", "", "Directory of markdown posts, used instead of the index")
	o.fs.StringVar(&o.template, "template", "", "Path to the HTML template")
	o.fs.StringVar(&o.outputDir, "output", "", "Directory the preview images are written to")
	o.fs.StringVar(&o.renderer, "renderer", "", "Renderer: chrome|canvas")
	o.fs.DurationVar(&o.timeout, "timeout", 0, "Per-post render timeout (0 disables)")
	return o
}

func (o *options) load(args []string) (*config.Config, error) {
	if err := o.fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	o.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "metadata":
			cfg.Metadata = o.metadata
		case "content":
			cfg.ContentDir = o.contentDir
		case "template":
			cfg.Template = o.template
		case "output":
			cfg.OutputDir = o.outputDir
		case "renderer":
			cfg.Renderer = o.renderer
		case "timeout":
			cfg.Timeout = o.timeout
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadPosts(cfg *config.Config) ([]metadata.Post, error) {
	if cfg.ContentDir != "" {
		return metadata.LoadDir(cfg.ContentDir)
	}
	return metadata.LoadIndex(cfg.Metadata, cfg.BlogDir)
}

func newGenerator(cfg *config.Config, logger *log.Logger) (*preview.Generator, error) {
	launch := preview.NewBrowserLauncher(preview.BrowserOptions{
		ExecPath:  cfg.Chrome.ExecPath,
		NoSandbox: cfg.Chrome.NoSandbox,
	})
	if cfg.Renderer == config.RendererCanvas {
		launch = preview.NewCanvasLauncher()
	}

	var hooks []preview.Hook
	if len(cfg.Formats) > 0 {
		t, err := publish.NewTranscoder(cfg.Formats)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, t)
	}
	if cfg.S3.Bucket != "" {
		u, err := publish.NewUploader(cfg.S3.Bucket, cfg.S3.Prefix, cfg.S3.Region)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, u)
	}

	return &preview.Generator{
		TemplatePath: cfg.Template,
		OutputDir:    cfg.OutputDir,
		Viewport:     preview.Viewport{Width: cfg.Width, Height: cfg.Height},
		Launch:       launch,
		Timeout:      cfg.Timeout,
		Hooks:        hooks,
		Logger:       logger,
	}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runEmbed(args []string, logger *log.Logger) error {
	cfg, err := newOptions("embed").load(args)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	return embed(ctx, cfg, logger)
}

func embed(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	posts, err := loadPosts(cfg)
	if err != nil {
		return err
	}
	g, err := newGenerator(cfg, logger)
	if err != nil {
		return err
	}
	result, err := g.Run(ctx, posts)
	if err != nil {
		return err
	}
	fmt.Printf("Rendered %d preview images to %s\n", len(result.Files), cfg.OutputDir)
	return nil
}

func runFeed(args []string, logger *log.Logger) error {
	o := newOptions("feed")
	out := o.fs.String("out", "", "Path of the feed file")
	cfg, err := o.load(args)
	if err != nil {
		return err
	}
	if *out != "" {
		cfg.Feed.Path = *out
	}
	return writeFeed(cfg, logger)
}

func writeFeed(cfg *config.Config, logger *log.Logger) error {
	posts, err := loadPosts(cfg)
	if err != nil {
		return err
	}
	ch := feed.Channel{
		Title:       cfg.Feed.Title,
		SiteURL:     cfg.Feed.SiteURL,
		Description: cfg.Feed.Description,
		Language:    cfg.Feed.Language,
	}
	if err := feed.Write(cfg.Feed.Path, posts, ch, time.Now()); err != nil {
		return err
	}
	logger.Printf("wrote %s (%d posts)", cfg.Feed.Path, len(posts))
	return nil
}

func runVariants(args []string, logger *log.Logger) error {
	o := newOptions("variants")
	dist := o.fs.String("dist", "", "Built site directory to process")
	cfg, err := o.load(args)
	if err != nil {
		return err
	}
	if *dist != "" {
		cfg.DistDir = *dist
	}
	written, err := variant.Process(cfg.DistDir, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Created %d variant pages in %s\n", len(written), cfg.DistDir)
	return nil
}

func runServe(args []string, logger *log.Logger) error {
	o := newOptions("serve")
	addr := o.fs.String("addr", "", "Listen address")
	cfg, err := o.load(args)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Gallery.Addr = *addr
	}
	posts, err := loadPosts(cfg)
	if err != nil {
		return err
	}

	srv := gallery.New(posts, cfg.OutputDir, logger)
	ctx, stop := signalContext()
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("serving previews from %s on %s", cfg.OutputDir, cfg.Gallery.Addr)
	return srv.ListenAndServe(cfg.Gallery.Addr)
}

func runWatch(args []string, logger *log.Logger) error {
	cfg, err := newOptions("watch").load(args)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	build := func() {
		if err := embed(ctx, cfg, logger); err != nil {
			logger.Printf("build failed: %v", err)
			return
		}
		if err := writeFeed(cfg, logger); err != nil {
			logger.Printf("feed failed: %v", err)
		}
	}
	build()

	source := cfg.Metadata
	if cfg.ContentDir != "" {
		source = cfg.ContentDir
	}
	files := []string{source}
	if cfg.Renderer == config.RendererChrome {
		files = append(files, cfg.Template)
	}
	logger.Printf("watching %v", files)
	return watch.Run(ctx, files, 300*time.Millisecond, build)
}
