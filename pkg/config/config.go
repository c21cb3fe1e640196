// Package config loads siteshot settings from a YAML file, a .env file and
// the environment, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Renderers.
const (
	RendererChrome = "chrome"
	RendererCanvas = "canvas"
)

// Config represents the application configuration
type Config struct {
	// Metadata is the content index file. ContentDir, when set, is read
	// instead as a directory of markdown files.
	Metadata   string `yaml:"metadata"`
	ContentDir string `yaml:"content_dir"`
	BlogDir    string `yaml:"blog_dir"`

	Template  string        `yaml:"template"`
	OutputDir string        `yaml:"output_dir"`
	Width     int           `yaml:"width"`
	Height    int           `yaml:"height"`
	Renderer  string        `yaml:"renderer"`
	Timeout   time.Duration `yaml:"timeout"`
	Chrome    ChromeConfig  `yaml:"chrome"`

	Formats []string `yaml:"formats"`
	S3      S3Config `yaml:"s3"`

	DistDir string        `yaml:"dist_dir"`
	Feed    FeedConfig    `yaml:"feed"`
	Gallery GalleryConfig `yaml:"gallery"`
}

type ChromeConfig struct {
	ExecPath  string `yaml:"exec_path"`
	NoSandbox bool   `yaml:"no_sandbox"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

type FeedConfig struct {
	Path        string `yaml:"path"`
	Title       string `yaml:"title"`
	SiteURL     string `yaml:"site_url"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
}

type GalleryConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Metadata:  "metadata.json",
		BlogDir:   "blog",
		Template:  "scripts/embed/template.html",
		OutputDir: "dist/images/blog",
		Width:     1200,
		Height:    630,
		Renderer:  RendererChrome,
		Timeout:   30 * time.Second,
		DistDir:   "dist",
		Feed: FeedConfig{
			Path:        "dist/feed.xml",
			Title:       "William Henderson",
			SiteURL:     "https://whenderson.dev",
			Description: "William Henderson's blog.",
			Language:    "en-gb",
		},
		Gallery: GalleryConfig{Addr: ":3000"},
	}
}

// Load reads the configuration file at path on top of the defaults, then
// applies .env and SITESHOT_* environment overrides. An empty path skips
// the file. The result is not validated; callers apply their own
// overrides first and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// A missing .env file is fine.
	_ = godotenv.Load()
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("SITESHOT_METADATA", &c.Metadata)
	str("SITESHOT_CONTENT_DIR", &c.ContentDir)
	str("SITESHOT_TEMPLATE", &c.Template)
	str("SITESHOT_OUTPUT_DIR", &c.OutputDir)
	str("SITESHOT_RENDERER", &c.Renderer)
	str("SITESHOT_CHROME_PATH", &c.Chrome.ExecPath)
	str("SITESHOT_S3_BUCKET", &c.S3.Bucket)
	str("SITESHOT_S3_PREFIX", &c.S3.Prefix)
	str("SITESHOT_S3_REGION", &c.S3.Region)
	str("SITESHOT_SITE_URL", &c.Feed.SiteURL)

	if v := getenv("SITESHOT_FORMATS"); v != "" {
		c.Formats = splitList(v)
	}
	if v := getenv("SITESHOT_NO_SANDBOX"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SITESHOT_NO_SANDBOX: %w", err)
		}
		c.Chrome.NoSandbox = b
	}
	if v := getenv("SITESHOT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SITESHOT_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.Metadata == "" && c.ContentDir == "" {
		return fmt.Errorf("metadata or content_dir is required")
	}
	if c.ContentDir == "" && c.BlogDir == "" {
		return fmt.Errorf("blog_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	switch c.Renderer {
	case RendererChrome:
		if c.Template == "" {
			return fmt.Errorf("template is required for the %s renderer", RendererChrome)
		}
	case RendererCanvas:
	default:
		return fmt.Errorf("unknown renderer %q", c.Renderer)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
