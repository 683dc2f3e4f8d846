package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/starford/lexicon/internal/feed"
	"github.com/starford/lexicon/internal/models"
)

var (
	extPattern      = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)
	langCodePattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z0-9]+)*$`)
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Corpus  CorpusConfig      `yaml:"corpus"`
	Site    SiteConfig        `yaml:"site"`
	Auth    AuthConfig        `yaml:"auth"`
	Watch   WatchConfig       `yaml:"watch"`
	Metrics MetricsConfig     `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Corpus.Validate(); err != nil {
		return fmt.Errorf("corpus: %w", err)
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CorpusConfig locates the term documents.
type CorpusConfig struct {
	Path      string           `yaml:"path"`
	Extension string           `yaml:"extension"`
	Languages []LanguageConfig `yaml:"languages"`
}

// Validate validates the corpus configuration.
func (c *CorpusConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.Match(extPattern)),
		validation.Field(&c.Languages, validation.By(uniqueCodes)),
	)
}

// Models returns the configured secondary languages in order.
func (c *CorpusConfig) Models() []models.Language {
	out := make([]models.Language, len(c.Languages))
	for i, l := range c.Languages {
		out[i] = models.Language{Code: l.Code, Name: l.DisplayName()}
	}
	return out
}

// LanguageConfig is one secondary partition.
type LanguageConfig struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Validate validates a language entry.
func (c LanguageConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Code, validation.Required, validation.Match(langCodePattern)),
	)
}

// DisplayName returns Name, or the English name of Code when Name is empty.
func (c LanguageConfig) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	tag, err := language.Parse(c.Code)
	if err != nil {
		return c.Code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return c.Code
}

func uniqueCodes(v any) error {
	langs, _ := v.([]LanguageConfig)
	seen := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		if _, dup := seen[l.Code]; dup {
			return fmt.Errorf("duplicate language %q", l.Code)
		}
		seen[l.Code] = struct{}{}
	}
	return nil
}

// SiteConfig describes the published site and its feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	URL         string `yaml:"url"`
	FeedURL     string `yaml:"feed_url"`
	FeedPath    string `yaml:"feed_path"`
	OutputDir   string `yaml:"output_dir"`
	Language    string `yaml:"language"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.FeedURL, is.URL),
		validation.Field(&c.FeedPath, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
	)
}

// Feed returns the channel description for the feed builder.
func (c *SiteConfig) Feed() feed.Config {
	return feed.Config{
		Title:       c.Title,
		SiteURL:     c.URL,
		FeedURL:     c.FeedURL,
		Description: c.Description,
		Language:    c.Language,
		Author:      c.Author,
		Path:        c.FeedPath,
	}
}

// AuthConfig holds authentication configuration.
//
// Mode controls how the mutating endpoints are protected:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// WatchConfig controls the corpus watcher used by serve.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Corpus: CorpusConfig{
			Path:      "./posts",
			Extension: ".md",
			Languages: []LanguageConfig{
				{Code: "es", Name: "Spanish"},
				{Code: "pt", Name: "Portugués"},
			},
		},
		Site: SiteConfig{
			Title:     "lexicon",
			URL:       "http://localhost:8080",
			FeedURL:   "http://localhost:8080/feed.xml",
			FeedPath:  "feed.xml",
			OutputDir: "./public",
			Language:  "en",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 300 * time.Millisecond,
		},
	}
}
