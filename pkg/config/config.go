// Package config loads deposit settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-deposit/pkg/editor"
	"github.com/goliatone/go-deposit/pkg/logging"
	"github.com/goliatone/go-deposit/pkg/markup"
	"github.com/goliatone/go-deposit/pkg/schema"
	"github.com/goliatone/go-deposit/pkg/session"
	"github.com/goliatone/go-deposit/pkg/transport"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Config is the file layout.
type Config struct {
	Transport Transport `yaml:"transport"`
	Schema    Schema    `yaml:"schema"`
	Editor    Editor    `yaml:"editor"`
	Messages  Messages  `yaml:"messages"`
	Markup    Markup    `yaml:"markup"`
}

// Transport configures the HTTP client used for records and definitions.
type Transport struct {
	BaseURL string            `yaml:"base_url"`
	Timeout string            `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// Schema configures where region schemas are loaded from.
type Schema struct {
	// Dir serves fs:// sources from a directory.
	Dir string `yaml:"dir"`
	// BaseURL resolves root-relative schema URLs. Defaults to the transport
	// base URL.
	BaseURL string `yaml:"base_url"`
}

// Editor mirrors editor.Options.
type Editor struct {
	Theme                  string            `yaml:"theme"`
	Variant                string            `yaml:"variant"`
	IconLib                string            `yaml:"iconlib"`
	Tokens                 map[string]string `yaml:"tokens"`
	AjaxRefs               bool              `yaml:"ajax"`
	DisableCollapse        bool              `yaml:"disable_collapse"`
	DisableEditJSON        bool              `yaml:"disable_edit_json"`
	DisableProperties      bool              `yaml:"disable_properties"`
	NoAdditionalProperties bool              `yaml:"no_additional_properties"`
	RemoveEmptyProperties  bool              `yaml:"remove_empty_properties"`
}

// Messages overrides the session notifications.
type Messages struct {
	SaveSuccess   string `yaml:"save_success"`
	DeleteSuccess string `yaml:"delete_success"`
}

// Markup overrides the page contract.
type Markup struct {
	SessionID     string `yaml:"session_id"`
	RegionClass   string `yaml:"region_class"`
	BlobClass     string `yaml:"blob_class"`
	LoadingClass  string `yaml:"loading_class"`
	RenderedClass string `yaml:"rendered_class"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	opts := editor.DefaultOptions()
	messages := session.DefaultMessages()
	return Config{
		Transport: Transport{Timeout: DefaultTimeout.String()},
		Editor: Editor{
			Theme:                  opts.ThemeName(),
			IconLib:                opts.IconLib,
			AjaxRefs:               opts.AjaxRefs,
			DisableCollapse:        opts.DisableCollapse,
			DisableEditJSON:        opts.DisableEditJSON,
			DisableProperties:      opts.DisableProperties,
			NoAdditionalProperties: opts.NoAdditionalProperties,
			RemoveEmptyProperties:  opts.RemoveEmptyProperties,
		},
		Messages: Messages{SaveSuccess: messages.SaveSuccess, DeleteSuccess: messages.DeleteSuccess},
		Markup:   Markup{SessionID: markup.DefaultSessionID},
	}
}

// Load reads path. An empty path returns Default.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values YAML cannot type.
func (c Config) Validate() error {
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout parses the transport timeout. Zero disables it.
func (c Config) Timeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Transport.Timeout)
	if raw == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: transport.timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("config: transport.timeout must not be negative, got %s", raw)
	}
	return timeout, nil
}

// TransportOptions returns the HTTP client options.
func (c Config) TransportOptions(logger logging.Logger) []transport.Option {
	timeout, _ := c.Timeout()
	opts := []transport.Option{
		transport.WithTimeout(timeout),
		transport.WithLogger(logger),
	}
	if base := strings.TrimSpace(c.Transport.BaseURL); base != "" {
		opts = append(opts, transport.WithBaseURL(base))
	}
	if len(c.Transport.Headers) > 0 {
		opts = append(opts, transport.WithHeaders(c.Transport.Headers))
	}
	return opts
}

// LoaderOptions returns the schema loader configuration. HTTP loading is
// always enabled since regions reference schemas by URL.
func (c Config) LoaderOptions() schema.LoaderOptions {
	timeout, _ := c.Timeout()
	base := strings.TrimSpace(c.Schema.BaseURL)
	if base == "" {
		base = strings.TrimSpace(c.Transport.BaseURL)
	}
	opts := schema.LoaderOptions{
		AllowHTTPFallback: true,
		RequestTimeout:    timeout,
		BaseURL:           base,
	}
	if dir := strings.TrimSpace(c.Schema.Dir); dir != "" {
		opts.FileSystem = os.DirFS(dir)
	}
	return opts
}

// EditorOptions returns the options editors are built with.
func (c Config) EditorOptions() editor.Options {
	return editor.Options{
		AjaxRefs:               c.Editor.AjaxRefs,
		DisableCollapse:        c.Editor.DisableCollapse,
		DisableEditJSON:        c.Editor.DisableEditJSON,
		DisableProperties:      c.Editor.DisableProperties,
		NoAdditionalProperties: c.Editor.NoAdditionalProperties,
		RemoveEmptyProperties:  c.Editor.RemoveEmptyProperties,
		IconLib:                c.Editor.IconLib,
		Theme: theme.RendererConfig{
			Theme:   c.Editor.Theme,
			Variant: c.Editor.Variant,
			Tokens:  c.Editor.Tokens,
		},
	}.Clone()
}

// SessionMessages returns the notifications for session.WithMessages.
func (c Config) SessionMessages() session.Messages {
	return session.Messages{SaveSuccess: c.Messages.SaveSuccess, DeleteSuccess: c.Messages.DeleteSuccess}
}

// MarkupOptions returns the page contract for markup.Parse and
// markup.NewRenderer.
func (c Config) MarkupOptions() []markup.Option {
	return []markup.Option{markup.WithSelectors(markup.Selectors{
		Region:   c.Markup.RegionClass,
		Blob:     c.Markup.BlobClass,
		Loading:  c.Markup.LoadingClass,
		Rendered: c.Markup.RenderedClass,
		Session:  c.Markup.SessionID,
	})}
}
