package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/apiscenario/internal/auth"
	"github.com/loykin/apiscenario/internal/common"
	"github.com/loykin/apiscenario/internal/constants"
	"github.com/loykin/apiscenario/internal/httpc"
	"github.com/loykin/apiscenario/internal/store"
	"github.com/spf13/viper"
)

type LoggingConfig struct {
	Level         string `mapstructure:"level"`          // error, warn, info, debug
	Format        string `mapstructure:"format"`         // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive"` // enable/disable sensitive data masking
	Color         *bool  `mapstructure:"color"`          // enable/disable colorized output
}

type ClientConfig struct {
	Insecure      bool          `mapstructure:"insecure"`
	MinTLSVersion string        `mapstructure:"min_tls_version"`
	MaxTLSVersion string        `mapstructure:"max_tls_version"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// ConfigDoc is the decoded config file.
type ConfigDoc struct {
	BaseURL      string            `mapstructure:"base_url"`
	ResourceRoot string            `mapstructure:"resource_root"`
	Features     []string          `mapstructure:"features"`
	Headers      map[string]string `mapstructure:"headers"`
	Auth         []auth.Provider   `mapstructure:"auth"`
	Client       ClientConfig      `mapstructure:"client"`
	Wait         httpc.WaitConfig  `mapstructure:"wait"`
	Logging      LoggingConfig     `mapstructure:"logging"`
	Store        store.Config      `mapstructure:"store"`

	// Path is the file the document was read from, empty for defaults only.
	Path string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "")
	v.SetDefault("resource_root", constants.DefaultResourceRoot)
	v.SetDefault("features", []string{constants.DefaultFeaturesDir})
	v.SetDefault("client.insecure", false)
	v.SetDefault("client.min_tls_version", "")
	v.SetDefault("client.max_tls_version", "")
	v.SetDefault("client.timeout", constants.DefaultClientTimeout)
	v.SetDefault("wait.url", "")
	v.SetDefault("wait.method", constants.DefaultWaitMethod)
	v.SetDefault("wait.status", constants.DefaultWaitStatus)
	v.SetDefault("wait.timeout", constants.DefaultWaitTimeout)
	v.SetDefault("wait.interval", constants.DefaultWaitInterval)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("store.disabled", false)
	v.SetDefault("store.type", store.DriverSqlite)
	v.SetDefault("store.sqlite.path", "")
	v.SetDefault("store.table_prefix", "")
	v.SetDefault("store.table_name", "")
}

// Load reads path (YAML) with APISCENARIO_* environment overrides, e.g.
// APISCENARIO_BASE_URL or APISCENARIO_STORE_TYPE. A missing file is an
// error unless optional is set, in which case defaults apply.
func Load(path string, optional bool) (*ConfigDoc, error) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	used := ""
	if p := strings.TrimSpace(path); p != "" {
		clean := filepath.Clean(p)
		info, err := os.Stat(clean)
		switch {
		case err == nil && !info.Mode().IsRegular():
			return nil, fmt.Errorf("not a regular file: %s", clean)
		case err == nil:
			v.SetConfigFile(clean)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", clean, err)
			}
			used = clean
		case errors.Is(err, fs.ErrNotExist) && optional:
		default:
			return nil, err
		}
	}

	var doc ConfigDoc
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&doc, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	doc.Path = used
	return &doc, nil
}

// Dir is the directory relative paths of the document resolve against.
func (c *ConfigDoc) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// resolve anchors p at the config directory unless it is absolute.
func (c *ConfigDoc) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// FeaturePaths returns the configured feature files and directories.
func (c *ConfigDoc) FeaturePaths() []string {
	out := make([]string, 0, len(c.Features))
	for _, f := range c.Features {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, c.resolve(f))
		}
	}
	return out
}

// ResourceDir returns the directory multipart resources are read from.
func (c *ConfigDoc) ResourceDir() string {
	return c.resolve(strings.TrimSpace(c.ResourceRoot))
}

// StoreConfig returns the history store settings; a relative sqlite path is
// anchored at the config directory.
func (c *ConfigDoc) StoreConfig() store.Config {
	sc := c.Store
	sc.SQLite.Path = c.resolve(strings.TrimSpace(sc.SQLite.Path))
	return sc
}

// HTTPClient builds the client settings shared by every request.
func (c *ConfigDoc) HTTPClient() *httpc.Httpc {
	return &httpc.Httpc{
		BaseURL:   strings.TrimSpace(c.BaseURL),
		Timeout:   c.Client.Timeout,
		TlsConfig: httpc.TLSConfig(c.Client.Insecure, c.Client.MinTLSVersion, c.Client.MaxTLSVersion),
	}
}

// DefaultHeaders merges the static headers with the acquired auth headers;
// auth wins on conflict.
func (c *ConfigDoc) DefaultHeaders(ctx context.Context) (http.Header, error) {
	h := http.Header{}
	for k, v := range c.Headers {
		h.Set(k, v)
	}
	if len(c.Auth) == 0 {
		return h, nil
	}
	tlsCfg := httpc.TLSConfig(c.Client.Insecure, c.Client.MinTLSVersion, c.Client.MaxTLSVersion)
	ah, err := auth.Headers(ctx, c.Auth, auth.WithTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	for k, vals := range ah {
		h[k] = vals
	}
	return h, nil
}

// SetupLogging installs the global logger and masker from the logging section.
func (c *ConfigDoc) SetupLogging() error {
	level, err := common.ParseLogLevel(c.Logging.Level)
	if err != nil {
		return err
	}

	format := common.Format(strings.ToLower(strings.TrimSpace(c.Logging.Format)))
	switch format {
	case "", common.FormatText:
		format = common.FormatText
		if c.Logging.Color != nil && *c.Logging.Color {
			format = common.FormatColor
		}
	case common.FormatJSON, common.FormatColor:
	case "colour":
		format = common.FormatColor
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}

	masking := true
	if c.Logging.MaskSensitive != nil {
		masking = *c.Logging.MaskSensitive
	}
	common.EnableMasking(masking)

	logger := common.NewLoggerWithFormat(os.Stderr, level, format)
	common.SetDefaultLogger(logger)
	logger.Debug("logging configured", "level", level.String(), "format", string(format), "mask_sensitive", masking)
	return nil
}
