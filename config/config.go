// Package config loads parser settings from defaults, an optional YAML file and DOCPARSER_*
// environment variables, in increasing order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/mempirate/docparser/status"
)

const ENV_PREFIX = "DOCPARSER"

type Config struct {
	PEPURL       string `mapstructure:"pep_url"`
	DocsURL      string `mapstructure:"docs_url"`
	CachePath    string `mapstructure:"cache_path"`
	DownloadsDir string `mapstructure:"downloads_dir"`
	ResultsDir   string `mapstructure:"results_dir"`

	Log  LogConfig  `mapstructure:"log"`
	HTTP HTTPConfig `mapstructure:"http"`

	// ExpectedStatus maps PEP index preview codes to the statuses consistent with them.
	ExpectedStatus status.Table `mapstructure:"-"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Load reads the configuration. An empty path searches for docparser.yaml in . and ./config;
// a missing file there is not an error, a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("docparser")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	// A table from the file replaces the default one instead of being merged key by key.
	cfg.ExpectedStatus = status.Default()
	if v.InConfig("expected_status") {
		table := status.Table{}
		for code, statuses := range v.GetStringMapStringSlice("expected_status") {
			table[normalizeCode(code)] = statuses
		}
		cfg.ExpectedStatus = table
	}

	// Relative links on the docs site resolve against a directory.
	if cfg.DocsURL != "" && !strings.HasSuffix(cfg.DocsURL, "/") {
		cfg.DocsURL += "/"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pep_url", "https://peps.python.org/")
	v.SetDefault("docs_url", "https://docs.python.org/3/")
	v.SetDefault("cache_path", filepath.Join(defaultDataDir(), "http-cache.db"))
	v.SetDefault("downloads_dir", "downloads")
	v.SetDefault("results_dir", "results")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join("logs", "parser.log"))
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "docparser/1.0")
}

// normalizeCode maps the YAML spelling of the empty preview code ("none") back to "".
// Viper lowercases keys, so codes are stored upper case.
func normalizeCode(code string) string {
	switch code {
	case "none", "empty", `""`:
		return ""
	}
	return strings.ToUpper(code)
}

func (c *Config) Validate() error {
	if c.PEPURL == "" {
		return errors.New("pep_url must be set")
	}
	if c.DocsURL == "" {
		return errors.New("docs_url must be set")
	}
	if c.CachePath == "" {
		return errors.New("cache_path must be set")
	}

	return errors.Wrap(c.ExpectedStatus.Validate(), "invalid expected_status")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".local", "share", "docparser")
}
