package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dfiru/simulchip/internal/web"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Netrunnerdb Netrunnerdb `yaml:"netrunnerdb"`
	Cache       Cache       `yaml:"cache"`
	Collection  Collection  `yaml:"collection"`
	HTTP        web.Config  `yaml:"http"`
	Logging     Logging     `yaml:"logging"`
}

type Netrunnerdb struct {
	BaseURL      string `yaml:"baseUrl"`
	ImageURL     string `yaml:"imageUrl"`
	PrintingsURL string `yaml:"printingsUrl"`
}

// BuildImageURL resolves the image url template for the given card code.
func (n Netrunnerdb) BuildImageURL(cardCode string) string {
	r := strings.NewReplacer("{code}", cardCode)

	return r.Replace(n.ImageURL)
}

// BuildPrintingsURL resolves the printings endpoint for the given card code.
// Returns an empty string if no printings endpoint is configured.
func (n Netrunnerdb) BuildPrintingsURL(cardCode string) string {
	if strings.TrimSpace(n.PrintingsURL) == "" {
		return ""
	}
	r := strings.NewReplacer("{code}", cardCode)

	return r.Replace(n.PrintingsURL)
}

type Cache struct {
	Location string `yaml:"location"`
}

type Collection struct {
	Path string `yaml:"path"`
}

type Logging struct {
	Level string `yaml:"level"`
}

func (l Logging) LevelOrDefault() string {
	level := strings.TrimSpace(l.Level)
	if level == "" {
		level = "INFO"
	}

	return strings.ToLower(level)
}

// Default returns the built-in configuration rooted under the user home.
func Default() *Config {
	base := "."
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".simulchip")
	}

	return &Config{
		Netrunnerdb: Netrunnerdb{
			BaseURL:  "https://netrunnerdb.com/api/2.0/public",
			ImageURL: "https://card-images.netrunnerdb.com/v2/large/{code}.jpg",
		},
		Cache: Cache{
			Location: filepath.Join(base, "cache"),
		},
		Collection: Collection{
			Path: filepath.Join(base, "collection.toml"),
		},
		HTTP: web.Config{
			Timeout:    30 * time.Second,
			Delay:      500 * time.Millisecond,
			Retries:    2,
			RetryDelay: time.Second,
			Retrieables: []int{
				429, 502, 503, 504,
			},
		},
		Logging: Logging{Level: "INFO"},
	}
}

func Load(path string) (*Config, error) {
	s, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if s.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a regular file", path)
	}

	return buildConfig(path)
}

func buildConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}

	config := Default()

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("config unmarshal failed with: %w", err)
	}

	return config, nil
}
