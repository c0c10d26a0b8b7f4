package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const (
	envPort             = "PORT"
	envAddr             = "BOOKSHELF_ADDR"
	envIgnoreDateFilter = "BOOKSHELF_IGNORE_DATE_FILTER"
	envLogVerbosity     = "BOOKSHELF_LOG_VERBOSITY"
	envComplexityLimit  = "BOOKSHELF_COMPLEXITY_LIMIT"
)

// DefaultComplexityLimit leaves room for the catalog queries and introspection.
const DefaultComplexityLimit = 200

// Config holds the server settings. A ComplexityLimit of 0 turns the
// operation complexity check off.
type Config struct {
	Addr             string `yaml:"addr"`
	QueryPath        string `yaml:"queryPath"`
	PlaygroundPath   string `yaml:"playgroundPath"`
	IgnoreDateFilter bool   `yaml:"ignoreDateFilter"`
	LogVerbosity     int    `yaml:"logVerbosity"`
	ComplexityLimit  int    `yaml:"complexityLimit"`
}

func Default() *Config {
	return &Config{
		Addr:            ":3000",
		QueryPath:       "/graphql",
		PlaygroundPath:  "/graphiql",
		ComplexityLimit: DefaultComplexityLimit,
	}
}

// Load builds a Config from the defaults, the YAML file at configFile and the
// environment, in that order. Variables in dotEnvFile are exported first but
// never replace ones already set. Empty paths are skipped.
func Load(configFile, dotEnvFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		b, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.DecodeYAML(b); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", configFile, err)
		}
	}

	if dotEnvFile != "" {
		err := godotenv.Load(dotEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotEnvFile, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DecodeYAML overlays the keys present in b. Unknown keys are rejected.
func (cfg *Config) DecodeYAML(b []byte) error {
	return yaml.UnmarshalWithOptions(b, cfg, yaml.Strict())
}

// ApplyEnv overrides fields from the environment. BOOKSHELF_ADDR wins over PORT.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPort); ok && v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("%s: %q is not a port number", envPort, v)
		}
		cfg.Addr = ":" + v
	}
	if v, ok := lookup(envAddr); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup(envIgnoreDateFilter); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envIgnoreDateFilter, err)
		}
		cfg.IgnoreDateFilter = b
	}
	if v, ok := lookup(envLogVerbosity); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envLogVerbosity, err)
		}
		cfg.LogVerbosity = n
	}
	if v, ok := lookup(envComplexityLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envComplexityLimit, err)
		}
		cfg.ComplexityLimit = n
	}

	return nil
}

func (cfg *Config) Validate() error {
	if cfg.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if !strings.HasPrefix(cfg.QueryPath, "/") {
		return fmt.Errorf("queryPath must start with /: %q", cfg.QueryPath)
	}
	if !strings.HasPrefix(cfg.PlaygroundPath, "/") {
		return fmt.Errorf("playgroundPath must start with /: %q", cfg.PlaygroundPath)
	}
	if cfg.QueryPath == cfg.PlaygroundPath {
		return fmt.Errorf("queryPath and playgroundPath must differ: %q", cfg.QueryPath)
	}
	if cfg.LogVerbosity < 0 {
		return fmt.Errorf("logVerbosity must not be negative: %d", cfg.LogVerbosity)
	}
	if cfg.ComplexityLimit < 0 {
		return fmt.Errorf("complexityLimit must not be negative: %d", cfg.ComplexityLimit)
	}

	return nil
}

// URL returns the address a browser on the same host can use for path.
func (cfg *Config) URL(path string) string {
	host, port := cfg.Addr, ""
	if i := strings.LastIndex(cfg.Addr, ":"); i >= 0 {
		host, port = cfg.Addr[:i], cfg.Addr[i+1:]
	}
	if host == "" || host == "0.0.0.0" || host == "[::]" {
		host = "localhost"
	}
	if port == "" {
		return "http://" + host + path
	}
	return "http://" + host + ":" + port + path
}
