package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested sections
// map naturally to flags/env.
type FileConfig struct {
	Addr string `yaml:"addr" json:"addr"`

	Search struct {
		Provider string `yaml:"provider" json:"provider"`
		File     string `yaml:"file" json:"file"`
		Language string `yaml:"language" json:"language"`
		Max      int    `yaml:"max" json:"max"`
	} `yaml:"search" json:"search"`

	Searx struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
		UA  string `yaml:"ua" json:"ua"`
	} `yaml:"searx" json:"searx"`

	Fetch struct {
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
		UserAgent    string        `yaml:"ua" json:"ua"`
		MaxBodyBytes int64         `yaml:"maxBodyBytes" json:"maxBodyBytes"`
		RPS          float64       `yaml:"rps" json:"rps"`
	} `yaml:"fetch" json:"fetch"`

	Extract struct {
		Mode              string `yaml:"mode" json:"mode"`
		MaxChars          int    `yaml:"maxChars" json:"maxChars"`
		MaxParagraphs     int    `yaml:"maxParagraphs" json:"maxParagraphs"`
		MinParagraphChars int    `yaml:"minParagraphChars" json:"minParagraphChars"`
	} `yaml:"extract" json:"extract"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// still hold their defaults. Flags should already have been parsed; this lets
// the file supply values while explicit flags win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()

	if cfg.Addr == def.Addr && fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if cfg.Provider == def.Provider && fc.Search.Provider != "" {
		cfg.Provider = fc.Search.Provider
	}
	if cfg.SearchFile == "" && fc.Search.File != "" {
		cfg.SearchFile = fc.Search.File
	}
	if cfg.Language == "" && fc.Search.Language != "" {
		cfg.Language = fc.Search.Language
	}
	if cfg.MaxResults == def.MaxResults && fc.Search.Max > 0 {
		cfg.MaxResults = fc.Search.Max
	}

	if cfg.SearxURL == "" && fc.Searx.URL != "" {
		cfg.SearxURL = fc.Searx.URL
	}
	if cfg.SearxKey == "" && fc.Searx.Key != "" {
		cfg.SearxKey = fc.Searx.Key
	}
	if cfg.SearxUA == "" && fc.Searx.UA != "" {
		cfg.SearxUA = fc.Searx.UA
	}

	if cfg.FetchTimeout == def.FetchTimeout && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	if cfg.FetchUserAgent == "" && fc.Fetch.UserAgent != "" {
		cfg.FetchUserAgent = fc.Fetch.UserAgent
	}
	if cfg.MaxBodyBytes == def.MaxBodyBytes && fc.Fetch.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = fc.Fetch.MaxBodyBytes
	}
	if cfg.FetchRPS == 0 && fc.Fetch.RPS > 0 {
		cfg.FetchRPS = fc.Fetch.RPS
	}

	if cfg.Extractor == def.Extractor && fc.Extract.Mode != "" {
		cfg.Extractor = fc.Extract.Mode
	}
	if cfg.MaxContentChars == def.MaxContentChars && fc.Extract.MaxChars > 0 {
		cfg.MaxContentChars = fc.Extract.MaxChars
	}
	if cfg.MaxParagraphs == def.MaxParagraphs && fc.Extract.MaxParagraphs > 0 {
		cfg.MaxParagraphs = fc.Extract.MaxParagraphs
	}
	if cfg.MinParagraphChars == def.MinParagraphChars && fc.Extract.MinParagraphChars > 0 {
		cfg.MinParagraphChars = fc.Extract.MinParagraphChars
	}

	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
