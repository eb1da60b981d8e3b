package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CredentialEntryDiscover = "discover"
	CredentialEntryTrack    = "track"

	ChannelLayoutStereo   = "stereo"
	ChannelLayoutPreserve = "preserve"
)

type Config struct {
	UserAgent           string        `json:"user_agent"            yaml:"user_agent"`
	Origin              string        `json:"origin"                yaml:"origin"`
	DiscoverURL         string        `json:"discover_url"          yaml:"discover_url"`
	APIBaseURL          string        `json:"api_base_url"          yaml:"api_base_url"`
	CredentialEntry     string        `json:"credential_entry"      yaml:"credential_entry"`
	MaxScriptCandidates int           `json:"max_script_candidates" yaml:"max_script_candidates"`
	SearchLimit         int           `json:"search_limit"          yaml:"search_limit"`
	ChannelLayout       string        `json:"channel_layout"        yaml:"channel_layout"`
	DownloadDir         string        `json:"download_dir"          yaml:"download_dir"`
	DescriptorCacheTTL  time.Duration `json:"descriptor_cache_ttl"  yaml:"descriptor_cache_ttl"`
}

func Default() Config {
	return Config{
		UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		Origin:              "https://soundcloud.com",
		DiscoverURL:         "https://soundcloud.com/discover",
		APIBaseURL:          "https://api-v2.soundcloud.com",
		CredentialEntry:     CredentialEntryDiscover,
		MaxScriptCandidates: 5,
		SearchLimit:         10,
		ChannelLayout:       ChannelLayoutStereo,
		DownloadDir:         ".",
		DescriptorCacheTTL:  0,
	}
}

func validateURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is empty", name)
	}
	u, err := url.Parse(value)
	if nil != err {
		return fmt.Errorf("%s is not a valid URL: %v", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL", name)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", name)
	}
	return nil
}

func (cfg *Config) validate() error {
	if cfg.UserAgent == "" {
		return errors.New("user agent is empty")
	}

	if err := validateURL("origin", cfg.Origin); nil != err {
		return err
	}

	if err := validateURL("discover url", cfg.DiscoverURL); nil != err {
		return err
	}

	if err := validateURL("api base url", cfg.APIBaseURL); nil != err {
		return err
	}

	switch cfg.CredentialEntry {
	case CredentialEntryDiscover, CredentialEntryTrack:
	default:
		return fmt.Errorf("unsupported credential entry %q", cfg.CredentialEntry)
	}

	if cfg.MaxScriptCandidates < 1 {
		return errors.New("max script candidates must be positive")
	}

	if cfg.SearchLimit < 1 {
		return errors.New("search limit must be positive")
	}

	switch cfg.ChannelLayout {
	case ChannelLayoutStereo, ChannelLayoutPreserve:
	default:
		return fmt.Errorf("unsupported channel layout %q", cfg.ChannelLayout)
	}

	if cfg.DownloadDir == "" {
		return errors.New("download dir is empty")
	}

	if cfg.DescriptorCacheTTL < 0 {
		return errors.New("descriptor cache ttl is negative")
	}

	return nil
}

func FromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %q: %v", filePath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config file %q: %v", filePath, err)
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}

func FromString(data string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(data), &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}
