package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Selectors are the CSS selectors used to pull listing fields out of a
// board's search results page.
type Selectors struct {
	JobContainer string `json:"jobContainer"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	Salary       string `json:"salary,omitempty"`
	Description  string `json:"description,omitempty"`
	Link         string `json:"link"`
}

// SourceConfig describes one job board. Kind selects the adapter
// implementation: "html" (selector scraping), "api" (JSON API) or "rss".
type SourceConfig struct {
	Name         string            `json:"name"`
	Enabled      bool              `json:"enabled"`
	Kind         string            `json:"kind"`
	BaseURL      string            `json:"baseUrl"`
	SearchPath   string            `json:"searchPath,omitempty"`
	SearchParams map[string]string `json:"searchParams,omitempty"`
	Selectors    *Selectors        `json:"selectors,omitempty"`
	FeedURL      string            `json:"feedUrl,omitempty"`
	RenderJS     bool              `json:"renderJS,omitempty"`
	MaxResults   int               `json:"maxResults,omitempty"`
}

// GlobalSettings hold pipeline-wide knobs.
type GlobalSettings struct {
	UserAgent         string `json:"userAgent"`
	TimeoutMs         int    `json:"timeout"`
	ResultCap         int    `json:"resultCap"`
	CacheTTLSeconds   int    `json:"cacheTtl"`
	RequestsPerSecond int    `json:"requestsPerSecond"`
	HTTPPort          int    `json:"httpPort"`
}

type Config struct {
	Sources        []SourceConfig `json:"sources"`
	GlobalSettings GlobalSettings `json:"globalSettings"`
}

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 CareerIntel/1.0"
	defaultTimeoutMs = 15000
	defaultResultCap = 50
	defaultCacheTTL  = 300
	defaultRPS       = 5
	defaultHTTPPort  = 8080
)

// Load reads a config file and applies defaults for anything left unset.
func Load(path string) (Config, error) {
	var cfg Config

	file, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, cfg.validate()
}

// Default returns the built-in configuration used when no config file is
// supplied: LinkedIn and Indeed HTML boards, the Remote OK API and the
// We Work Remotely feed.
func Default() Config {
	cfg := Config{
		Sources: []SourceConfig{
			{
				Name:       "linkedin",
				Enabled:    true,
				Kind:       "html",
				BaseURL:    "https://www.linkedin.com",
				SearchPath: "/jobs/search/",
				SearchParams: map[string]string{
					"keywords": "{query}",
					"location": "{location}",
				},
				Selectors: &Selectors{
					JobContainer: "div.base-card",
					Title:        "h3.base-search-card__title",
					Company:      "h4.base-search-card__subtitle",
					Location:     "span.job-search-card__location",
					Link:         "a.base-card__full-link",
				},
			},
			{
				Name:       "indeed",
				Enabled:    true,
				Kind:       "html",
				BaseURL:    "https://www.indeed.com",
				SearchPath: "/jobs",
				SearchParams: map[string]string{
					"q": "{query}",
					"l": "{location}",
				},
				Selectors: &Selectors{
					JobContainer: "div.job_seen_beacon",
					Title:        "h2.jobTitle",
					Company:      "span.companyName",
					Location:     "div.companyLocation",
					Salary:       "div.salary-snippet",
					Link:         "h2.jobTitle a",
				},
			},
			{
				Name:    "remoteok",
				Enabled: true,
				Kind:    "api",
				BaseURL: "https://remoteok.com",
			},
			{
				Name:    "weworkremotely",
				Enabled: true,
				Kind:    "rss",
				FeedURL: "https://weworkremotely.com/remote-jobs.rss",
			},
			{
				// Needs REED_API_KEY; off by default.
				Name:    "reed",
				Enabled: false,
				Kind:    "reed",
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	gs := &c.GlobalSettings
	if gs.UserAgent == "" {
		gs.UserAgent = defaultUserAgent
	}
	if gs.TimeoutMs <= 0 {
		gs.TimeoutMs = defaultTimeoutMs
	}
	if gs.ResultCap <= 0 {
		gs.ResultCap = defaultResultCap
	}
	if gs.CacheTTLSeconds <= 0 {
		gs.CacheTTLSeconds = defaultCacheTTL
	}
	if gs.RequestsPerSecond <= 0 {
		gs.RequestsPerSecond = defaultRPS
	}
	if gs.HTTPPort <= 0 {
		gs.HTTPPort = defaultHTTPPort
	}
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("source with empty name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source name %q", s.Name)
		}
		seen[s.Name] = true

		switch s.Kind {
		case "html":
			if s.Selectors == nil || s.Selectors.JobContainer == "" {
				return fmt.Errorf("source %q: html sources need selectors", s.Name)
			}
		case "api":
			if s.BaseURL == "" {
				return fmt.Errorf("source %q: api sources need a baseUrl", s.Name)
			}
		case "rss":
			if s.FeedURL == "" {
				return fmt.Errorf("source %q: rss sources need a feedUrl", s.Name)
			}
		case "reed":
			// Base URL has a built-in default; the API key is read from the
			// environment at adapter construction.
		default:
			return fmt.Errorf("source %q: unknown kind %q", s.Name, s.Kind)
		}
	}
	return nil
}
