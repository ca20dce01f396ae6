package config

import (
	"encoding/json"
	"os"
	"time"
)

type Config struct {
	//===============
	//  Crawl
	//===============
	// Initial page seeded into the frontier. Empty when joining an
	// existing crawl as a slave process.
	startURL string
	// Maximum number of crawl workers running a fetch cycle at once.
	maxConcurrent int
	// User agent used in every request header. In raw string
	userAgent string

	//===============
	// Frontier
	//===============
	// Shared-set store address. Empty host selects the in-process
	// frontier.
	frontierHost string
	frontierPort int
	// Names of the two sets backing the frontier.
	toVisitSet string
	visitedSet string

	//===============
	// Rate limiting
	//===============
	// Requests admitted per rate window across the whole process.
	rateLimit int
	// "second" or "minute"
	rateWindow string

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// maximum attempt during transport retry
	maxAttempt int
	// Randomized variation added on top of backoff delays
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Output
	//===============
	// Root directory in which to store processed page artifacts
	outputDir string
}

type configDTO struct {
	Scraper  scraperDTO  `json:"scraper"`
	Frontier frontierDTO `json:"frontier"`
	Fetch    fetchDTO    `json:"fetch,omitempty"`
	Rate     rateDTO     `json:"rate,omitempty"`
	Output   outputDTO   `json:"output,omitempty"`
}

type scraperDTO struct {
	StartURL      string `json:"start_url,omitempty"`
	MaxConcurrent int    `json:"max_concurrent,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
}

type frontierDTO struct {
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`
	ToVisitSet string `json:"to_visit_set,omitempty"`
	VisitedSet string `json:"visited_set,omitempty"`
}

type fetchDTO struct {
	TimeoutMs        int64   `json:"timeout_ms,omitempty"`
	MaxAttempt       int     `json:"max_attempt,omitempty"`
	JitterMs         int64   `json:"jitter_ms,omitempty"`
	RandomSeed       int64   `json:"random_seed,omitempty"`
	BackoffInitialMs int64   `json:"backoff_initial_ms,omitempty"`
	BackoffMult      float64 `json:"backoff_multiplier,omitempty"`
	BackoffMaxMs     int64   `json:"backoff_max_ms,omitempty"`
}

type rateDTO struct {
	Limit  int    `json:"limit,omitempty"`
	Window string `json:"window,omitempty"`
}

type outputDTO struct {
	Dir string `json:"dir,omitempty"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		maxConcurrent:          10,
		userAgent:              "Web Scrapper",
		frontierPort:           6379,
		toVisitSet:             "to_visit",
		visitedSet:             "visited",
		rateLimit:              60,
		rateWindow:             "minute",
		timeout:                10 * time.Second,
		maxAttempt:             3,
		jitter:                 250 * time.Millisecond,
		randomSeed:             time.Now().UnixNano(),
		backoffInitialDuration: 1 * time.Second,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     30 * time.Second,
		outputDir:              "output",
	}
}

// WithConfigFile loads a JSON config file on top of the defaults.
func WithConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, ErrFileDoesNotExist
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, ErrReadConfigFail
	}
	var dto configDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return Config{}, ErrConfigParsingFail
	}

	cfg := Default()
	if dto.Scraper.StartURL != "" {
		cfg.startURL = dto.Scraper.StartURL
	}
	if dto.Scraper.MaxConcurrent > 0 {
		cfg.maxConcurrent = dto.Scraper.MaxConcurrent
	}
	if dto.Scraper.UserAgent != "" {
		cfg.userAgent = dto.Scraper.UserAgent
	}
	if dto.Frontier.Host != "" {
		cfg.frontierHost = dto.Frontier.Host
	}
	if dto.Frontier.Port > 0 {
		cfg.frontierPort = dto.Frontier.Port
	}
	if dto.Frontier.ToVisitSet != "" {
		cfg.toVisitSet = dto.Frontier.ToVisitSet
	}
	if dto.Frontier.VisitedSet != "" {
		cfg.visitedSet = dto.Frontier.VisitedSet
	}
	if dto.Rate.Limit > 0 {
		cfg.rateLimit = dto.Rate.Limit
	}
	if dto.Rate.Window != "" {
		cfg.rateWindow = dto.Rate.Window
	}
	if dto.Fetch.TimeoutMs > 0 {
		cfg.timeout = time.Duration(dto.Fetch.TimeoutMs) * time.Millisecond
	}
	if dto.Fetch.MaxAttempt > 0 {
		cfg.maxAttempt = dto.Fetch.MaxAttempt
	}
	if dto.Fetch.JitterMs > 0 {
		cfg.jitter = time.Duration(dto.Fetch.JitterMs) * time.Millisecond
	}
	if dto.Fetch.RandomSeed != 0 {
		cfg.randomSeed = dto.Fetch.RandomSeed
	}
	if dto.Fetch.BackoffInitialMs > 0 {
		cfg.backoffInitialDuration = time.Duration(dto.Fetch.BackoffInitialMs) * time.Millisecond
	}
	if dto.Fetch.BackoffMult > 0 {
		cfg.backoffMultiplier = dto.Fetch.BackoffMult
	}
	if dto.Fetch.BackoffMaxMs > 0 {
		cfg.backoffMaxDuration = time.Duration(dto.Fetch.BackoffMaxMs) * time.Millisecond
	}
	if dto.Output.Dir != "" {
		cfg.outputDir = dto.Output.Dir
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.maxConcurrent < 1 {
		return ErrInvalidConfig
	}
	if c.rateLimit < 1 {
		return ErrInvalidConfig
	}
	if c.rateWindow != "second" && c.rateWindow != "minute" {
		return ErrInvalidConfig
	}
	return nil
}

func (c *Config) StartURL() string             { return c.startURL }
func (c *Config) MaxConcurrent() int           { return c.maxConcurrent }
func (c *Config) UserAgent() string            { return c.userAgent }
func (c *Config) FrontierHost() string         { return c.frontierHost }
func (c *Config) FrontierPort() int            { return c.frontierPort }
func (c *Config) ToVisitSet() string           { return c.toVisitSet }
func (c *Config) VisitedSet() string           { return c.visitedSet }
func (c *Config) RateLimit() int               { return c.rateLimit }
func (c *Config) RateWindow() string           { return c.rateWindow }
func (c *Config) Timeout() time.Duration       { return c.timeout }
func (c *Config) MaxAttempt() int              { return c.maxAttempt }
func (c *Config) Jitter() time.Duration        { return c.jitter }
func (c *Config) RandomSeed() int64            { return c.randomSeed }
func (c *Config) BackoffInitialDuration() time.Duration { return c.backoffInitialDuration }
func (c *Config) BackoffMultiplier() float64   { return c.backoffMultiplier }
func (c *Config) BackoffMaxDuration() time.Duration     { return c.backoffMaxDuration }
func (c *Config) OutputDir() string            { return c.outputDir }

// SetStartURL clears or overrides the seed; used by the CLI for
// --start-url and --slave.
func (c *Config) SetStartURL(u string) { c.startURL = u }

// SetMaxConcurrent overrides the pool size; used by the CLI for
// --concurrent.
func (c *Config) SetMaxConcurrent(n int) { c.maxConcurrent = n }

// SetOutputDir overrides the artifact directory; used by the CLI for
// --output-dir.
func (c *Config) SetOutputDir(dir string) { c.outputDir = dir }
