// Package config loads the process-wide configuration once at startup:
// optional YAML file, optional .env file, then environment variables, with
// typed defaults for every tunable the pipeline recognizes.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the immutable, process-wide configuration snapshot. It is
// constructed once in the CLI entry point and threaded by reference into
// every component that needs a tunable -- never a package-level global.
type Config struct {
	LLMModel    string
	LLMBaseURL  string
	LLMAPIKey   string
	LLMTimeout  time.Duration
	LLMRetries  int
	LLMTemperature                float64
	ThesisExtractionTemperature   float64
	ConsistencyCheckTemperature   float64
	ContentCorrectionTemperature  float64

	SearchAPIURL    string
	SearchAPIKey    string
	SearchEngineID  string
	SearchEngines   string
	SearchTimeout   time.Duration

	MaxWorkers    int
	PoolKind      string // "goroutine" | "ants" | "workerpool" | "conc"
	NMod          int
	NSearch       int
	NClaimCap     int

	TaskTimeout       time.Duration
	CleanupAfterHours int
	OutputDir         string

	HTTPAddr string
}

// fileLayer is the optional on-disk shape a YAML config file may supply;
// every field is a pointer so an absent key leaves the environment-derived
// default untouched.
type fileLayer struct {
	LLMModel   *string `yaml:"llm_model"`
	LLMTimeoutSec *int `yaml:"llm_timeout_sec"`
	LLMRetries *int    `yaml:"llm_retries"`
	SearchAPIURL *string `yaml:"search_api_url"`
	SearchEngines *string `yaml:"search_engines"`
	MaxWorkers *int `yaml:"max_workers"`
	OutputDir  *string `yaml:"output_dir"`
}

// Load builds a Config from (in increasing priority order) built-in
// defaults, an optional YAML file at yamlPath, an optional ".env" file in
// the working directory, and process environment variables.
func Load(yamlPath string) *Config {
	_ = godotenv.Load() // optional; absence is not an error

	c := &Config{
		LLMModel:                     "gpt-4o-mini",
		LLMBaseURL:                   "https://api.openai.com/v1",
		LLMTimeout:                   60 * time.Second,
		LLMRetries:                   3,
		LLMTemperature:               0.3,
		ThesisExtractionTemperature:  0.2,
		ConsistencyCheckTemperature:  0.3,
		ContentCorrectionTemperature: 0.3,
		SearchAPIURL:                 "",
		SearchEngines:                "google",
		SearchTimeout:                15 * time.Second,
		MaxWorkers:                   10,
		PoolKind:                     "goroutine",
		NMod:                         5,
		NSearch:                      5,
		NClaimCap:                    25,
		TaskTimeout:                  10 * time.Minute,
		CleanupAfterHours:            24,
		OutputDir:                    "./output",
		HTTPAddr:                     ":8080",
	}

	if yamlPath != "" {
		applyYAML(c, yamlPath)
	}
	applyEnv(c)
	return c
}

func applyYAML(c *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var layer fileLayer
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return
	}
	if layer.LLMModel != nil {
		c.LLMModel = *layer.LLMModel
	}
	if layer.LLMTimeoutSec != nil {
		c.LLMTimeout = time.Duration(*layer.LLMTimeoutSec) * time.Second
	}
	if layer.LLMRetries != nil {
		c.LLMRetries = *layer.LLMRetries
	}
	if layer.SearchAPIURL != nil {
		c.SearchAPIURL = *layer.SearchAPIURL
	}
	if layer.SearchEngines != nil {
		c.SearchEngines = *layer.SearchEngines
	}
	if layer.MaxWorkers != nil {
		c.MaxWorkers = *layer.MaxWorkers
	}
	if layer.OutputDir != nil {
		c.OutputDir = *layer.OutputDir
	}
}

func applyEnv(c *Config) {
	str(&c.LLMModel, "LLM_MODEL")
	str(&c.LLMBaseURL, "LLM_BASE_URL")
	str(&c.LLMAPIKey, "LLM_API_KEY")
	duration(&c.LLMTimeout, "LLM_TIMEOUT_SEC")
	integer(&c.LLMRetries, "LLM_RETRIES")
	float(&c.LLMTemperature, "LLM_TEMPERATURE")
	float(&c.ThesisExtractionTemperature, "THESIS_EXTRACTION_TEMPERATURE")
	float(&c.ConsistencyCheckTemperature, "CONSISTENCY_CHECK_TEMPERATURE")
	float(&c.ContentCorrectionTemperature, "CONTENT_CORRECTION_TEMPERATURE")

	str(&c.SearchAPIURL, "SEARCH_API_URL")
	str(&c.SearchAPIKey, "SEARCH_API_KEY")
	str(&c.SearchEngineID, "SEARCH_ENGINE_ID")
	str(&c.SearchEngines, "SEARCH_ENGINES")
	duration(&c.SearchTimeout, "SEARCH_TIMEOUT_SEC")

	integer(&c.MaxWorkers, "MAX_WORKERS")
	str(&c.PoolKind, "POOL_KIND")
	integer(&c.NMod, "N_MOD")
	integer(&c.NSearch, "N_SEARCH")
	integer(&c.NClaimCap, "N_CLAIM_CAP")

	duration(&c.TaskTimeout, "TASK_TIMEOUT_SEC")
	integer(&c.CleanupAfterHours, "CLEANUP_AFTER_HOURS")
	str(&c.OutputDir, "OUTPUT_DIR")

	str(&c.HTTPAddr, "HTTP_ADDR")
}

func str(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func integer(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func float(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func duration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Second
		}
	}
}
