// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the RESULTGRAB_ prefix) to the CLI
// flag name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// String overrides
	{"URL", []string{"url"}, func(c *AppConfig, v string) { c.URL = v }},
	{"INPUT_ID", []string{"input-id"}, func(c *AppConfig, v string) { c.InputID = v }},
	{"TERM_ID", []string{"term-id"}, func(c *AppConfig, v string) { c.TermID = v }},
	{"SUBMIT_NAME", []string{"submit-name"}, func(c *AppConfig, v string) { c.SubmitName = v }},
	{"RESULT_ID", []string{"result-id"}, func(c *AppConfig, v string) { c.ResultID = v }},
	{"TERM", []string{"term"}, func(c *AppConfig, v string) { c.Term = v }},
	{"OUT", []string{"out"}, func(c *AppConfig, v string) { c.OutDir = v }},
	{"DRIVE_FOLDER", []string{"drive-folder"}, func(c *AppConfig, v string) { c.DriveFolder = v }},
	{"CREDENTIALS", []string{"credentials"}, func(c *AppConfig, v string) { c.CredentialsFile = v }},
	{"METRICS_ADDR", []string{"metrics-addr"}, func(c *AppConfig, v string) { c.MetricsAddr = v }},

	// Numeric overrides
	{"WORKERS", []string{"workers"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Workers = parsed
		}
	}},
	{"MAX_ATTEMPTS", []string{"max-attempts"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = parsed
		}
	}},
	{"TOP", []string{"top"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.TopN = parsed
		}
	}},

	// Duration overrides
	{"RETRY_DELAY", []string{"retry-delay"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.RetryDelay = parsed
		}
	}},
	{"WAIT_TIMEOUT", []string{"wait-timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.WaitTimeout = parsed
		}
	}},

	// Boolean overrides
	{"RETRY_NOT_FOUND", []string{"retry-not-found"}, func(c *AppConfig, v string) {
		c.RetryNotFound = parseBoolEnv(v, c.RetryNotFound)
	}},
	{"PDF", []string{"pdf"}, func(c *AppConfig, v string) {
		c.GeneratePDF = parseBoolEnv(v, c.GeneratePDF)
	}},
	{"XLSX", []string{"xlsx"}, func(c *AppConfig, v string) {
		c.GenerateXLSX = parseBoolEnv(v, c.GenerateXLSX)
	}},
	{"ZIP", []string{"zip"}, func(c *AppConfig, v string) {
		c.MakeZip = parseBoolEnv(v, c.MakeZip)
	}},
	{"TUI", []string{"tui"}, func(c *AppConfig, v string) {
		c.TUI = parseBoolEnv(v, c.TUI)
	}},
	{"QUIET", []string{"quiet"}, func(c *AppConfig, v string) {
		c.Quiet = parseBoolEnv(v, c.Quiet)
	}},
	{"VERBOSE", []string{"v"}, func(c *AppConfig, v string) {
		c.Verbose = parseBoolEnv(v, c.Verbose)
	}},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
