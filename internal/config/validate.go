package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the settings a pipeline run depends on and reports every
// problem at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Driver {
	case "memory":
	case "sqlite", "postgres", "redis":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, fmt.Sprintf("store.database_url is required for driver %q", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not one of memory, sqlite, postgres, redis", c.Store.Driver))
	}

	for name, n := range map[string]int{
		"name_concurrency":     c.Pipeline.NameConcurrency,
		"entry_concurrency":    c.Pipeline.EntryConcurrency,
		"sequence_concurrency": c.Pipeline.SequenceConcurrency,
		"reaction_concurrency": c.Pipeline.ReactionConcurrency,
	} {
		if n < 1 || n > 64 {
			errs = append(errs, fmt.Sprintf("pipeline.%s must be between 1 and 64", name))
		}
	}
	if c.Pipeline.MaxHops < 1 || c.Pipeline.MaxHops > 50 {
		errs = append(errs, "pipeline.max_hops must be between 1 and 50")
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, "retry.max_attempts must be >= 1")
	}
	if c.Retry.DelayMs < 0 {
		errs = append(errs, "retry.delay_ms must be >= 0")
	}

	switch c.Export.Format {
	case "xlsx", "csv":
	default:
		errs = append(errs, fmt.Sprintf("export.format %q is not one of xlsx, csv", c.Export.Format))
	}

	for key, url := range map[string]string{
		"enzyme_base_url":  c.Sources.EnzymeBaseURL,
		"uniprot_base_url": c.Sources.UniProtBaseURL,
		"rhea_base_url":    c.Sources.RheaBaseURL,
	} {
		if url == "" {
			errs = append(errs, fmt.Sprintf("sources.%s is required", key))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
