// Package config defines Meridian's configuration structures and loading.
//
// Configuration is read from a YAML file, filled in with defaults,
// optionally overridden from MERIDIAN_* environment variables, and
// validated as a whole. Validation collects every field error instead
// of stopping at the first one, so a misconfigured deployment surfaces
// all its problems in one pass.
//
//	cfg, err := config.LoadConfigWithEnvOverrides("meridian.yaml")
//	if err != nil { ... }
package config
