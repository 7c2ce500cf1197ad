// Package config holds the tuning knobs of the budgeting engine.
//
// Every constant the engine uses (safety margin, overhead estimates,
// fallback floors, markers, the content-type preservation order) is a
// Config field with a documented default. Configs load from TOML
// (default) or YAML, merge over defaults, and validate:
//
//	cfg, err := config.Load("contextfit.toml")
//
// Watch re-loads the file on change and delivers validated snapshots,
// using fsnotify with a polling fallback:
//
//	updates, err := config.Watch(ctx, "contextfit.toml")
//
// Schema reflects a JSON schema of Config for editor validation.
package config
