// Package config provides loading and environment overlay for block-feeder
// configuration. It exposes a Default() baseline whose values are the fixed
// constants of the tool (stream "blocks", local Redis endpoint), a JSON
// loader and a BLOCKFEEDER_* environment overlay. Command-line flags are
// applied last by the CLI.
//
// Example:
//
//	cfg, err := config.Load("/etc/block-feeder.json")
//	if err != nil { /* handle */ }
//	if err := config.FromEnv(&cfg); err != nil { /* handle */ }
//	if err := cfg.Validate(); err != nil { /* handle */ }
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
package config
