// Package config loads and validates runtime configuration for counterpage.
//
// Values come from defaults, an optional counterpage.yaml (in the working
// directory or config/), environment variables and finally command-line flags.
package config
