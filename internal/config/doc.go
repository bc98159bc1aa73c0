// Package config loads application configuration from environment variables
// (FUNDING_* prefix) layered over an optional YAML file. Defaults live in
// struct tags; validation runs after load so a bad dataset path or log level
// fails at startup rather than on first request.
package config
