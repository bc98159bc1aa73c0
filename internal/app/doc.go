// Package app wires configuration, logging, the dataset cache, services and
// the HTTP router into a runnable application with graceful shutdown.
package app
