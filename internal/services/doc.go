// Package services contains the business layer between the dataset cache
// and the HTTP transport: filtered views, aggregates and health probes.
package services
