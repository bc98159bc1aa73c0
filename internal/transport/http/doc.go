// Package http contains the chi HTTP handlers for the funding analytics
// API: record listing, KPI summaries, the chart aggregates, filter metadata,
// CSV export and health probes.
package http
