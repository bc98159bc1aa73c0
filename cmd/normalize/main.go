// Command normalize runs the funding-record normalizer as a one-shot batch:
// it reads the raw source table, applies the cleaning rules and writes the
// validated record set to a clean CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"fundingpulse/internal/dataset"
	"fundingpulse/internal/exporter"
)

func main() {
	var (
		source    = flag.String("source", "startup_funding.csv", "raw source table (CSV or XLSX)")
		out       = flag.String("out", "funding_records.csv", "output path for the cleaned CSV")
		planFile  = flag.String("plan", "", "YAML column plan; empty uses the built-in default")
		encoding  = flag.String("encoding", dataset.EncodingLatin1, "source encoding for CSV input")
		skipLines = flag.Int("skip-lines", 4, "metadata lines before the header row")
		verbose   = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*source, *out, *planFile, *encoding, *skipLines, logger); err != nil {
		logger.Error("normalization failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(source, out, planFile, encoding string, skipLines int, logger *slog.Logger) error {
	plan := dataset.DefaultPlan()
	if planFile != "" {
		var err error
		if plan, err = dataset.LoadPlan(planFile); err != nil {
			return err
		}
	}

	table, err := dataset.ReadTable(source, dataset.ReadOptions{
		Encoding:  encoding,
		SkipLines: skipLines,
	})
	if err != nil {
		return err
	}

	normalizer := dataset.NewNormalizer(plan, logger)
	records, err := normalizer.Normalize(context.Background(), table)
	if err != nil {
		return err
	}

	if err := exporter.WriteFile(out, records, exporter.WriteOptions{BOMPrefix: true}); err != nil {
		return err
	}

	fmt.Printf("normalized %d of %d rows -> %s\n", len(records), len(table.Rows), out)
	return nil
}
