package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/yuquemd"
	"github.com/pevans/yuquemd/config"
)

func handleHistory(cfg *config.Config, args []string) {
	if len(args) > 0 && args[0] == "delete" {
		handleHistoryDelete(cfg, args[1:])
		return
	}

	opts, _ := parseHistoryArgs(args, flag.ExitOnError)

	var cutoff time.Time
	if opts.since != "" {
		d, err := parseDuration(opts.since)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cutoff = time.Now().Add(-d)
	}

	history, err := yuquemd.NewHistoryStore(cfg.HistoryDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open history store: %v\n", err)
		os.Exit(1)
	}
	defer history.Close()

	records, err := history.List(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list exports: %v\n", err)
		history.Close()
		os.Exit(1)
	}

	records = filterRecords(records, opts.slug, cutoff, opts.limit)

	switch opts.format {
	case "json":
		printHistoryJSON(records)
	case "compact":
		printHistoryCompact(records)
	case "table":
		printHistoryTable(records)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format: %s\n", opts.format)
		history.Close()
		os.Exit(1)
	}
}

// historyOptions holds the flags of the history command.
type historyOptions struct {
	limit  int
	since  string
	slug   string
	format string
}

// parseHistoryArgs parses history flags, which may come in any position.
func parseHistoryArgs(args []string, handling flag.ErrorHandling) (*historyOptions, error) {
	opts := &historyOptions{}
	fs := flag.NewFlagSet("history", handling)
	fs.IntVar(&opts.limit, "limit", 20, "Maximum number of exports to show (0 for all)")
	fs.StringVar(&opts.since, "since", "", "Only show exports newer than this (e.g. 24h, 7d, 2w)")
	fs.StringVar(&opts.slug, "slug", "", "Only show exports of this document slug")
	fs.StringVar(&opts.format, "format", "table", "Output format: table, json or compact")
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		return nil, err
	}
	return opts, nil
}

// filterRecords applies the slug and age filters, then the limit. Records
// are expected newest first.
func filterRecords(records []yuquemd.ExportRecord, slug string, cutoff time.Time, limit int) []yuquemd.ExportRecord {
	filtered := make([]yuquemd.ExportRecord, 0, len(records))
	for _, rec := range records {
		if slug != "" && rec.Slug != slug {
			continue
		}
		if !cutoff.IsZero() && rec.ExportedAt.Before(cutoff) {
			continue
		}
		filtered = append(filtered, rec)
		if limit > 0 && len(filtered) == limit {
			break
		}
	}
	return filtered
}

func handleHistoryDelete(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: export ID is required\n")
		fmt.Fprintf(os.Stderr, "Usage: yuquemd history delete <export-id>\n")
		os.Exit(1)
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid export ID: %v\n", err)
		os.Exit(1)
	}

	history, err := yuquemd.NewHistoryStore(cfg.HistoryDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open history store: %v\n", err)
		os.Exit(1)
	}
	defer history.Close()

	if err := history.Delete(id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to delete export: %v\n", err)
		history.Close()
		os.Exit(1)
	}

	fmt.Printf("✓ Deleted export: %s\n", id)
}
