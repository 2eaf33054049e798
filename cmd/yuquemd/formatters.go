package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pevans/yuquemd"
	"github.com/pevans/yuquemd/lake"
)

// printHistoryTable prints exports in human-readable table format
func printHistoryTable(records []yuquemd.ExportRecord) {
	if len(records) == 0 {
		fmt.Println("No exports recorded.")
		return
	}

	fmt.Printf("%-36s %-16s %-30s %-8s %s\n", "ID", "EXPORTED", "TITLE", "CARDS", "PATH")
	fmt.Println("----------------------------------------------------------------------------------------------------")

	for _, rec := range records {
		cards := "ok"
		if rec.CardErrors > 0 {
			cards = fmt.Sprintf("%d lost", rec.CardErrors)
		}

		fmt.Printf("%-36s %-16s %-30s %-8s %s\n",
			rec.ExportID.String(),
			rec.ExportedAt.Local().Format("2006-01-02 15:04"),
			truncate(rec.Title, 30),
			cards,
			truncate(rec.Path, 50),
		)
	}
}

// printHistoryJSON prints exports in JSON format
func printHistoryJSON(records []yuquemd.ExportRecord) {
	output := map[string]any{
		"exports": records,
		"total":   len(records),
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}

// printHistoryCompact prints exports in compact format
func printHistoryCompact(records []yuquemd.ExportRecord) {
	if len(records) == 0 {
		fmt.Println("No exports recorded.")
		return
	}

	for _, rec := range records {
		// Truncate ID to first 8 characters
		shortID := rec.ExportID.String()[:8] + "..."
		fmt.Printf("%s %s (%s)\n", shortID, rec.Title, rec.Slug)
	}
}

// printBlocksJSON prints the classified segments of every block
func printBlocksJSON(blocks []*lake.Block) {
	output := make([][]lake.Segment, 0, len(blocks))
	for _, b := range blocks {
		output = append(output, b.Segments())
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}
