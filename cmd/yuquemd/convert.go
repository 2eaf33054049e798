package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pevans/yuquemd"
	"github.com/pevans/yuquemd/config"
	"github.com/pevans/yuquemd/lake"
)

func handleConvert(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	output := fs.String("o", "", "Output file (default: stdout)")
	encoding := fs.String("encoding", cfg.Encoding, "Output encoding")
	preview := fs.Bool("preview", false, "Write an HTML preview next to the output")
	workers := fs.Int("workers", cfg.Workers, "Conversion workers")
	blocks := fs.Bool("blocks", false, "Print classified segments as JSON instead of Markdown")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: yuquemd convert [flags] <file.html>")
		fs.PrintDefaults()
	}
	fs.Parse(reorderArgs(fs, args))

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: input file is required\n")
		fs.Usage()
		os.Exit(1)
	}

	in, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open input: %v\n", err)
		os.Exit(1)
	}
	defer in.Close()

	result, err := lake.NewConverter(*workers).ConvertReader(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, cardErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "Warning: skipped card: %v\n", &cardErr)
	}

	if *blocks {
		printBlocksJSON(result.Blocks)
		return
	}

	markdown := result.String()
	data, err := yuquemd.EncodeString(*encoding, markdown)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *output == "" {
		os.Stdout.Write(data)
		return
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("> Saved: %s\n", *output)

	if *preview {
		previewPath := strings.TrimSuffix(*output, ".md") + ".html"
		page, err := yuquemd.RenderPreviewPage(fs.Arg(0), markdown)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to render preview: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(previewPath, page, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write preview: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("> Preview: %s\n", previewPath)
	}
}
