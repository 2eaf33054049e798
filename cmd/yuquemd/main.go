package main

import (
	"fmt"
	"os"

	"github.com/pevans/yuquemd/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Get subcommand
	subcommand := os.Args[1]
	args := os.Args[2:]

	switch subcommand {
	case "export":
		handleExport(cfg, args)
	case "feed":
		handleFeed(cfg, args)
	case "convert":
		handleConvert(cfg, args)
	case "history":
		handleHistory(cfg, args)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("yuquemd - Export yuque documents as Markdown")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  yuquemd <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  export     Export a document by URL")
	fmt.Println("  feed       Export every document linked from an RSS or Atom feed")
	fmt.Println("  convert    Convert a saved lake HTML file")
	fmt.Println("  history    Show past exports")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  YUQUEMD_COOKIES      Cookie header sent with every request")
	fmt.Println("  YUQUEMD_PROXIES      Proxies, e.g. http=proxy1,https=proxy2")
	fmt.Println("  YUQUEMD_ENCODING     Output encoding (default: utf-8)")
	fmt.Println("  YUQUEMD_HISTORY_DSN  Path to export history database (default: yuquemd.db)")
	fmt.Println("  YUQUEMD_WORKERS      Conversion workers (default: sequential)")
	if path, err := config.DefaultPath(); err == nil {
		fmt.Println()
		fmt.Printf("Configuration file: %s\n", path)
	}
}
