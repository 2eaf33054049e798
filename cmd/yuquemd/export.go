package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"regexp"

	"github.com/pevans/yuquemd"
	"github.com/pevans/yuquemd/config"
	"github.com/pevans/yuquemd/lake"
	"github.com/pevans/yuquemd/yuque"
)

// exportFlags are shared by the export and feed commands.
type exportFlags struct {
	path     *string
	cookies  *string
	proxies  *string
	encoding *string
	preview  *bool
	workers  *int
	noHist   *bool
}

func addExportFlags(fs *flag.FlagSet, cfg *config.Config) *exportFlags {
	return &exportFlags{
		path:     fs.String("path", cfg.OutputDir, "Output file or directory"),
		cookies:  fs.String("cookies", cfg.Cookies, "Cookie header for private documents"),
		proxies:  fs.String("proxies", "", "Proxies, e.g. http=proxy1,https=proxy2"),
		encoding: fs.String("encoding", cfg.Encoding, "Output encoding"),
		preview:  fs.Bool("preview", cfg.Preview, "Also write an HTML preview"),
		workers:  fs.Int("workers", cfg.Workers, "Conversion workers"),
		noHist:   fs.Bool("no-history", false, "Do not record the export"),
	}
}

// apply copies flag values into cfg. Flags override the file and
// environment.
func (f *exportFlags) apply(cfg *config.Config) error {
	cfg.OutputDir = *f.path
	cfg.Cookies = *f.cookies
	cfg.Encoding = *f.encoding
	cfg.Preview = *f.preview
	cfg.Workers = *f.workers

	if *f.proxies != "" {
		proxies, err := config.ParseProxies(*f.proxies)
		if err != nil {
			return err
		}
		cfg.Proxies = proxies
	}

	if _, err := yuquemd.EncoderFor(cfg.Encoding); err != nil {
		return err
	}
	return nil
}

// newExporter builds an exporter from the effective configuration. The
// returned close function releases the history store.
func newExporter(cfg *config.Config, withHistory bool) (*yuquemd.Exporter, func(), error) {
	client, err := yuque.NewClient(yuque.Options{
		Cookies:   cfg.Cookies,
		UserAgent: cfg.UserAgent,
		Proxies:   cfg.Proxies,
	})
	if err != nil {
		return nil, nil, err
	}

	exporter := yuquemd.NewExporter(client)
	exporter.Converter = lake.NewConverter(cfg.Workers)
	exporter.Encoding = cfg.Encoding
	exporter.Preview = cfg.Preview

	closeFn := func() {}
	if withHistory {
		history, err := yuquemd.NewHistoryStore(cfg.HistoryDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open history store: %w", err)
		}
		exporter.History = history
		closeFn = func() { history.Close() }
	}

	return exporter, closeFn, nil
}

func handleExport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	flags := addExportFlags(fs, cfg)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: yuquemd export [flags] <url>")
		fs.PrintDefaults()
	}
	fs.Parse(reorderArgs(fs, args))

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: document URL is required\n")
		fs.Usage()
		os.Exit(1)
	}
	docURL := fs.Arg(0)

	if err := yuque.ValidateDocURL(docURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := flags.apply(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	exporter, closeFn, err := newExporter(cfg, !*flags.noHist)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := exporter.Export(ctx, docURL, cfg.OutputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: export failed: %v\n", err)
		closeFn()
		os.Exit(1)
	}
}

func handleFeed(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	flags := addExportFlags(fs, cfg)
	match := fs.String("match", "", "Regular expression selecting feed links (default: document URLs)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: yuquemd feed [flags] <feed-url>")
		fs.PrintDefaults()
	}
	fs.Parse(reorderArgs(fs, args))

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: feed URL is required\n")
		fs.Usage()
		os.Exit(1)
	}
	feedURL := fs.Arg(0)

	var pattern *regexp.Regexp
	if *match != "" {
		var err error
		pattern, err = regexp.Compile(*match)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --match: %v\n", err)
			os.Exit(1)
		}
	}
	if err := flags.apply(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	exporter, closeFn, err := newExporter(cfg, !*flags.noHist)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := exporter.ExportFeed(ctx, feedURL, cfg.OutputDir, pattern)
	if err != nil && result == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeFn()
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Feed: %s\n", result.Feed.Title)
	fmt.Printf("✓ Exported %d document(s)\n", len(result.Exported))
	for _, itemErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", &itemErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeFn()
		os.Exit(1)
	}
	if len(result.Errors) > 0 {
		closeFn()
		os.Exit(1)
	}
}
