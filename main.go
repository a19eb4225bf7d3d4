package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/insightdelivered/cc-statement-parser/internal/api"
	"github.com/insightdelivered/cc-statement-parser/internal/category"
	"github.com/insightdelivered/cc-statement-parser/internal/collate"
	"github.com/insightdelivered/cc-statement-parser/internal/config"
	"github.com/insightdelivered/cc-statement-parser/internal/extractor"
	"github.com/insightdelivered/cc-statement-parser/internal/loader"
	"github.com/insightdelivered/cc-statement-parser/internal/logger"
	"github.com/insightdelivered/cc-statement-parser/internal/parser"
	"github.com/insightdelivered/cc-statement-parser/internal/pipeline"
	"github.com/insightdelivered/cc-statement-parser/internal/writer"
)

const version = "1.0.0"

type options struct {
	file       string
	dir        string
	name       string
	password   string
	header     bool
	sortFormat string
	summary    bool
	categories string
	output     string
	workers    int
	serve      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "Statement PDF to parse")
	flag.StringVar(&opts.dir, "dir", "", "Directory of statement PDFs to parse")
	flag.StringVar(&opts.name, "name", "", "Keep only rows of this cardholder")
	flag.StringVar(&opts.password, "password", "", "PDF password (defaults to STATEMENT_PASSWORD)")
	flag.BoolVar(&opts.header, "header", false, "Write a header row in the CSV")
	flag.StringVar(&opts.sortFormat, "sortformat", "", "strftime format of the date in file names, e.g. %d-%m-%Y")
	flag.BoolVar(&opts.summary, "summary", false, "Print a spending summary instead of CSV")
	flag.StringVar(&opts.categories, "categories", "", "Category JSON file for the summary breakdown (requires --summary)")
	flag.StringVar(&opts.output, "output", "", "Output CSV file (defaults to stdout)")
	flag.IntVar(&opts.workers, "workers", 0, "Statements parsed in parallel (defaults to PARSER_WORKERS or CPU count)")
	flag.BoolVar(&opts.serve, "serve", false, "Start the HTTP API instead of parsing files")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `HDFC credit card statement parser

Converts password-protected credit card statement PDFs into CSV rows
or a spending summary.

Usage:
  cc-statement-parser --file <statement.pdf> [flags]
  cc-statement-parser --dir <statements/> [flags]
  cc-statement-parser --serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # One statement to CSV with a header row
  cc-statement-parser --file jan.pdf --password JOHN1234 --header --output jan.csv

  # A year of statements named hdfc-01-01-2024.pdf ... in date order
  cc-statement-parser --dir 2024/ --sortformat %%d-%%m-%%Y --output 2024.csv

  # Spending by category
  cc-statement-parser --dir 2024/ --summary --categories categories.json
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("cc-statement-parser v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("Invalid configuration: %v\n", err)
	}

	log, err := logger.New(cfg.Logger.Level)
	if err != nil {
		fatalf("Failed to create logger: %v\n", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.serve {
		if err := serve(ctx, cfg, log); err != nil {
			log.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, opts, cfg, log); err != nil {
		log.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, cfg *config.Config, log *zap.Logger) error {
	if (opts.file == "") == (opts.dir == "") {
		flag.Usage()
		return errors.New("exactly one of --file or --dir is required")
	}
	if opts.categories != "" && !opts.summary {
		return errors.New("--categories can only be used with --summary")
	}

	// Configuration errors stop the run before any statement is read.
	var categories *category.Config
	if opts.categories != "" {
		var err error
		if categories, err = category.LoadFile(opts.categories); err != nil {
			return err
		}
	}
	var key *collate.SortKey
	if opts.sortFormat != "" {
		var err error
		if key, err = collate.NewSortKey(opts.sortFormat); err != nil {
			return err
		}
	}

	input := opts.file
	if opts.dir != "" {
		input = opts.dir
	}
	paths, err := loader.Resolve(input)
	if err != nil {
		return err
	}

	password := opts.password
	if password == "" {
		password = cfg.Parser.Password
	}
	workers := opts.workers
	if workers <= 0 {
		workers = cfg.Parser.Workers
	}

	p := parser.New(parser.Options{Cardholder: opts.name, Cardholders: cfg.Parser.Cardholders}, log)
	source := pipeline.FileSource{Extractor: extractor.New(log), Password: password}
	runner := pipeline.NewRunner(source, p, workers, log)

	res, err := runner.Run(ctx, paths, key)
	if res != nil {
		for _, f := range res.Failures {
			fmt.Fprintf(os.Stderr, "Skipped %s: %v\n", f.ID, f.Err)
		}
	}
	if err != nil {
		return err
	}

	if opts.summary {
		_, sum := res.Summarize(categories)
		if err := (&writer.SummaryWriter{}).Write(os.Stdout, sum); err != nil {
			return err
		}
		if opts.output == "" {
			return nil
		}
	}

	records := res.Records()
	csvWriter := &writer.CSVWriter{IncludeHeader: opts.header}
	if opts.output == "" {
		if len(records) == 0 {
			return writer.ErrNoRecords
		}
		return csvWriter.Write(os.Stdout, records)
	}
	if err := csvWriter.WriteToFile(opts.output, records); err != nil {
		return err
	}
	log.Info("wrote csv", zap.String("output", opts.output), zap.Int("records", len(records)))
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	h := api.NewHandler(api.Options{
		Password:    cfg.Parser.Password,
		Workers:     cfg.Parser.Workers,
		Cardholders: cfg.Parser.Cardholders,
		CacheTTL:    cfg.Server.CacheTTL,
	}, log)
	app := api.NewRouter(h, api.RouterOptions{
		MaxUploadSize: cfg.Server.MaxUploadSize,
		RateLimit:     cfg.Server.RateLimit,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Server.Port))
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
