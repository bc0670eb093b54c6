package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/sink"
	"github.com/dgallion1/docchunk/internal/tokenizer"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("docchunk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: docchunk [flags] <file.pdf>...\n\n")
		fs.PrintDefaults()
	}
	fs.IntVar(&cfg.ChunkSize, "size", cfg.ChunkSize, "maximum tokens per chunk (CHUNK_SIZE)")
	fs.IntVar(&cfg.ChunkOverlap, "overlap", cfg.ChunkOverlap, "tokens shared by consecutive chunks (CHUNK_OVERLAP)")
	fs.StringVar(&cfg.TokenEncoding, "encoding", cfg.TokenEncoding, "token encoding: cl100k_base, p50k_base, r50k_base or runes (TOKEN_ENCODING)")
	fs.StringVar(&cfg.OutputPath, "o", cfg.OutputPath, "output file or object name (OUTPUT_PATH)")
	fs.StringVar(&cfg.OutputSink, "sink", cfg.OutputSink, "output sink: local or minio (OUTPUT_SINK)")
	fs.StringVar(&cfg.FailurePolicy, "policy", cfg.FailurePolicy, "on a failed document: abort or skip (FAILURE_POLICY)")
	fs.DurationVar(&cfg.DocTimeout, "timeout", cfg.DocTimeout, "per-document time limit, 0 for none (DOC_TIMEOUT)")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	paths := fs.Args()
	if len(paths) == 0 {
		fs.Usage()
		return exitUsage
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "docchunk: %v\n", err)
		return exitUsage
	}
	level, _ := cfg.SlogLevel()
	log := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	for _, p := range paths {
		if !parser.IsSupportedExtension(p) {
			log.Warn("input does not look like a pdf", "path", p)
		}
	}

	tok, err := tokenizer.New(cfg.TokenEncoding)
	if err != nil {
		log.Error("invalid token encoding", "error", err)
		return exitUsage
	}

	out, err := newSink(ctx, cfg)
	if err != nil {
		log.Error("output sink unavailable", "sink", cfg.OutputSink, "error", err)
		return exitError
	}

	extractor := &parser.PDFExtractor{
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
		Log:               log,
	}
	builder := pipeline.NewBuilder(extractor, tok, out, pipeline.Options{
		Chunk:      cfg.Chunker(),
		Policy:     pipeline.Policy(cfg.FailurePolicy),
		DocTimeout: cfg.DocTimeout,
		Output:     cfg.OutputPath,
	}, log)

	report, err := builder.Build(ctx, paths)
	if err != nil {
		log.Error("batch failed", "error", err)
		return exitError
	}

	fmt.Fprintf(stdout, "saved %d chunks to %s\n", report.Chunks, report.Output)
	if failed := report.FailedDocuments(); len(failed) > 0 {
		for _, d := range failed {
			fmt.Fprintf(stderr, "skipped %s (%s): %v\n", d.Path, d.Phase, d.Err)
		}
		return exitError
	}
	return exitOK
}

func newSink(ctx context.Context, cfg config.Config) (sink.Sink, error) {
	switch cfg.OutputSink {
	case config.SinkMinIO:
		return sink.NewMinIO(ctx, cfg.MinIO)
	default:
		return &sink.Local{}, nil
	}
}
