package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/record"
	"github.com/dgallion1/docchunk/internal/sink"
	"github.com/dgallion1/docchunk/internal/tokenizer"
)

// Policy decides what a failed document does to the rest of the batch.
type Policy string

const (
	// PolicyAbort stops at the first failed document and writes nothing.
	PolicyAbort Policy = "abort"
	// PolicySkip records the failure and keeps going.
	PolicySkip Policy = "skip"
)

// ParsePolicy validates a policy name; "" selects PolicyAbort.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want %q or %q)", s, PolicyAbort, PolicySkip)
	}
}

var (
	ErrNoDocuments = errors.New("no input documents")
	ErrNoOutput    = errors.New("no output destination")
)

// Options configures a Builder.
type Options struct {
	Chunk      chunker.Config
	Policy     Policy
	DocTimeout time.Duration // Per-document limit; 0 disables it.
	Output     string        // Destination name handed to the sink.
}

// Builder turns a list of PDFs into one persisted chunk collection.
type Builder struct {
	extractor parser.Extractor
	tok       tokenizer.Tokenizer
	sink      sink.Sink
	opts      Options
	log       *slog.Logger
}

func NewBuilder(extractor parser.Extractor, tok tokenizer.Tokenizer, out sink.Sink, opts Options, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{
		extractor: extractor,
		tok:       tok,
		sink:      out,
		opts:      opts,
		log:       log,
	}
}

// Build processes paths in order, tags every chunk with its document label
// and writes the whole collection to the sink. Report.Chunks is the number
// of records written.
//
// Under PolicyAbort the first failure is returned and nothing is written.
// Under PolicySkip failures are only recorded in the report.
func (b *Builder) Build(ctx context.Context, paths []string) (*Report, error) {
	if err := b.opts.Chunk.Validate(); err != nil {
		return nil, err
	}
	policy, err := ParsePolicy(string(b.opts.Policy))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoDocuments
	}
	if b.opts.Output == "" {
		return nil, ErrNoOutput
	}

	report := &Report{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := b.log.With("run_id", report.RunID)
	timings := NewTimings()
	finish := func() {
		report.Extraction = timings.Snapshot()
		report.CompletedAt = time.Now()
	}

	log.Info("starting batch",
		"documents", len(paths),
		"chunk_size", b.opts.Chunk.ChunkSize,
		"overlap", b.opts.Chunk.ChunkOverlap,
		"encoding", b.tok.Name(),
		"policy", policy,
	)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			finish()
			return report, err
		}

		res := b.processDocument(ctx, path, timings, log)
		report.add(res)

		if res.Status == StatusFailed && policy == PolicyAbort {
			finish()
			log.Error("aborting batch", "document", i+1, "path", path, "phase", res.Phase, "error", res.Err)
			return report, fmt.Errorf("document %d (%s): %w", i+1, path, res.Err)
		}
	}

	data, err := record.Marshal(report.Collection())
	if err != nil {
		finish()
		return report, err
	}
	dest, err := b.sink.Write(ctx, b.opts.Output, bytes.NewReader(data), int64(len(data)))
	finish()
	if err != nil {
		log.Error("write failed", "output", dest, "error", err)
		return report, err
	}
	report.Output = dest

	log.Info("batch complete",
		"output", dest,
		"chunks", report.Chunks,
		"failed", report.Failed,
		"bytes", len(data),
		"extract_p50_ms", report.Extraction.P50Ms,
		"duration_ms", report.CompletedAt.Sub(report.StartedAt).Milliseconds(),
	)
	return report, nil
}

// processDocument extracts, chunks and tags a single document.
func (b *Builder) processDocument(ctx context.Context, path string, timings *Timings, log *slog.Logger) (res DocResult) {
	res = DocResult{Path: path, Label: parser.Label(path)}
	log = log.With("doc", res.Label)

	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	if b.opts.DocTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.DocTimeout)
		defer cancel()
	}

	fail := func(phase string, err error) DocResult {
		log.Error("document failed", "phase", phase, "error", err)
		res.Status = StatusFailed
		res.Phase = phase
		res.Err = err
		return res
	}

	// Phase 1: Extract
	text, err := b.extractor.Extract(ctx, path)
	timings.Record(time.Since(start))
	if err != nil {
		return fail("extracting", err)
	}
	res.ContentHash = ContentHashHex([]byte(text))

	// Phase 2: Tokenize and chunk
	tokens, err := b.tok.Encode(text)
	if err != nil {
		return fail("tokenizing", err)
	}
	res.Tokens = len(tokens)

	parts, err := chunker.ChunkTokens(tokens, b.tok, b.opts.Chunk)
	if err != nil {
		return fail("chunking", err)
	}

	// Phase 3: Tag
	res.Chunks = make([]record.Chunk, 0, len(parts))
	for _, part := range parts {
		res.Chunks = append(res.Chunks, record.Chunk{Author: res.Label, Text: part})
	}

	if len(res.Chunks) == 0 {
		log.Warn("no extractable text")
		res.Status = StatusEmpty
		return res
	}
	res.Status = StatusCompleted
	log.Info("chunked document", "tokens", res.Tokens, "chunks", len(res.Chunks))
	return res
}
