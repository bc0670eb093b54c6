package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFExtractor struct {
	FallbackPdftotext bool
	Log               *slog.Logger
}

// Extract returns the text of every page that has any, in page order,
// joined with newlines.
func (p *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	pages, err := extractPDFPages(ctx, path)
	if err != nil && p.FallbackPdftotext && ctx.Err() == nil {
		fallback, ferr := extractPdftotext(ctx, path)
		if ferr == nil {
			p.logger().Warn("pdf library failed, used pdftotext", "path", path, "error", err)
			pages, err = fallback, nil
		}
	}
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}
	return joinPages(pages), nil
}

func (p *PDFExtractor) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

func extractPDFPages(ctx context.Context, path string) (pages []string, err error) {
	// ledongthuc/pdf panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPdftotext(ctx context.Context, path string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output, which separates pages with form feeds.
func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
