package pipeline

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/dgallion1/docchunk/internal/record"
)

// DocStatus represents the outcome of one document.
type DocStatus string

const (
	StatusCompleted DocStatus = "completed"
	StatusEmpty     DocStatus = "empty" // Readable, but no page had text.
	StatusFailed    DocStatus = "failed"
)

// DocResult is the outcome of extracting and chunking one document.
type DocResult struct {
	Path        string         `json:"path"`
	Label       string         `json:"label"`
	Status      DocStatus      `json:"status"`
	Phase       string         `json:"phase,omitempty"` // Phase that failed.
	Tokens      int            `json:"tokens"`
	ContentHash string         `json:"content_hash,omitempty"`
	Elapsed     time.Duration  `json:"elapsed"`
	Chunks      []record.Chunk `json:"-"`
	Err         error          `json:"-"`
}

// Report summarizes a batch run.
type Report struct {
	RunID       string        `json:"run_id"`
	Output      string        `json:"output,omitempty"` // Empty when nothing was written.
	Chunks      int           `json:"chunks"`
	Failed      int           `json:"failed"`
	Documents   []DocResult   `json:"documents"`
	Extraction  StatsSnapshot `json:"extraction"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Collection returns every chunk of every successful document, in input order.
func (r *Report) Collection() []record.Chunk {
	out := make([]record.Chunk, 0, r.Chunks)
	for _, d := range r.Documents {
		if d.Status == StatusFailed {
			continue
		}
		out = append(out, d.Chunks...)
	}
	return out
}

// FailedDocuments returns the results of documents that failed.
func (r *Report) FailedDocuments() []DocResult {
	var out []DocResult
	for _, d := range r.Documents {
		if d.Status == StatusFailed {
			out = append(out, d)
		}
	}
	return out
}

func (r *Report) add(d DocResult) {
	r.Documents = append(r.Documents, d)
	if d.Status == StatusFailed {
		r.Failed++
		return
	}
	r.Chunks += len(d.Chunks)
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
