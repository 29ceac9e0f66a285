// Package ocr extracts text from payment screenshots. The only production
// implementation shells out to the tesseract binary; handlers depend on the
// Extractor interface so tests can substitute canned text.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Extractor turns image bytes into text.
type Extractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Tesseract runs the tesseract CLI with stdin/stdout piping. Concurrency is
// bounded so a burst of uploads cannot fork-bomb the host.
type Tesseract struct {
	binary  string
	timeout time.Duration
	sem     chan struct{}
}

// NewTesseract builds an exec-based extractor. maxConcurrent must be >= 1.
func NewTesseract(binary string, timeout time.Duration, maxConcurrent int) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Tesseract{
		binary:  binary,
		timeout: timeout,
		sem:     make(chan struct{}, maxConcurrent),
	}
}

// ExtractText OCRs the image. The per-invocation timeout applies after the
// concurrency slot is acquired, so queued requests are not penalized for
// waiting.
func (t *Tesseract) ExtractText(ctx context.Context, image []byte) (string, error) {
	select {
	case t.sem <- struct{}{}:
		defer func() { <-t.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	runCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	// "stdin" / "stdout" make tesseract read the image from stdin and
	// write plain text to stdout
	cmd := exec.CommandContext(runCtx, t.binary, "stdin", "stdout")
	cmd.Stdin = bytes.NewReader(image)

	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			return "", fmt.Errorf("ocr timed out: %w", runCtx.Err())
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(errOut.String()))
	}

	return out.String(), nil
}
