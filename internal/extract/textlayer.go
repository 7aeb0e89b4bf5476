package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minghan-wu/litdomain/constants"
)

// TextLayerTier reads the embedded text layer of a PDF. It tries pdftotext
// first and falls back to mutool before declaring the tier failed, so a
// parser bug in one library does not sink born-digital documents.
type TextLayerTier struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Mutool    string // binary name or absolute path; if empty -> "mutool"

	runner Runner
	logger *slog.Logger
}

func NewTextLayerTier(pdftotext, mutool string, logger *slog.Logger) *TextLayerTier {
	if pdftotext == "" {
		pdftotext = "pdftotext"
	}
	if mutool == "" {
		mutool = "mutool"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TextLayerTier{Pdftotext: pdftotext, Mutool: mutool, runner: newExecRunner(logger), logger: logger}
}

func (t *TextLayerTier) Name() constants.Tier { return constants.TierTextLayer }

func (t *TextLayerTier) Extract(ctx context.Context, path string, maxPages int) (string, error) {
	if maxPages <= 0 {
		maxPages = 15
	}

	// pdftotext -f 1 -l <n> -enc UTF-8 -eol unix <path> -
	out, errb, err := t.runner.Run(ctx, t.Pdftotext,
		"-f", "1", "-l", fmt.Sprintf("%d", maxPages),
		"-enc", "UTF-8", "-eol", "unix", path, "-")
	if err == nil && strings.TrimSpace(string(out)) != "" {
		return string(out), nil
	}
	if err != nil {
		t.logger.Debug("pdftotext failed, trying mutool",
			"path", path, "error", err, "stderr", truncate(string(errb), 2<<10))
	}

	// mutool draw -F text -o - <path> 1-<n>
	out, errb, err = t.runner.Run(ctx, t.Mutool,
		"draw", "-F", "text", "-o", "-", path, fmt.Sprintf("1-%d", maxPages))
	if err != nil {
		return "", fmt.Errorf("text layer: pdftotext and mutool both failed: %w (%s)",
			err, truncate(string(errb), 1<<10))
	}
	return string(out), nil
}
