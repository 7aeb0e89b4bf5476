package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"log/slog"

	"github.com/minghan-wu/litdomain/constants"
)

// OCRConfig tunes one OCR tier. Higher DPI costs more and reads better;
// the cascade orders tiers from most expensive to most robust.
type OCRConfig struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang        string // default "eng+chi_sim"
	DPI         int    // rasterization DPI, default 300
	PSM         int    // e.g., 6 for a uniform block of text; 0 = tesseract default
	TessdataDir string
}

// OCRTier rasterizes PDF pages with pdftoppm and recognizes them with
// tesseract. Page images live in a temp dir removed after the run.
type OCRTier struct {
	tier   constants.Tier
	cfg    OCRConfig
	runner Runner
	logger *slog.Logger
}

func NewOCRTier(tier constants.Tier, cfg OCRConfig, logger *slog.Logger) *OCRTier {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng+chi_sim"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRTier{tier: tier, cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

func (t *OCRTier) Name() constants.Tier { return t.tier }

func (t *OCRTier) Extract(ctx context.Context, path string, maxPages int) (string, error) {
	if maxPages <= 0 {
		maxPages = 5
	}

	tmpDir, err := os.MkdirTemp("", "ld-ocr-*")
	if err != nil {
		return "", err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			t.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png -f 1 -l <n> <in.pdf> <tmp/page>
	_, errb, err := t.runner.Run(ctx, t.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", t.cfg.DPI), "-png",
		"-f", "1", "-l", fmt.Sprintf("%d", maxPages), path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 1<<10))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) > maxPages {
		matches = matches[:maxPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no images")
	}

	var b strings.Builder
	for _, img := range matches {
		txt, err := t.tesseractOCR(ctx, img)
		if err != nil {
			t.logger.Warn("tesseract page failed", "tier", t.tier, "image", img, "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}
	return b.String(), nil
}

func (t *OCRTier) tesseractOCR(ctx context.Context, img string) (string, error) {
	args := []string{img, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 1<<10))
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
