package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/minghan-wu/litdomain/constants"
)

// CascadeConfig tunes the tier walk.
type CascadeConfig struct {
	MinText      int           // acceptance threshold in stripped characters, default constants.MinTextThreshold
	MaxPagesText int           // page cap for the text-layer tier, default 15
	MaxPagesOCR  int           // page cap for OCR tiers, default 5
	TierTimeout  time.Duration // per tier; 0 = no extra deadline
}

// Cascade walks an ordered tier list and stops at the first tier whose
// stripped output clears the threshold. When no tier clears it, the last
// tier's output is returned as a best effort; extraction failure is an
// empty string, never an error.
type Cascade struct {
	cfg    CascadeConfig
	tiers  []TierExtractor
	logger *slog.Logger
}

func NewCascade(cfg CascadeConfig, tiers []TierExtractor, logger *slog.Logger) *Cascade {
	if cfg.MinText <= 0 {
		cfg.MinText = constants.MinTextThreshold
	}
	if cfg.MaxPagesText <= 0 {
		cfg.MaxPagesText = 15
	}
	if cfg.MaxPagesOCR <= 0 {
		cfg.MaxPagesOCR = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{cfg: cfg, tiers: tiers, logger: logger}
}

// DefaultTiers is the production tier order: embedded text layer, then OCR
// from highest fidelity down to the cheapest run that is always available.
func DefaultTiers(extractCfg OCRConfig, pdftotext, mutool string, logger *slog.Logger) []TierExtractor {
	primary := extractCfg
	primary.DPI = 300

	secondary := extractCfg
	secondary.DPI = 150

	fallback := extractCfg
	fallback.DPI = 100
	fallback.PSM = 6

	return []TierExtractor{
		NewTextLayerTier(pdftotext, mutool, logger),
		NewOCRTier(constants.TierOCRPrimary, primary, logger),
		NewOCRTier(constants.TierOCRSecondary, secondary, logger),
		NewOCRTier(constants.TierOCRFallback, fallback, logger),
	}
}

// Run extracts the best available text for path.
func (c *Cascade) Run(ctx context.Context, path string) ExtractionResult {
	start := time.Now()
	res := ExtractionResult{Tier: constants.TierNone}

	for i, tier := range c.tiers {
		maxPages := c.cfg.MaxPagesOCR
		if tier.Name() == constants.TierTextLayer {
			maxPages = c.cfg.MaxPagesText
		}

		text, err := c.runTier(ctx, tier, path, maxPages)
		if err != nil {
			c.logger.Warn("extract.tier.failed",
				"path", path, "tier", tier.Name(), "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", tier.Name(), err))
			text = ""
		}
		text = Normalize(text)

		if utf8.RuneCountInString(strings.TrimSpace(text)) >= c.cfg.MinText {
			res.Text = text
			res.Tier = tier.Name()
			res.Accepted = true
			res.Duration = time.Since(start)
			c.logger.Info("extract.tier.accepted",
				"path", path, "tier", tier.Name(),
				"chars", len(text), "elapsed_ms", res.Duration.Milliseconds())
			return res
		}

		c.logger.Debug("extract.tier.below_threshold",
			"path", path, "tier", tier.Name(), "chars", len(text), "min", c.cfg.MinText)

		// keep the last tier's output as the best-effort fallback
		if i == len(c.tiers)-1 {
			res.Text = text
		}
	}

	res.Duration = time.Since(start)
	c.logger.Warn("extract.cascade.fallthrough",
		"path", path, "chars", len(res.Text), "elapsed_ms", res.Duration.Milliseconds())
	return res
}

// runTier isolates one tier: a panic or error inside it becomes empty output.
func (c *Cascade) runTier(ctx context.Context, tier TierExtractor, path string, maxPages int) (text string, err error) {
	if c.cfg.TierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.TierTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("tier panic: %v", r)
		}
	}()
	return tier.Extract(ctx, path, maxPages)
}
