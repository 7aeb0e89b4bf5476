package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minghan-wu/litdomain/constants"
)

// Mode selects the taxonomy.
type Mode string

const (
	// ModeBinary constrains results to the life-science / non-life-science pair.
	ModeBinary Mode = "binary"
	// ModeOpen is the legacy free-form variant: any academic domain pair.
	ModeOpen Mode = "open"
)

// ClassifierConfig tunes the classifier.
type ClassifierConfig struct {
	Mode Mode
	// DefaultDomain is the class applied when everything stays ambiguous.
	// Empty means the conservative negative class. Flipping this is a product
	// decision, not a code default.
	DefaultDomain string
	// Offline skips the provider entirely and classifies from the keyword table.
	Offline bool
}

// Classifier turns a document's header+payload into a taxonomy pair. It never
// returns an error: provider failures, garbage output and ambiguity all
// resolve through retry and fallback to a valid pair.
type Classifier struct {
	cfg      ClassifierConfig
	provider Provider
	logger   *slog.Logger
}

func NewClassifier(cfg ClassifierConfig, provider Provider, logger *slog.Logger) *Classifier {
	if cfg.Mode == "" {
		cfg.Mode = ModeBinary
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{cfg: cfg, provider: provider, logger: logger}
}

// Classify runs the full protocol: prompt, provider call, tolerant parse,
// normalization, one retry, heuristic fallback.
func (c *Classifier) Classify(ctx context.Context, req ClassifyRequest) Result {
	if c.cfg.Offline || c.provider == nil {
		return c.ClassifyOffline(req)
	}

	rid := uuid.New().String()
	start := time.Now()

	content := BuildContent(req.Header, req.Payload)
	var prompt string
	if c.cfg.Mode == ModeOpen {
		prompt = buildOpenPrompt(req.Title, content)
	} else {
		prompt = buildBinaryPrompt(req.Title, content)
	}

	c.logger.Info("classify.start",
		"req_id", rid,
		"provider", c.provider.Name(),
		"mode", string(c.cfg.Mode),
		"title", req.Title,
		"content_chars", len(content),
	)

	var lastRaw string
	for attempt := 1; attempt <= 2; attempt++ {
		raw, err := c.provider.Complete(ctx, prompt)
		if err != nil {
			// transport failure degrades to unparseable output
			c.logger.Warn("classify.provider_error",
				"req_id", rid, "attempt", attempt, "error", err)
			raw = ""
		}
		if raw != "" {
			lastRaw = raw
		}

		parsed, ok := ParseResponse(raw)
		if !ok {
			c.logger.Warn("classify.parse_failed",
				"req_id", rid, "attempt", attempt, "raw_chars", len(raw))
			continue
		}
		if isUnclassified(parsed) {
			c.logger.Warn("classify.unclassified_sentinel",
				"req_id", rid, "attempt", attempt)
			continue
		}

		res := c.normalize(parsed)
		c.logger.Info("classify.ok",
			"req_id", rid, "attempt", attempt,
			"domain_cn", res.DomainCN, "domain_en", res.DomainEN,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return res
	}

	// Both attempts failed to parse: re-scan the raw text of whichever attempt
	// produced output for the same negative-then-positive keyword rule.
	res := c.heuristic(lastRaw, req)
	c.logger.Warn("classify.fallback",
		"req_id", rid,
		"domain_cn", res.DomainCN, "domain_en", res.DomainEN,
		"raw_chars", len(lastRaw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// normalize maps a parsed pair into the taxonomy. The negative marker check
// runs first because the positive label is a substring of the negative one.
func (c *Classifier) normalize(parsed Result) Result {
	if c.cfg.Mode == ModeOpen {
		cn := CleanLabel(parsed.DomainCN)
		en := CleanLabel(parsed.DomainEN)
		if cn == "" {
			cn = constants.UnclassifiedCN
		}
		if en == "" {
			en = constants.UnclassifiedEN
		}
		return Result{DomainCN: cn, DomainEN: en}
	}

	joined := parsed.DomainCN + " " + parsed.DomainEN
	if constants.IsNegativeLifeScience(joined) {
		return negativeResult()
	}
	if constants.IsPositiveLifeScience(joined) {
		return positiveResult()
	}
	return c.defaultResult()
}

// heuristic applies the negative-then-positive rule directly to unstructured
// provider output, then to the document text itself.
func (c *Classifier) heuristic(raw string, req ClassifyRequest) Result {
	if c.cfg.Mode == ModeOpen {
		if label := CleanLabel(stripThinking(raw)); label != "" {
			return Result{DomainCN: label, DomainEN: constants.UnclassifiedEN}
		}
		return Result{DomainCN: constants.UnclassifiedCN, DomainEN: constants.UnclassifiedEN}
	}

	if raw != "" {
		if constants.IsNegativeLifeScience(raw) {
			return negativeResult()
		}
		if constants.IsPositiveLifeScience(raw) {
			return positiveResult()
		}
	}
	return c.ClassifyOffline(req)
}

// ClassifyOffline checks the fixed keyword table against title+header+payload.
// The table carries positive keywords only, so no precedence rule is needed;
// anything unmatched takes the configured default class.
func (c *Classifier) ClassifyOffline(req ClassifyRequest) Result {
	text := strings.ToLower(req.Title + " " + req.Header + " " + req.Payload)
	for _, rule := range constants.OfflineRules {
		if strings.Contains(text, strings.ToLower(rule.Keyword)) {
			if rule.Domain == constants.LifeScienceCN {
				return positiveResult()
			}
		}
	}
	return c.defaultResult()
}

func (c *Classifier) defaultResult() Result {
	if c.cfg.DefaultDomain == constants.LifeScienceCN {
		return positiveResult()
	}
	return negativeResult()
}

func isUnclassified(r Result) bool {
	return strings.Contains(r.DomainCN, constants.UnclassifiedCN) ||
		strings.EqualFold(strings.TrimSpace(r.DomainEN), constants.UnclassifiedEN)
}

func positiveResult() Result {
	return Result{DomainCN: constants.LifeScienceCN, DomainEN: constants.LifeScienceEN}
}

func negativeResult() Result {
	return Result{DomainCN: constants.NonLifeScienceCN, DomainEN: constants.NonLifeScienceEN}
}
