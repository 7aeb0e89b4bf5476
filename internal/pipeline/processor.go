package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/minghan-wu/litdomain/internal/extract"
	"github.com/minghan-wu/litdomain/internal/llm"
	"github.com/minghan-wu/litdomain/internal/repository"
	"github.com/minghan-wu/litdomain/internal/textsplit"
)

// Config holds the chunking and payload budgets for one processor.
type Config struct {
	ChunkSize          int
	ChunkOverlap       int
	MaxCharsForLLM     int
	AuthorSectionChars int
}

// Result summarizes one processed document. Classification always holds a
// valid taxonomy pair, even when extraction produced nothing.
type Result struct {
	FilePath       string
	FileName       string
	Tier           string
	ExtractedChars int
	Classification llm.Result
	Persisted      bool
}

// Extractor produces the best-available text for a document. Satisfied by
// *extract.Cascade.
type Extractor interface {
	Run(ctx context.Context, path string) extract.ExtractionResult
}

// Processor composes the per-document pipeline:
// cascade -> section split -> chunk -> merge -> classify -> upsert.
type Processor struct {
	cfg        Config
	cascade    Extractor
	classifier *llm.Classifier
	repo       repository.DomainRepository
	logger     *slog.Logger
}

func NewProcessor(cfg Config, cascade Extractor, classifier *llm.Classifier, repo repository.DomainRepository, logger *slog.Logger) *Processor {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = textsplit.DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = textsplit.DefaultChunkOverlap
	}
	if cfg.MaxCharsForLLM <= 0 {
		cfg.MaxCharsForLLM = 3000
	}
	if cfg.AuthorSectionChars <= 0 {
		cfg.AuthorSectionChars = textsplit.DefaultAuthorSectionChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{cfg: cfg, cascade: cascade, classifier: classifier, repo: repo, logger: logger}
}

// Process runs the full pipeline for one document. The returned error is a
// persistence error only; the Result still carries the classification so the
// caller can retry the upsert with the same record.
func (p *Processor) Process(ctx context.Context, path string) (Result, error) {
	runID := uuid.New().String()
	start := time.Now()

	out := Result{
		FilePath: path,
		FileName: filepath.Base(path),
	}

	ext := p.cascade.Run(ctx, path)
	out.Tier = string(ext.Tier)
	out.ExtractedChars = utf8.RuneCountInString(ext.Text)

	req := llm.ClassifyRequest{Title: out.FileName}
	if ext.Text == "" {
		// nothing meaningful to classify: skip the provider, take the
		// conservative default so the file still yields exactly one record
		p.logger.Warn("pipeline.extraction_empty", "run_id", runID, "path", path)
		out.Classification = p.classifier.ClassifyOffline(req)
	} else {
		header, body := textsplit.SplitAuthorSection(ext.Text, p.cfg.AuthorSectionChars)
		req.Header = header

		// body budget is whatever the header prefix leaves of the payload cap
		// +1: the newline ahead of the payload comes back once the payload
		// is non-empty
		prefixLen := utf8.RuneCountInString(llm.BuildContent(header, "")) + 1
		budget := p.cfg.MaxCharsForLLM - prefixLen
		if budget < 0 {
			budget = 0
		}

		if body != "" && budget > 0 {
			chunks := textsplit.ChunkText(body, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
			req.Payload = textsplit.MergeChunks(chunks, budget, textsplit.DefaultSeparator)
		}

		out.Classification = p.classifier.Classify(ctx, req)
	}

	if err := p.repo.Upsert(ctx, path, out.Classification.DomainCN); err != nil {
		p.logger.Error("pipeline.upsert_failed",
			"run_id", runID, "path", path,
			"domain", out.Classification.DomainCN, "error", err)
		return out, err
	}
	out.Persisted = true

	p.logger.Info("pipeline.document_done",
		"run_id", runID,
		"path", path,
		"tier", out.Tier,
		"extracted_chars", out.ExtractedChars,
		"domain_cn", out.Classification.DomainCN,
		"domain_en", out.Classification.DomainEN,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
