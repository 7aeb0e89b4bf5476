package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/minghan-wu/litdomain/internal/common"
	"github.com/minghan-wu/litdomain/internal/extract"
	"github.com/minghan-wu/litdomain/internal/llm"
	"github.com/minghan-wu/litdomain/internal/llm/ollama"
	"github.com/minghan-wu/litdomain/internal/llm/openai"
	"github.com/minghan-wu/litdomain/internal/pipeline"
	"github.com/minghan-wu/litdomain/internal/repository"
)

// app bundles the wired stack behind the CLI commands.
type app struct {
	cfg  *common.Config
	db   *sql.DB
	repo repository.DomainRepository
	proc *pipeline.Processor
}

func newApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	cfg := common.LoadConfig()
	if flagDBPath != "" {
		cfg.Database.Path = flagDBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, dialect, err := repository.Open(ctx, repository.Config{
		Path:            cfg.Database.Path,
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	repo := repository.NewDomainRepository(db, dialect, logger)

	tiers := extract.DefaultTiers(extract.OCRConfig{
		Pdftoppm:    cfg.Extract.Pdftoppm,
		Tesseract:   cfg.Extract.Tesseract,
		Lang:        cfg.Extract.TesseractLang,
		TessdataDir: cfg.Extract.TessdataDir,
	}, cfg.Extract.Pdftotext, cfg.Extract.Mutool, logger)
	cascade := extract.NewCascade(extract.CascadeConfig{
		MinText:      cfg.Extract.MinText,
		MaxPagesText: cfg.Extract.MaxPagesText,
		MaxPagesOCR:  cfg.Extract.MaxPagesOCR,
		TierTimeout:  cfg.Extract.TierTimeout,
	}, tiers, logger)

	classifier := llm.NewClassifier(llm.ClassifierConfig{
		Mode:          llm.ModeBinary,
		DefaultDomain: cfg.LLM.DefaultDomain,
		Offline:       cfg.LLM.Provider == "offline",
	}, newProvider(cfg, logger), logger)

	proc := pipeline.NewProcessor(pipeline.Config{
		ChunkSize:          cfg.LLM.ChunkSize,
		ChunkOverlap:       cfg.LLM.ChunkOverlap,
		MaxCharsForLLM:     cfg.LLM.MaxCharsForLLM,
		AuthorSectionChars: cfg.LLM.AuthorSectionChars,
	}, cascade, classifier, repo, logger)

	return &app{cfg: cfg, db: db, repo: repo, proc: proc}, nil
}

func newProvider(cfg *common.Config, logger *slog.Logger) llm.Provider {
	switch cfg.LLM.Provider {
	case "openai_api":
		return openai.NewClient(openai.Config{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
	case "ollama":
		return ollama.NewClient(ollama.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}, logger)
	default:
		// offline mode never calls a provider
		return nil
	}
}

func (a *app) Close(logger *slog.Logger) {
	if err := a.db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}
