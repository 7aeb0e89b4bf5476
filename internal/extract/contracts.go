package extract

import (
	"context"
	"time"

	"github.com/minghan-wu/litdomain/constants"
)

// TierExtractor is one extraction strategy in the cascade: file -> text.
// Implementations return empty text on failure and never panic past Extract.
type TierExtractor interface {
	Name() constants.Tier
	Extract(ctx context.Context, path string, maxPages int) (string, error)
}

// ExtractionResult summarizes one full cascade run.
type ExtractionResult struct {
	Text     string
	Tier     constants.Tier // tier that produced Text, or TierNone
	Accepted bool           // len(stripped text) cleared the threshold
	Duration time.Duration
	Warnings []string
}
