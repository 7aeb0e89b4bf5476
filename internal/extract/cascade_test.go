package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minghan-wu/litdomain/constants"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTier is a scriptable TierExtractor that records how it was invoked.
type stubTier struct {
	name     constants.Tier
	text     string
	err      error
	panics   bool
	calls    int
	maxPages int
}

func (s *stubTier) Name() constants.Tier { return s.name }

func (s *stubTier) Extract(_ context.Context, _ string, maxPages int) (string, error) {
	s.calls++
	s.maxPages = maxPages
	if s.panics {
		panic("tier exploded")
	}
	return s.text, s.err
}

func TestCascade_FirstClearingTierWins(t *testing.T) {
	first := &stubTier{name: constants.TierTextLayer, text: strings.Repeat("a", 300)}
	second := &stubTier{name: constants.TierOCRPrimary, text: strings.Repeat("b", 300)}
	c := NewCascade(CascadeConfig{MinText: 200}, []TierExtractor{first, second}, discardLogger())

	res := c.Run(context.Background(), "/tmp/doc.pdf")

	require.True(t, res.Accepted)
	assert.Equal(t, constants.TierTextLayer, res.Tier)
	assert.Equal(t, strings.Repeat("a", 300), res.Text)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "later tiers must not run once one clears")
}

func TestCascade_FallthroughKeepsLastTierOutput(t *testing.T) {
	tiers := []TierExtractor{
		&stubTier{name: constants.TierTextLayer, text: "ab"},
		&stubTier{name: constants.TierOCRPrimary, text: ""},
		&stubTier{name: constants.TierOCRSecondary, text: "xyz"},
	}
	c := NewCascade(CascadeConfig{MinText: 10}, tiers, discardLogger())

	res := c.Run(context.Background(), "/tmp/doc.pdf")

	assert.False(t, res.Accepted)
	assert.Equal(t, constants.TierNone, res.Tier)
	assert.Equal(t, "xyz", res.Text)
	for _, tr := range tiers {
		assert.Equal(t, 1, tr.(*stubTier).calls)
	}
}

func TestCascade_ErrorIsolatedToOneTier(t *testing.T) {
	broken := &stubTier{name: constants.TierTextLayer, err: errors.New("pdftotext: exit 1")}
	good := &stubTier{name: constants.TierOCRPrimary, text: strings.Repeat("字", 250)}
	c := NewCascade(CascadeConfig{MinText: 200}, []TierExtractor{broken, good}, discardLogger())

	res := c.Run(context.Background(), "/tmp/doc.pdf")

	require.True(t, res.Accepted)
	assert.Equal(t, constants.TierOCRPrimary, res.Tier)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], string(constants.TierTextLayer))
}

func TestCascade_PanicIsolatedToOneTier(t *testing.T) {
	angry := &stubTier{name: constants.TierTextLayer, panics: true}
	good := &stubTier{name: constants.TierOCRPrimary, text: strings.Repeat("x", 250)}
	c := NewCascade(CascadeConfig{MinText: 200}, []TierExtractor{angry, good}, discardLogger())

	res := c.Run(context.Background(), "/tmp/doc.pdf")

	require.True(t, res.Accepted)
	assert.Equal(t, constants.TierOCRPrimary, res.Tier)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "panic")
}

func TestCascade_PageCapsPerTierKind(t *testing.T) {
	textTier := &stubTier{name: constants.TierTextLayer}
	ocrTier := &stubTier{name: constants.TierOCRPrimary}
	c := NewCascade(CascadeConfig{MinText: 200, MaxPagesText: 15, MaxPagesOCR: 5},
		[]TierExtractor{textTier, ocrTier}, discardLogger())

	c.Run(context.Background(), "/tmp/doc.pdf")

	assert.Equal(t, 15, textTier.maxPages)
	assert.Equal(t, 5, ocrTier.maxPages)
}

func TestCascade_ThresholdCountsRunesNotBytes(t *testing.T) {
	// 100 CJK runes are 300 bytes; a byte count would wrongly accept this
	tier := &stubTier{name: constants.TierTextLayer, text: strings.Repeat("基", 100)}
	c := NewCascade(CascadeConfig{MinText: 200}, []TierExtractor{tier}, discardLogger())

	res := c.Run(context.Background(), "/tmp/doc.pdf")
	assert.False(t, res.Accepted)

	tier2 := &stubTier{name: constants.TierTextLayer, text: strings.Repeat("基", 200)}
	c2 := NewCascade(CascadeConfig{MinText: 200}, []TierExtractor{tier2}, discardLogger())

	res = c2.Run(context.Background(), "/tmp/doc.pdf")
	assert.True(t, res.Accepted)
}

func TestCascade_EmptyOutputIsNotAnError(t *testing.T) {
	tiers := []TierExtractor{
		&stubTier{name: constants.TierTextLayer},
		&stubTier{name: constants.TierOCRPrimary},
	}
	c := NewCascade(CascadeConfig{MinText: 200}, tiers, discardLogger())

	res := c.Run(context.Background(), "/tmp/doc.pdf")

	assert.False(t, res.Accepted)
	assert.Empty(t, res.Text)
	assert.Empty(t, res.Warnings)
}

func TestDefaultTiers_Order(t *testing.T) {
	tiers := DefaultTiers(OCRConfig{}, "", "", discardLogger())
	require.Len(t, tiers, 4)
	assert.Equal(t, constants.TierTextLayer, tiers[0].Name())
	assert.Equal(t, constants.TierOCRPrimary, tiers[1].Name())
	assert.Equal(t, constants.TierOCRSecondary, tiers[2].Name())
	assert.Equal(t, constants.TierOCRFallback, tiers[3].Name())
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"a\r\nb":              "a\nb",
		"a\tb":                "a b",
		"a     b":             "a b",
		"a\n\n\n\n\nb":        "a\n\nb",
		"line one   \nline 2": "line one\nline 2",
		"  padded  ":          "padded",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}
