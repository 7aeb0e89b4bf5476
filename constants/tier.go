package constants

// Tier names an extraction strategy in the cascade.
type Tier string

// Stable values (recorded in logs and results).
const (
	TierTextLayer    Tier = "TEXT_LAYER"    // embedded text layer
	TierOCRPrimary   Tier = "OCR_PRIMARY"   // high-DPI OCR
	TierOCRSecondary Tier = "OCR_SECONDARY" // reduced-DPI OCR
	TierOCRFallback  Tier = "OCR_FALLBACK"  // cheapest, always-available OCR
	TierNone         Tier = "NONE"          // no tier cleared the threshold
)

// MinTextThreshold is the minimum stripped character count for an extraction
// attempt to count as a success.
const MinTextThreshold = 200
