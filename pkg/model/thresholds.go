package model

import "time"

// Numeric thresholds used across the pipeline. These appeared with slightly
// different values in earlier revisions of the routing logic; the values here
// are the authoritative ones and every consumer reads them from this table.
const (
	// Action items at or above this confidence are primary
	PrimaryActionConfidence = 0.85

	// Action items at or above this confidence (but below primary) are
	// secondary; anything lower is dropped. Precision over recall.
	SecondaryActionConfidence = 0.70

	// Minimum fraction of chunks with a known speaker before quote
	// selection is permitted
	AttributionRatioMin = 0.70

	// A deterministic match backed by a single weak signal below this
	// confidence is semantically re-checked
	WeakMatchConfidence = 0.70

	// How long the known-company-name list may be served from cache
	CompanyCacheTTL = 5 * time.Minute
)
