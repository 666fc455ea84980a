// Package llmjson parses JSON produced by LLM responses. Models wrap output
// in markdown code fences often enough that every parse site strips them
// first; parse failures keep a truncated raw preview for diagnosis.
package llmjson

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/leverege/meetingmind/pkg/utils/logging"
)

const previewLimit = 200

// StripFences removes a surrounding markdown code fence (``` or ```json)
// from the raw response, if present
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json")
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Unmarshal strips code fences and decodes raw into v. On failure the raw
// response preview is logged and the error is returned, not swallowed, so
// composition failures stay visible upstream.
func Unmarshal(ctx context.Context, raw string, v any) error {
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		logging.From(ctx).Error("failed to parse LLM JSON response",
			"error", err, "preview", Preview(raw))
		return goerr.Wrap(err, "failed to parse LLM JSON response",
			goerr.V("preview", Preview(raw)))
	}
	return nil
}

// Preview truncates raw for log output
func Preview(raw string) string {
	if len(raw) <= previewLimit {
		return raw
	}
	return raw[:previewLimit] + "..."
}
