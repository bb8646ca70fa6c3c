// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "time"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Options contains model parameters for inference.
type Options struct {
	Temperature float64 `json:"temperature,omitempty"` // 0.0-2.0, default 0.8
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens to generate, -1 for unlimited
	TopK        int     `json:"top_k,omitempty"`       // Default 40
	TopP        float64 `json:"top_p,omitempty"`       // 0.0-1.0, default 0.9

	// Stop sequences
	Stop []string `json:"stop,omitempty"`
}

// GenerateRequest is the request body for the /api/generate endpoint.
type GenerateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	System  string   `json:"system,omitempty"`
	Options *Options `json:"options,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerateResponse is one record from the /api/generate endpoint.
// With stream:true the body is a sequence of newline-delimited records;
// with stream:false it is a single record.
type GenerateResponse struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Response  string    `json:"response"`
	Done      bool      `json:"done"`

	// Timing statistics, only populated on the final record (nanoseconds).
	TotalDuration      int64 `json:"total_duration,omitempty"`
	LoadDuration       int64 `json:"load_duration,omitempty"`
	PromptEvalCount    int   `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64 `json:"prompt_eval_duration,omitempty"`
	EvalCount          int   `json:"eval_count,omitempty"`
	EvalDuration       int64 `json:"eval_duration,omitempty"`
}

// TotalTime returns the total generation time.
func (r *GenerateResponse) TotalTime() time.Duration {
	return time.Duration(r.TotalDuration)
}

// TokensPerSecond calculates the generation speed from a final record.
func (r *GenerateResponse) TokensPerSecond() float64 {
	if r.EvalDuration == 0 {
		return 0
	}
	seconds := float64(r.EvalDuration) / 1e9
	return float64(r.EvalCount) / seconds
}

// =============================================================================
// MODEL TYPES
// =============================================================================

// ModelInfo contains information about an installed model.
type ModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// FormatSize formats the model size in human-readable form.
func (m *ModelInfo) FormatSize() string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case m.Size >= gb:
		return formatFloat(float64(m.Size)/gb) + " GB"
	case m.Size >= mb:
		return formatFloat(float64(m.Size)/mb) + " MB"
	case m.Size >= kb:
		return formatFloat(float64(m.Size)/kb) + " KB"
	default:
		return formatFloat(float64(m.Size)) + " B"
	}
}

func formatFloat(f float64) string {
	whole := int64(f)
	frac := int64((f - float64(whole)) * 10)
	if frac == 0 {
		return formatInt(whole)
	}
	return formatInt(whole) + "." + formatInt(frac)
}

func formatInt(n int64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
