// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package thinking separates reasoning segments from the visible answer in
// streamed model output. Reasoning models emit intermediate "thinking" text
// wrapped in <think>...</think> markers inline with the answer; the UI shows
// the two streams separately.
package thinking

import "strings"

// Default delimiters used by reasoning models served through Ollama.
const (
	DefaultOpenTag  = "<think>"
	DefaultCloseTag = "</think>"
)

// Result is one snapshot of the split output.
type Result struct {
	// Visible is the raw text with every complete or in-progress reasoning
	// segment removed. It never contains an unterminated open tag.
	Visible string

	// Reasoning is the concatenation of all reasoning segments seen so far,
	// in order of appearance, including the tail of a still-open segment.
	Reasoning string

	// InsideReasoning reports whether the raw text currently ends inside an
	// unclosed reasoning segment.
	InsideReasoning bool
}

// Splitter extracts reasoning segments from accumulated raw text.
//
// Consume always operates on the entire raw text accumulated so far rather
// than on deltas. Delimiters routinely straddle network chunk boundaries;
// re-scanning the full text sidesteps every boundary case at a cost that is
// irrelevant for chat-sized messages (tens of kilobytes at most).
//
// Known limitation: while the final bytes of a tag are still in flight the
// fragment ("<thi") is not recognizable as a delimiter and is reported as
// visible text for that snapshot. The next Consume call, or at latest the
// one after stream completion, sees the fully formed tag and reclassifies
// it. Nested segments are out of contract; models served here do not emit
// them.
type Splitter struct {
	openTag  string
	closeTag string
}

// NewSplitter creates a splitter with the default <think> delimiters.
func NewSplitter() *Splitter {
	return NewSplitterWithTags(DefaultOpenTag, DefaultCloseTag)
}

// NewSplitterWithTags creates a splitter with custom delimiters.
func NewSplitterWithTags(open, close string) *Splitter {
	if open == "" {
		open = DefaultOpenTag
	}
	if close == "" {
		close = DefaultCloseTag
	}
	return &Splitter{openTag: open, closeTag: close}
}

// Consume splits the accumulated raw text into visible and reasoning parts.
// Safe to call after every delta; for raw inputs that extend one another the
// reasoning output only ever grows.
func (s *Splitter) Consume(raw string) Result {
	var visible, reasoning strings.Builder
	inside := false

	rest := raw
	for {
		open := strings.Index(rest, s.openTag)
		if open < 0 {
			visible.WriteString(rest)
			break
		}

		visible.WriteString(rest[:open])
		rest = rest[open+len(s.openTag):]

		end := strings.Index(rest, s.closeTag)
		if end < 0 {
			// Unmatched open tag: the model is mid-reasoning. Everything to
			// the end of the text belongs to the reasoning stream.
			reasoning.WriteString(rest)
			inside = true
			break
		}

		reasoning.WriteString(rest[:end])
		rest = rest[end+len(s.closeTag):]
	}

	return Result{
		Visible:         visible.String(),
		Reasoning:       reasoning.String(),
		InsideReasoning: inside,
	}
}
