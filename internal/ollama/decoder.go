// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// LINE DECODER
// =============================================================================

// LineDecoder reassembles newline-delimited JSON records from raw chunks of
// a streaming response body. Network reads do not align with record
// boundaries, so the decoder buffers the trailing partial line until the
// terminating newline arrives.
//
// Malformed lines are dropped silently: a single bad record must never abort
// an otherwise healthy stream. A record is emitted exactly once.
type LineDecoder struct {
	// buf holds the not-yet-terminated tail of the stream.
	buf strings.Builder

	dropped int
}

// NewLineDecoder creates an empty decoder.
func NewLineDecoder() *LineDecoder {
	return &LineDecoder{}
}

// Feed appends a chunk of bytes to the decoder and returns every complete
// record that became parseable. The final fragment without a newline is
// retained for the next call.
func (d *LineDecoder) Feed(chunk []byte) []GenerateResponse {
	d.buf.Write(chunk)

	text := d.buf.String()
	lines := strings.Split(text, "\n")

	// The last element is the unterminated tail (possibly empty when the
	// chunk ended exactly on a newline). It becomes the new buffer.
	tail := lines[len(lines)-1]
	lines = lines[:len(lines)-1]

	d.buf.Reset()
	d.buf.WriteString(tail)

	return d.parseLines(lines)
}

// Flush drains the remaining buffered fragment at end of body. A cooperative
// server terminates every record with a newline, but the final record of a
// non-streaming response may arrive without one.
func (d *LineDecoder) Flush() []GenerateResponse {
	if d.buf.Len() == 0 {
		return nil
	}
	line := d.buf.String()
	d.buf.Reset()
	return d.parseLines([]string{line})
}

// Dropped reports how many malformed lines were skipped.
func (d *LineDecoder) Dropped() int {
	return d.dropped
}

// parseLines trims, filters, and unmarshals complete lines.
func (d *LineDecoder) parseLines(lines []string) []GenerateResponse {
	var records []GenerateResponse
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec GenerateResponse
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			// Skip malformed lines
			d.dropped++
			continue
		}
		records = append(records, rec)
	}
	return records
}
