// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable TUI widgets for elastui.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// =============================================================================
// CODE BLOCK HIGHLIGHTING
// =============================================================================

// HighlightCode renders source code with ANSI syntax highlighting. The
// language hint comes from the fence info string; unknown languages fall
// back to lexer analysis, then plain text.
func HighlightCode(source, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return source
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var b strings.Builder
	if err := formatter.Format(&b, style, iterator); err != nil {
		return source
	}
	return b.String()
}

// HighlightFencedBlocks highlights every fenced code block in a Markdown
// transcript in place, leaving the surrounding text untouched. Queries the
// assistant produces are usually ```json blocks, so this is the common path.
func HighlightFencedBlocks(text string) string {
	lines := strings.Split(text, "\n")
	var out []string

	var inBlock bool
	var lang string
	var block []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				out = append(out, strings.TrimRight(HighlightCode(strings.Join(block, "\n"), lang), "\n"))
				block = nil
				inBlock = false
			} else {
				inBlock = true
				lang = strings.TrimPrefix(trimmed, "```")
			}
			continue
		}
		if inBlock {
			block = append(block, line)
		} else {
			out = append(out, line)
		}
	}

	// Unterminated fence: keep the partial block verbatim.
	if inBlock {
		out = append(out, "```"+lang)
		out = append(out, block...)
	}

	return strings.Join(out, "\n")
}
