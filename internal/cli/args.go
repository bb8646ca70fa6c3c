// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Unified argument parsing for elastui CLI commands.
//
// Every command shares one parser so flags behave the same everywhere:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: arguments without flags
//   - Subcommands: first positional argument
package cli

import (
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser provides unified argument parsing for CLI commands.
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
	raw        []string
}

// NewArgParser creates a new argument parser from raw arguments.
//
// Example:
//
//	args := NewArgParser([]string{"create", "logs", "--shards", "3", "--json"})
//	args.Subcommand()     // "create"
//	args.Positional(1)    // "logs"
//	args.Flag("shards")   // "3"
//	args.BoolFlag("json") // true
func NewArgParser(raw []string) *ArgParser {
	parser := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
		raw:       raw,
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if strings.HasPrefix(arg, "-") {
			// --flag=value
			if strings.Contains(arg, "=") {
				parts := strings.SplitN(arg, "=", 2)
				name := strings.TrimLeft(parts[0], "-")
				value := parts[1]
				if value == "true" || value == "false" {
					parser.boolFlags[name] = value == "true"
				} else {
					parser.flags[name] = value
				}
				i++
				continue
			}

			name := strings.TrimLeft(arg, "-")
			if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
				parser.flags[name] = raw[i+1]
				i += 2
			} else {
				parser.boolFlags[name] = true
				i++
			}
		} else {
			parser.positional = append(parser.positional, arg)
			i++
		}
	}

	if len(parser.positional) > 0 {
		parser.subcommand = parser.positional[0]
	}
	return parser
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Positional returns the positional argument at index, or "".
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// Positionals returns all positional arguments.
func (p *ArgParser) Positionals() []string {
	return p.positional
}

// Flag returns a string flag value, checking each name in order.
func (p *ArgParser) Flag(names ...string) string {
	for _, name := range names {
		if v, ok := p.flags[name]; ok {
			return v
		}
	}
	return ""
}

// IntFlag returns an integer flag value, or def when absent or malformed.
func (p *ArgParser) IntFlag(def int, names ...string) int {
	v := p.Flag(names...)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// BoolFlag reports whether a boolean flag was set, checking each name.
func (p *ArgParser) BoolFlag(names ...string) bool {
	for _, name := range names {
		if v, ok := p.boolFlags[name]; ok {
			return v
		}
	}
	return false
}

// Raw returns the original unparsed arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}
