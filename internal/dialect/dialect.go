// Package dialect implements SafeShell's shell-dialect capability model
// (spec §4.7): the Shell enum, per-dialect capability table, shebang/
// directive detection, and the capability-check helpers consulted by the
// lexer and grammar parser through the diagnostics path.
package dialect

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jchip/safeshell/internal/diag"
	"github.com/jchip/safeshell/pkg/token"
)

// Shell enumerates the supported shell dialects.
type Shell int

const (
	Bash Shell = iota
	Sh
	Dash
	Ksh
	Zsh
)

// String returns the canonical lowercase dialect name.
func (s Shell) String() string {
	switch s {
	case Bash:
		return "bash"
	case Sh:
		return "sh"
	case Dash:
		return "dash"
	case Ksh:
		return "ksh"
	case Zsh:
		return "zsh"
	default:
		return "unknown"
	}
}

// Capabilities is the boolean feature table for one dialect.
type Capabilities struct {
	Arrays               bool
	AssociativeArrays    bool
	ExtendedGlob         bool
	ProcessSubstitution  bool
	DoubleBracketTest    bool
	Coproc               bool
	Nameref              bool
	AnsiCQuoting         bool // $'...'
	LocaleQuoting        bool // $"..."
	FdVariables          bool // {fd}>file
	PipeStderr           bool // |&
	AppendStderr         bool // &>>
}

// capabilityTable is the per-dialect capability record, built from the
// known deviations in spec §4.7: sh has none; dash has only ANSI-C
// quoting; zsh has everything except nameref; ksh has everything except
// fd-variables, pipe-stderr and append-stderr. bash is the full-featured
// baseline.
var capabilityTable = map[Shell]Capabilities{
	Bash: {
		Arrays: true, AssociativeArrays: true, ExtendedGlob: true,
		ProcessSubstitution: true, DoubleBracketTest: true, Coproc: true,
		Nameref: true, AnsiCQuoting: true, LocaleQuoting: true,
		FdVariables: true, PipeStderr: true, AppendStderr: true,
	},
	Sh: {},
	Dash: {
		AnsiCQuoting: true,
	},
	Ksh: {
		Arrays: true, AssociativeArrays: true, ExtendedGlob: true,
		ProcessSubstitution: true, DoubleBracketTest: true, Coproc: true,
		Nameref: true, AnsiCQuoting: true, LocaleQuoting: true,
		FdVariables: false, PipeStderr: false, AppendStderr: false,
	},
	Zsh: {
		Arrays: true, AssociativeArrays: true, ExtendedGlob: true,
		ProcessSubstitution: true, DoubleBracketTest: true, Coproc: true,
		Nameref: false, AnsiCQuoting: true, LocaleQuoting: true,
		FdVariables: true, PipeStderr: true, AppendStderr: true,
	},
}

// CapabilitiesFor returns the capability table for a dialect.
func CapabilitiesFor(s Shell) Capabilities {
	return capabilityTable[s]
}

// featureDescriptions gives a human-readable description for checkFeature's
// warning message, keyed by the same short names used in Capabilities'
// field names (lower-cased, e.g. "fdvariables").
var featureDescriptions = map[string]string{
	"arrays":              "indexed arrays",
	"associativearrays":   "associative arrays",
	"extendedglob":        "extended globbing (extglob)",
	"processsubstitution": "process substitution",
	"doublebrackettest":   "the [[ ]] test command",
	"coproc":              "coproc",
	"nameref":             "nameref (declare -n)",
	"ansicquoting":        "$'...' ANSI-C quoting",
	"localequoting":       `$"..." locale quoting`,
	"fdvariables":         "{fd}>file descriptor variables",
	"pipestderr":          "|& stderr-merging pipes",
	"appendstderr":        "&>> stderr-append redirection",
}

var foldCaser = cases.Fold()

// normalizeName lowercases and strips non-alphanumeric characters, used by
// ParseShell to accept "Bash", "BASH", "ksh-93", "/bin/bash" basenames and
// similar variant spellings uniformly.
func normalizeName(s string) string {
	s = foldCaser.String(s)
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var nameAliases = map[string]Shell{
	"bash":  Bash,
	"sh":    Sh,
	"dash":  Dash,
	"ksh":   Ksh,
	"ksh93": Ksh,
	"mksh":  Ksh,
	"zsh":   Zsh,
}

// ParseShell accepts a basename or absolute path (e.g. "bash", "/bin/bash",
// "ksh93", "mksh") and returns the matching Shell, normalizing case and
// non-alphanumeric characters first. Returns (Bash, false) when unrecognized
// — callers that need to distinguish "unrecognized" from "bash" should
// check the bool.
func ParseShell(name string) (Shell, bool) {
	base := filepath.Base(name)
	key := normalizeName(base)
	s, ok := nameAliases[key]
	if !ok {
		return Bash, false
	}
	return s, true
}

var shebangDirectRe = regexp.MustCompile(`^#!\s*(\S+)`)
var shebangEnvRe = regexp.MustCompile(`^#!\s*\S*/env\s+(.*)$`)

// DetectShellFromShebang parses a `#!/bin/bash` or
// `#!/usr/bin/env [flags...] bash` shebang line and returns the dialect.
func DetectShellFromShebang(line string) (Shell, bool) {
	line = strings.TrimRight(line, "\r\n")
	if m := shebangEnvRe.FindStringSubmatch(line); m != nil {
		fields := strings.Fields(m[1])
		for _, f := range fields {
			if strings.HasPrefix(f, "-") {
				continue
			}
			return ParseShell(f)
		}
		return Bash, false
	}
	if m := shebangDirectRe.FindStringSubmatch(line); m != nil {
		return ParseShell(m[1])
	}
	return Bash, false
}

var directiveRe = regexp.MustCompile(`(?i)^\s*#\s*(shell|shelltype|safesh-shell)\s*:\s*(\S+)`)

// DetectShellFromDirective matches a `# shell: name` /
// `# shelltype: name` / `# safesh-shell: name` comment directive,
// case-insensitively.
func DetectShellFromDirective(line string) (Shell, bool) {
	m := directiveRe.FindStringSubmatch(line)
	if m == nil {
		return Bash, false
	}
	return ParseShell(m[2])
}

// DetectShell scans the first maxLines lines of content, preferring a
// shebang on line 1, then a directive comment among the remaining lines.
// Returns false when neither is present.
func DetectShell(content string, maxLines int) (Shell, bool) {
	if maxLines <= 0 {
		maxLines = 10
	}
	lines := strings.SplitN(content, "\n", maxLines+1)
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		if s, ok := DetectShellFromShebang(lines[0]); ok {
			return s, true
		}
	}
	limit := len(lines)
	if limit > maxLines {
		limit = maxLines
	}
	for i := 0; i < limit; i++ {
		if s, ok := DetectShellFromDirective(lines[i]); ok {
			return s, true
		}
	}
	return Bash, false
}

// CheckFeature consults the dialect's capability table for the named
// feature (case-insensitive Capabilities field name, e.g. "FdVariables" or
// "fdvariables"). When unsupported and a collector is provided, emits an
// SSH_3001 compatibility warning. Returns whether the feature is supported.
func CheckFeature(shell Shell, feature string, span token.Span, c *diag.Collector) bool {
	supported := hasCapability(shell, feature)
	if !supported && c != nil {
		desc := featureDescriptions[normalizeName(feature)]
		if desc == "" {
			desc = feature
		}
		diag.AcceptWithCompatibilityCheck(c, struct{}{}, supported, desc, span)
	}
	return supported
}

// RequireFeature panics with a *FeatureError instead of returning a bool,
// for callers where a missing capability aborts rather than merely warns.
// The grammar parser does not call it; it uses CheckFeature.
func RequireFeature(shell Shell, feature string, span token.Span) {
	if !hasCapability(shell, feature) {
		desc := featureDescriptions[normalizeName(feature)]
		if desc == "" {
			desc = feature
		}
		panic(&FeatureError{Shell: shell, Feature: desc, Span: span})
	}
}

// FeatureError is raised by RequireFeature.
type FeatureError struct {
	Shell   Shell
	Feature string
	Span    token.Span
}

func (e *FeatureError) Error() string {
	return e.Shell.String() + " does not support " + e.Feature + " at " + e.Span.Start.String()
}

func hasCapability(shell Shell, feature string) bool {
	caps := capabilityTable[shell]
	switch normalizeName(feature) {
	case "arrays":
		return caps.Arrays
	case "associativearrays":
		return caps.AssociativeArrays
	case "extendedglob":
		return caps.ExtendedGlob
	case "processsubstitution":
		return caps.ProcessSubstitution
	case "doublebrackettest":
		return caps.DoubleBracketTest
	case "coproc":
		return caps.Coproc
	case "nameref":
		return caps.Nameref
	case "ansicquoting":
		return caps.AnsiCQuoting
	case "localequoting":
		return caps.LocaleQuoting
	case "fdvariables":
		return caps.FdVariables
	case "pipestderr":
		return caps.PipeStderr
	case "appendstderr":
		return caps.AppendStderr
	default:
		return false
	}
}
