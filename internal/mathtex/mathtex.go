// Package mathtex rewrites recognized LaTeX formulas into a plain math
// notation that renders without a TeX engine.
package mathtex

import (
	"regexp"
	"strings"
)

// StripDelimiters removes inline and display math delimiters ($ and $$)
// around a formula, tolerating a missing opening or closing sign.
func StripDelimiters(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case len(s) >= 4 && strings.HasPrefix(s, "$$") && strings.HasSuffix(s, "$$"):
		s = strings.TrimSpace(s[2 : len(s)-2])
	case len(s) >= 2 && strings.HasPrefix(s, "$") && strings.HasSuffix(s, "$"):
		s = strings.TrimSpace(s[1 : len(s)-1])
	case strings.HasPrefix(s, "$"):
		s = strings.TrimSpace(s[1:])
	}
	if strings.HasSuffix(s, "$") {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	return s
}

var (
	commandToken = regexp.MustCompile(`\\[a-zA-Z]+`)
	simpleFrac   = regexp.MustCompile(`\(([a-zA-Z0-9]+)\)/\(([a-zA-Z0-9]+)\)`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// \left and \right sizing prefixes vanish; the delimiter itself stays,
// except the invisible "." form which disappears entirely.
var delimReplacer = strings.NewReplacer(
	`\left(`, "(", `\right)`, ")",
	`\left[`, "[", `\right]`, "]",
	`\left\{`, "{", `\right\}`, "}",
	`\left.`, "", `\right.`, "",
	`\left|`, "|", `\right|`, "|",
)

var commandSymbols = map[string]string{
	`\cdot`:    "*",
	`\times`:   "*",
	`\div`:     "/",
	`\pm`:      "±",
	`\mp`:      "∓",
	`\leq`:     "≤",
	`\geq`:     "≥",
	`\neq`:     "≠",
	`\le`:      "≤",
	`\ge`:      "≥",
	`\pi`:      "π",
	`\infty`:   "∞",
	`\alpha`:   "α",
	`\beta`:    "β",
	`\gamma`:   "γ",
	`\theta`:   "θ",
	`\lambda`:  "λ",
	`\sigma`:   "σ",
	`\delta`:   "δ",
	`\epsilon`: "ε",
	`\phi`:     "φ",
	`\omega`:   "ω",
	`\sum`:     "Σ",
	`\prod`:    "Π",
	`\int`:     "∫",
}

// ToPlainMath converts a LaTeX formula to plain math notation: fractions to
// (a)/(b), roots to sqrt(x) and root(x,n), braced scripts to parenthesized
// ones, and known commands to their unicode symbols. Unrecognized commands
// and leftover braces are dropped.
func ToPlainMath(latex string) string {
	if latex == "" {
		return ""
	}
	s := processFrac(latex)
	s = processSqrt(s)
	s = processScript(s, "^")
	s = processScript(s, "_")
	s = delimReplacer.Replace(s)
	s = commandToken.ReplaceAllStringFunc(s, func(cmd string) string {
		return commandSymbols[cmd]
	})
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	s = simpleFrac.ReplaceAllString(s, "$1/$2")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// balancedBraces extracts the content of a brace group starting at start.
// It returns the content, the index just past the closing brace, and whether
// a balanced group was found.
func balancedBraces(s string, start int) (string, int, bool) {
	if start >= len(s) || s[start] != '{' {
		return "", start, false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start+1 : i], i + 1, true
			}
		}
	}
	return "", start, false
}

func skipSpaces(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	return pos
}

func processFrac(s string) string {
	for {
		idx := strings.Index(s, `\frac`)
		if idx == -1 {
			return s
		}
		pos := skipSpaces(s, idx+len(`\frac`))
		num, next, ok := balancedBraces(s, pos)
		if !ok {
			return s
		}
		pos = skipSpaces(s, next)
		den, end, ok := balancedBraces(s, pos)
		if !ok {
			return s
		}
		s = s[:idx] + "(" + processFrac(num) + ")/(" + processFrac(den) + ")" + s[end:]
	}
}

func processSqrt(s string) string {
	for {
		idx := strings.Index(s, `\sqrt`)
		if idx == -1 {
			return s
		}
		pos := skipSpaces(s, idx+len(`\sqrt`))
		index := ""
		hasIndex := false
		if pos < len(s) && s[pos] == '[' {
			if close := strings.IndexByte(s[pos:], ']'); close != -1 {
				index = s[pos+1 : pos+close]
				hasIndex = true
				pos += close + 1
			}
		}
		pos = skipSpaces(s, pos)
		arg, end, ok := balancedBraces(s, pos)
		if !ok {
			return s
		}
		arg = processFrac(processSqrt(arg))
		if hasIndex {
			s = s[:idx] + "root(" + arg + "," + index + ")" + s[end:]
		} else {
			s = s[:idx] + "sqrt(" + arg + ")" + s[end:]
		}
	}
}

// processScript rewrites cmd{...} as cmd(...) for ^ and _ scripts.
func processScript(s, cmd string) string {
	for {
		idx := strings.Index(s, cmd+"{")
		if idx == -1 {
			return s
		}
		arg, end, ok := balancedBraces(s, idx+len(cmd))
		if !ok {
			return s
		}
		s = s[:idx] + cmd + "(" + arg + ")" + s[end:]
	}
}
