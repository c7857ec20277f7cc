package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const regexPrefix = "re:"

// A red-flag hit is waived only in the "no US citizenship required" shape:
// "no" or "without" right before the flagged phrase, optionally with one
// qualifier word in between, and a requirement word after it in the same clause.
var (
	waiverNegations = map[string]bool{"no": true, "without": true}
	waiverRequired  = map[string]bool{"required": true, "needed": true, "necessary": true}
)

// Pattern is a red-flag matcher: a lowercase substring, or a regex when the
// configured value starts with "re:".
type Pattern struct {
	raw    string
	substr string
	re     *regexp.Regexp
}

// ParsePattern compiles a red-flag pattern. Regexes are compiled case-insensitive.
func ParsePattern(raw string) (Pattern, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Pattern{}, fmt.Errorf("empty red flag pattern")
	}
	if strings.HasPrefix(trimmed, regexPrefix) {
		re, err := regexp.Compile("(?i)" + strings.TrimPrefix(trimmed, regexPrefix))
		if err != nil {
			return Pattern{}, fmt.Errorf("compile red flag %q: %w", raw, err)
		}
		return Pattern{raw: trimmed, re: re}, nil
	}
	return Pattern{raw: trimmed, substr: strings.ToLower(trimmed)}, nil
}

func (p Pattern) String() string { return p.raw }

// Match reports whether the lowercased text contains the pattern. Substring
// hits phrased as a waived requirement ("no US citizenship required") are ignored.
func (p Pattern) Match(text string) bool {
	if p.re != nil {
		return p.re.MatchString(text)
	}
	if p.substr == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], p.substr)
		if i < 0 {
			return false
		}
		at := offset + i
		end := at + len(p.substr)
		if !waived(text[:at], text[end:]) {
			return true
		}
		offset = end
	}
	return false
}

// waived reports whether a hit between before and after states that the
// flagged thing is not required.
func waived(before, after string) bool {
	for i := len(before) - 1; i >= 0; i-- {
		if clauseBreak(before, i) {
			before = before[i+1:]
			break
		}
	}
	for i := 0; i < len(after); i++ {
		if clauseBreak(after, i) {
			after = after[:i]
			break
		}
	}

	prev := words(before)
	negatedHit := false
	for back := 1; back <= 2 && back <= len(prev); back++ {
		if waiverNegations[prev[len(prev)-back]] {
			negatedHit = true
			break
		}
	}
	if !negatedHit {
		return false
	}
	for _, w := range words(after) {
		if waiverRequired[w] {
			return true
		}
	}
	return false
}

// clauseBreak reports whether s[i] ends a clause. A period after a single
// letter is an abbreviation such as "u.s." and does not.
func clauseBreak(s string, i int) bool {
	switch s[i] {
	case ',', ';', ':', '!', '?', '\n':
		return true
	case '.':
		singleLetter := i >= 1 && isASCIILetter(s[i-1]) && (i < 2 || !isASCIILetter(s[i-2]))
		return !singleLetter
	}
	return false
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// words splits on anything but letters, digits and dots, so "u.s." stays one word.
func words(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "."); f != "" {
			out = append(out, f)
		}
	}
	return out
}
