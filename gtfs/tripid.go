package gtfs

import (
	"strings"
	"unicode"
)

// Trip identifiers are the join key between the static schedule and the
// realtime feed, and the two sources routinely spell the same logical trip
// differently: namespace prefixes ("agency:", "trip:", "1:"), "<digits>#"
// runs, stray punctuation, separator and casing differences. Normalize reduces
// a raw identifier to a canonical form; Variants enumerates the plausible
// alternate spellings used when an exact lookup misses.

// Normalize reduces raw to its canonical form. The second return is false when
// nothing identifier-like survives the reduction.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	for {
		if rest, ok := stripNamespacePrefix(s); ok {
			s = rest
			continue
		}
		if rest, ok := stripDigitsHashRun(s); ok {
			s = rest
			continue
		}
		break
	}
	s = strings.Map(keepIdentifierRune, s)
	s = strings.Trim(s, "-_.")
	s = strings.ToLower(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// NormalizeOrEmpty is Normalize for contexts that need a non-nil key; an
// identifier that reduces to nothing becomes the empty string.
func NormalizeOrEmpty(raw string) string {
	s, _ := Normalize(raw)
	return s
}

// Variants returns candidate canonical spellings of raw, de-duplicated and in
// generation order. The canonical form (or, when normalization yields nothing,
// a lowercased trimmed fallback) always comes first, followed by separator
// rewrites. Callers scan the slice front to back and take the first index hit.
//
// Known limitation: when two distinct trips are reachable through different
// variants of the same input, the earliest generated variant wins. There is no
// ambiguity detection.
func Variants(raw string) []string {
	canon, ok := Normalize(raw)
	if !ok {
		canon = strings.ToLower(strings.TrimSpace(raw))
	}

	var out []string
	seen := map[string]struct{}{}
	add := func(v string) {
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	add(canon)
	add(strings.Map(dropSeparatorRune, canon))
	if strings.ContainsRune(canon, '-') {
		add(strings.ReplaceAll(canon, "-", "_"))
	}
	if strings.ContainsRune(canon, '_') {
		add(strings.ReplaceAll(canon, "_", "-"))
	}
	if strings.ContainsRune(canon, '.') {
		add(strings.ReplaceAll(canon, ".", "-"))
		add(strings.ReplaceAll(canon, ".", "_"))
		add(strings.ReplaceAll(canon, ".", ""))
	}
	return out
}

// stripNamespacePrefix removes one leading namespace qualifier: "agency:" or
// "trip:" in any casing, or any other prefix whose colon falls within the
// first six characters.
func stripNamespacePrefix(s string) (string, bool) {
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "agency:") {
		return s[len("agency:"):], true
	}
	if strings.HasPrefix(lower, "trip:") {
		return s[len("trip:"):], true
	}
	if i := strings.IndexByte(s, ':'); i >= 0 && i < 6 {
		return s[i+1:], true
	}
	return s, false
}

// stripDigitsHashRun removes one leading "<digits>#" run, e.g. "0#TEST" -> "TEST".
func stripDigitsHashRun(s string) (string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '#' {
		return s, false
	}
	return s[i+1:], true
}

func keepIdentifierRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
		return r
	}
	return -1
}

func dropSeparatorRune(r rune) rune {
	if r == '-' || r == '_' || r == '.' {
		return -1
	}
	return r
}
