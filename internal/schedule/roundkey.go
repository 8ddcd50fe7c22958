package schedule

import (
	"regexp"
	"strings"
	"unicode"
)

var roundSeparators = regexp.MustCompile(`[,/.]`)

// roundSuffixes are the ordinal markers ("차" and its common typos) that may end a round label.
const roundSuffixes = "차치챠"

// NormalizeRoundKey trims a round label, drops all whitespace and strips
// trailing ordinal markers. It is idempotent.
func NormalizeRoundKey(raw string) string {
	key := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	return strings.TrimRight(key, roundSuffixes)
}

// SplitRoundKeys splits a multi-valued round field on comma, slash or dot and
// returns the distinct normalized keys in order of first appearance.
func SplitRoundKeys(field string) []string {
	segments := roundSeparators.Split(field, -1)
	keys := make([]string, 0, len(segments))
	seen := make(map[string]struct{}, len(segments))
	for _, segment := range segments {
		key := NormalizeRoundKey(segment)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// PrimaryRoundKey is the normalized first segment of field. Milestone rows name
// one canonical round even when the field lists several.
func PrimaryRoundKey(field string) string {
	first := roundSeparators.Split(strings.TrimSpace(field), 2)[0]
	return NormalizeRoundKey(first)
}

// MatchesRound reports whether target names one of the rounds listed in field.
func MatchesRound(target, field string) bool {
	want := NormalizeRoundKey(target)
	if want == "" {
		return false
	}
	for _, key := range SplitRoundKeys(field) {
		if key == want {
			return true
		}
	}
	return false
}
