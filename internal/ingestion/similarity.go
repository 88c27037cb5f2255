package ingestion

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeSubject case-folds, collapses whitespace runs, and trims a
// subject for comparison.
func NormalizeSubject(subject string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ToLower(subject), " "))
}

// NormalizeSender lower-cases an address and strips any +suffix tag from
// the local part, so bob+support@x.com and bob@x.com compare equal.
func NormalizeSender(address string) string {
	addr := strings.ToLower(SenderAddress(address))
	at := strings.Index(addr, "@")
	if at < 0 {
		return addr
	}
	local, domainPart := addr[:at], addr[at:]
	if plus := strings.Index(local, "+"); plus >= 0 {
		local = local[:plus]
	}
	return local + domainPart
}

// SubjectSimilarity scores two subjects in [0,1]. Equal normalized forms
// score 1.0; substring containment scores 0.9; otherwise the score is
// the fraction of the shorter subject's characters found anywhere in the
// longer one. The overlap branch is a character-bag ratio, not edit
// distance; callers only compare the score against a threshold.
func SubjectSimilarity(a, b string) float64 {
	na := NormalizeSubject(a)
	nb := NormalizeSubject(b)
	if na == nb {
		return 1.0
	}

	longer, shorter := na, nb
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	if strings.Contains(longer, shorter) {
		return 0.9
	}

	matches := 0
	for _, r := range shorter {
		if strings.ContainsRune(longer, r) {
			matches++
		}
	}
	return float64(matches) / float64(len([]rune(longer)))
}
