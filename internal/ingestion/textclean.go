package ingestion

import (
	"regexp"
	"strings"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	htmlTagRe     = regexp.MustCompile(`(?s)<[^>]+>`)

	sigDelimiterRe = regexp.MustCompile(`(?ms)^-- ?$.*`)
	sigDashLineRe  = regexp.MustCompile(`(?ms)^-{3,}.*`)
	sigRegardsRe   = regexp.MustCompile(`(?ims)^best (regards|wishes),?.*`)
	sigSentFromRe  = regexp.MustCompile(`(?ims)^sent from .*`)
	quoteLineRe    = regexp.MustCompile(`^>+`)
	quoteOnWroteRe = regexp.MustCompile(`^On .*wrote:`)
	quoteFromHdrRe = regexp.MustCompile(`^From:.*\[.*\]$`)
)

var htmlEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

// StripHTML reduces an HTML body to plain text: script and style blocks
// are dropped wholesale, remaining tags removed, and a fixed set of
// entities decoded.
func StripHTML(html string) string {
	text := scriptBlockRe.ReplaceAllString(html, "")
	text = styleBlockRe.ReplaceAllString(text, "")
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = htmlEntities.Replace(text)
	return strings.TrimSpace(text)
}

// StripSignature removes trailing signature blocks: the "-- " delimiter,
// a line of three or more dashes, a "Best regards/wishes," closing, or a
// "Sent from ..." line, each through end of text. Removals apply in that
// order.
func StripSignature(body string) string {
	body = sigDelimiterRe.ReplaceAllString(body, "")
	body = sigDashLineRe.ReplaceAllString(body, "")
	body = sigRegardsRe.ReplaceAllString(body, "")
	body = sigSentFromRe.ReplaceAllString(body, "")
	return body
}

// TruncateQuotedReply cuts the body at the first quoted-reply marker: a
// line of leading ">" characters, an "On ... wrote:" line, or a
// forwarded "From: ... [...]" header line. Bodies without a marker pass
// through unchanged.
func TruncateQuotedReply(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		if quoteLineRe.MatchString(trimmed) || quoteOnWroteRe.MatchString(trimmed) || quoteFromHdrRe.MatchString(trimmed) {
			return strings.Join(lines[:i], "\n")
		}
	}
	return body
}
