package draft

import (
	"regexp"
	"strings"
)

var (
	stylePattern    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	scriptPattern   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	tagPattern      = regexp.MustCompile(`<[^>]+>`)
	blankRunPattern = regexp.MustCompile(`\n\s*\n`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// ReduceHTML turns an HTML body into plain text: style and script
// blocks go first so their contents cannot leak into the text, then
// the remaining tags, then the small fixed entity set is decoded and
// blank-line runs are collapsed.
func ReduceHTML(html string) string {
	if html == "" {
		return ""
	}
	text := stylePattern.ReplaceAllString(html, "")
	text = scriptPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
