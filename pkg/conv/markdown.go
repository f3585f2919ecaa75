// Package conv renders model-produced Markdown into sanitized HTML for
// web clients.
package conv

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.Tables | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	webPolicy  = bluemonday.NewPolicy()
)

func init() {
	webPolicy.AllowElements(
		"h1", "h2", "h3", "h4", "p", "br", "hr",
		"b", "strong", "i", "em", "u", "s", "del", "sup", "sub",
		"ul", "ol", "li",
		"table", "thead", "tbody", "tr", "th", "td",
		"code", "pre", "blockquote",
	)
	webPolicy.AllowAttrs("href", "target", "rel").OnElements("a")
	webPolicy.AllowAttrs("class").OnElements("code")
	webPolicy.RequireNoFollowOnLinks(true)
}

// MarkdownToHTML renders Markdown and strips everything outside the
// allowed element set. Model output is untrusted input.
func MarkdownToHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(webPolicy.SanitizeBytes(unsafeHTML))
}
