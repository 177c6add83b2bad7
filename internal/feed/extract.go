package feed

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	levelLine     = regexp.MustCompile(`^\s*\d{3,}`)
	separatorLine = regexp.MustCompile(`^\s*-{3,}`)
)

// attachmentClasses mark anchors that point at an uploaded level file.
var attachmentClasses = []string{"mighty-file", "mighty-file-attachment-link"}

// ExtractLevelText flattens an HTML post body to text and keeps only the
// lines that look like levels (3+ leading digits) or section separators
// (3+ dashes). Returns "" when nothing qualifies.
func ExtractLevelText(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var chunks []string
	collectText(doc, &chunks)

	var kept []string
	for _, chunk := range chunks {
		for _, line := range strings.Split(chunk, "\n") {
			line = strings.TrimSpace(line)
			if levelLine.MatchString(line) || separatorLine.MatchString(line) {
				kept = append(kept, line)
			}
		}
	}
	return strings.Join(kept, "\n")
}

func collectText(n *html.Node, out *[]string) {
	switch n.Type {
	case html.TextNode:
		*out = append(*out, n.Data)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}

// AttachmentLink returns the href of the first attachment anchor in the body.
func AttachmentLink(body string) string {
	if body == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}
	if a := findAttachment(doc); a != nil {
		return getAttr(a, "href")
	}
	return ""
}

func findAttachment(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "a" && hasAnyClass(getAttr(n, "class"), attachmentClasses) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findAttachment(c); found != nil {
			return found
		}
	}
	return nil
}

func hasAnyClass(attr string, want []string) bool {
	for _, cls := range strings.Fields(attr) {
		for _, w := range want {
			if cls == w {
				return true
			}
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
