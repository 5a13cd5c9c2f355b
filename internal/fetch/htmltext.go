package fetch

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/textutil"
)

// htmlToText renders an HTML document as readable text, skipping script,
// style, and page-chrome elements.
func htmlToText(body []byte) (string, error) {
	node, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	extractText(node, &b, false)
	return textutil.CompactWhitespace(b.String()), nil
}

func extractText(n *html.Node, b *strings.Builder, inHidden bool) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "header", "footer", "nav":
			inHidden = true
		case "br", "p", "div", "li", "tr":
			b.WriteString("\n")
		}
	}
	if !inHidden && n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, b, inHidden)
	}
}
