package about

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is one reference found in the rendered about page.
type Link struct {
	URL      string `json:"url"`
	Text     string `json:"text"`
	Tag      string `json:"tag"`
	External bool   `json:"external"`
}

// extractLinks walks rendered HTML and collects anchor, image, script and
// stylesheet references.
func extractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	links := []Link{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if link, ok := elementLink(n); ok {
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func elementLink(n *html.Node) (Link, bool) {
	var ref, text string
	switch n.Data {
	case "a":
		ref = attrValue(n, "href")
		text = nodeText(n)
	case "img":
		ref = attrValue(n, "src")
		text = attrValue(n, "alt")
	case "script":
		ref = attrValue(n, "src")
	case "link":
		ref = attrValue(n, "href")
		text = attrValue(n, "rel")
	default:
		return Link{}, false
	}
	if ref == "" {
		return Link{}, false
	}
	return Link{URL: ref, Text: text, Tag: n.Data, External: isExternal(ref)}, true
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return strings.TrimSpace(b.String())
}

func isExternal(ref string) bool {
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "mailto:") || strings.HasPrefix(ref, "tel:") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
