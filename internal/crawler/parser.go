package crawler

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// PageInfo holds what the crawl engine needs from a parsed HTML page:
// the raw anchor targets to feed the admission policy, and the title
// for crawl records.
type PageInfo struct {
	// Title is the text of the first <title> element, trimmed.
	Title string

	// Hrefs contains the href attribute of every anchor element, in
	// document order, unresolved and unfiltered. Anchors without an
	// href attribute are skipped silently.
	Hrefs []string
}

// ExtractLinks parses an HTML document and collects anchor targets.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because it correctly handles the malformed HTML common on real sites
// and never panics on truncated input. Non-anchor elements (scripts,
// images, stylesheets) are ignored: only <a href> can lead to a page
// that belongs in a sitemap.
func ExtractLinks(r io.Reader) (*PageInfo, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	info := &PageInfo{Hrefs: make([]string, 0)}
	var foundTitle bool

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href := getAttr(n, "href"); href != "" {
					info.Hrefs = append(info.Hrefs, href)
				}
			case "title":
				if !foundTitle && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					info.Title = strings.TrimSpace(n.FirstChild.Data)
					foundTitle = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return info, nil
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
