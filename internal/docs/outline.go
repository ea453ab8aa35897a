package docs

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Outline lists the h2 and h3 headings of an HTML fragment in document order.
func Outline(fragment string) ([]Heading, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("docs: parse html: %w", err)
	}
	var headings []Heading
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				text := strings.Join(strings.Fields(textContent(n)), " ")
				if text != "" {
					headings = append(headings, Heading{Level: level, ID: attr(n, "id"), Text: text})
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return headings, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h2":
		return 2
	case "h3":
		return 3
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(textContent(child))
	}
	return b.String()
}
