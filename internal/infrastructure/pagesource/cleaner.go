// Package pagesource trims captured page HTML down to something worth
// keeping next to a failed test.
package pagesource

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

type CleanConfig struct {
	TagsToRemove  []string
	AttrsToRemove []string
	// AttrPrefixesToRemove drops every attribute starting with one of these.
	AttrPrefixesToRemove []string
	MaxOutputSize        int
}

var DefaultCleanConfig = CleanConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe", "link", "meta",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority",
	},
	AttrPrefixesToRemove: []string{"on"},
	MaxOutputSize:        256_000,
}

const truncatedMarker = "\n<!-- truncated -->"

// Clean returns the cleaned <body> of rawHTML. Input that cannot be parsed,
// or has no body, is returned unchanged.
func Clean(rawHTML string, cfg *CleanConfig) string {
	if cfg == nil {
		cfg = &DefaultCleanConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	body := findBody(doc)
	if body == nil {
		return rawHTML
	}

	cleanNode(body, cfg)
	return truncate(render(body), cfg.MaxOutputSize)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func cleanNode(n *html.Node, cfg *CleanConfig) {
	if n.Type == html.CommentNode || (n.Type == html.ElementNode && slices.Contains(cfg.TagsToRemove, n.Data)) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	n.Attr = slices.DeleteFunc(n.Attr, func(attr html.Attribute) bool {
		return removeAttr(attr.Key, cfg)
	})

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		cleanNode(c, cfg)
		c = next
	}
}

func removeAttr(key string, cfg *CleanConfig) bool {
	if slices.Contains(cfg.AttrsToRemove, key) {
		return true
	}
	for _, prefix := range cfg.AttrPrefixesToRemove {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func render(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

func truncate(s string, maxSize int) string {
	if maxSize > 0 && len(s) > maxSize {
		return s[:maxSize] + truncatedMarker
	}
	return s
}
