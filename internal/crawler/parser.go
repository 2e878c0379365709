package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/vscan/internal/model"
)

// Parser extracts link and title information from HTML content.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on error pages
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
//  4. Standard library extension, well-maintained
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// ParseResult contains the information extracted from an HTML page.
//
// Design decision: We return a result struct rather than multiple methods
// because:
//  1. Single parsing pass is more efficient
//  2. Related data can be collected together
//  3. Caller can choose what to use
type ParseResult struct {
	// Title is the page title from <title> tag. Framework error pages
	// often carry telltale titles, so this feeds detection too.
	Title string

	// Anchors contains all discovered anchor elements with resolved URLs.
	Anchors []model.Element

	// Links contains all discovered URLs (href attributes), resolved.
	Links []string

	// InternalLinks are links on the same host as the page.
	// These are the crawl candidates.
	InternalLinks []string

	// ExternalLinks are links pointing to a different host.
	ExternalLinks []string
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and extracts the title and links.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Anchors:       make([]model.Element, 0),
		Links:         make([]string, 0),
		InternalLinks: make([]string, 0),
		ExternalLinks: make([]string, 0),
	}

	// Walk the DOM tree
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			p.processElement(n, result)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return result, nil
}

// processElement handles HTML element nodes.
func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	switch n.Data {
	case "title":
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		href := getAttr(n, "href")
		if href == "" {
			return
		}
		resolved := p.resolveURL(href)
		if resolved == "" {
			return
		}
		result.Links = append(result.Links, resolved)
		result.Anchors = append(result.Anchors, model.Element{
			Source: resolved,
			Text:   anchorText(n),
			Rel:    getAttr(n, "rel"),
		})
		p.classifyLink(resolved, result)
	}
}

// resolveURL resolves a relative URL against the base URL.
//
// Design decision: We resolve URLs rather than storing them as-is because:
//  1. Makes deduplication easier
//  2. Allows proper link classification
//  3. Reduces ambiguity in results
func (p *Parser) resolveURL(href string) string {
	if href == "" {
		return ""
	}

	// Handle special cases
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		href == "#" {
		return ""
	}

	// Parse and resolve
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := p.baseURL.ResolveReference(u)
	return resolved.String()
}

// classifyLink categorizes a link as internal or external to the page host.
func (p *Parser) classifyLink(link string, result *ParseResult) {
	u, err := url.Parse(link)
	if err != nil {
		return
	}

	// Same host (including port for non-standard ports) means internal
	if strings.EqualFold(u.Host, p.baseURL.Host) || strings.EqualFold(u.Hostname(), p.baseURL.Hostname()) {
		result.InternalLinks = append(result.InternalLinks, link)
		return
	}

	if u.Host != "" {
		result.ExternalLinks = append(result.ExternalLinks, link)
		return
	}

	// Relative link - shouldn't happen after resolveURL
	result.InternalLinks = append(result.InternalLinks, link)
}

// anchorText returns the visible text of an anchor with whitespace collapsed.
func anchorText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
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
