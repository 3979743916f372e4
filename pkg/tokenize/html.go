/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: html.go
Description: HTML token sources built on goquery. Documents are parsed once and
read either as the sequence of element names or as the words of their text.
*/

package tokenize

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLTags yields the element names of a document in document order. The
// parser adds html, head and body when the input omits them.
type HTMLTags struct{}

func (HTMLTags) Name() string        { return "html-tags" }
func (HTMLTags) Description() string { return "element names of an HTML document" }

func (HTMLTags) Tokenize(r io.Reader) ([]string, error) {
	doc, err := parseHTML(r)
	if err != nil {
		return nil, err
	}
	var tokens []string
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		tokens = append(tokens, goquery.NodeName(s))
	})
	return tokens, nil
}

// HTMLText yields the words of the visible text of a document. Script and
// style contents are dropped.
type HTMLText struct{}

func (HTMLText) Name() string        { return "html-text" }
func (HTMLText) Description() string { return "words of the text content of an HTML document" }

func (HTMLText) Tokenize(r io.Reader) ([]string, error) {
	doc, err := parseHTML(r)
	if err != nil {
		return nil, err
	}
	var tokens []string
	collectText(doc.Selection, &tokens)
	return tokens, nil
}

// collectText appends the words of every text node below s in document order.
func collectText(s *goquery.Selection, tokens *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			*tokens = append(*tokens, strings.Fields(c.Text())...)
		case "script", "style", "noscript", "#comment":
		default:
			collectText(c, tokens)
		}
	})
}

func parseHTML(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
