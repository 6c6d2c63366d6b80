package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// removeNonPrintable drops control characters but keeps the word breaks
// they provided: any whitespace rune becomes a plain space so text split
// across markup lines doesn't fuse together.
func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsSpace(c) {
			newStr.WriteRune(' ')
		} else if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText flattens an element's visible text into a single trimmed line.
func CleanText(node *html.Node) string {
	text := removeNonPrintable(GetText(node))
	text = strings.Trim(text, " \t\n")
	return innerWhitespace.ReplaceAllString(text, " ")
}

func GetAnchors(sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			continue
		}

		anchors = append(anchors, Anchor{
			Name: CleanText(n),
			Href: link.String(),
		})
	}

	return anchors
}

// PreviousElement returns the closest element with the given tag that
// precedes n in document order, or nil if there is none.
func PreviousElement(n *html.Node, tag string) *html.Node {
	for cur := previousNode(n); cur != nil; cur = previousNode(cur) {
		if cur.Type == html.ElementNode && cur.Data == tag {
			return cur
		}
	}
	return nil
}

// previousNode steps one node backwards in document order: the deepest last
// descendant of the previous sibling, else the parent.
func previousNode(n *html.Node) *html.Node {
	if n.PrevSibling != nil {
		cur := n.PrevSibling
		for cur.LastChild != nil {
			cur = cur.LastChild
		}
		return cur
	}
	return n.Parent
}
