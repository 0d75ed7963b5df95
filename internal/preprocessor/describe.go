package preprocessor

import (
	"strings"
	"unicode/utf8"

	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

const textPreviewLen = 20

// describeNode returns a short human-readable name for a DOM node.
func describeNode(n *rrweb.Node) string {
	if n == nil {
		return "unknown element"
	}

	switch n.Type {
	case rrweb.NodeElement:
		return describeElement(n)
	case rrweb.NodeText:
		text := strings.TrimSpace(n.TextContent)
		if text == "" {
			return "empty text node"
		}
		if utf8.RuneCountInString(text) > textPreviewLen {
			text = string([]rune(text)[:textPreviewLen]) + "..."
		}
		return `text "` + text + `"`
	case rrweb.NodeDocument:
		return "document"
	case rrweb.NodeDocumentType:
		return "doctype"
	}
	return "node type " + string(n.Type)
}

func describeElement(n *rrweb.Node) string {
	tag := strings.ToLower(n.TagName)
	if tag == "" {
		tag = "unknown"
	}

	var selector string
	if id := n.Attr("id"); id != "" {
		selector += "#" + id
	}
	if class := strings.Fields(n.Attr("class")); len(class) > 0 {
		selector += "." + strings.Join(class, ".")
	}

	switch tag {
	case "button":
		return `button "` + buttonText(n) + `"`
	case "input":
		kind := n.Attr("type")
		if kind == "" {
			kind = "text"
		}
		out := kind + " input"
		if name := n.Attr("name"); name != "" {
			out += ` name="` + name + `"`
		}
		if ph := n.Attr("placeholder"); ph != "" {
			out += ` placeholder="` + ph + `"`
		}
		return out
	case "nav":
		return "navigation section"
	case "header":
		return "page header"
	case "footer":
		return "page footer"
	case "dialog":
		return "modal dialog"
	case "article":
		return "content article"
	}
	return tag + selector
}

func buttonText(n *rrweb.Node) string {
	for _, c := range n.ChildNodes {
		if c.Type != rrweb.NodeText {
			continue
		}
		if text := strings.TrimSpace(c.TextContent); text != "" {
			return text
		}
	}
	return "unnamed button"
}
