package rrweb

import (
	"github.com/rs/zerolog/log"
)

// NodeType is the semantic kind of a serialized DOM node.
type NodeType string

const (
	NodeDocument     NodeType = "Document"
	NodeDocumentType NodeType = "DocumentType"
	NodeElement      NodeType = "Element"
	NodeText         NodeType = "Text"
	NodeCDATA        NodeType = "CDATA"
	NodeComment      NodeType = "Comment"
)

var nodeTypes = [...]NodeType{
	NodeDocument,
	NodeDocumentType,
	NodeElement,
	NodeText,
	NodeCDATA,
	NodeComment,
}

// NormalizeNodeType maps a numeric node code to its semantic type. Unknown
// codes fall back to Element and report ok=false.
func NormalizeNodeType(code int) (NodeType, bool) {
	if code < 0 || code >= len(nodeTypes) {
		return NodeElement, false
	}
	return nodeTypes[code], true
}

// RawNode is a DOM node as serialized by the recorder.
type RawNode struct {
	Type        *int           `json:"type"`
	ID          *int           `json:"id"`
	TagName     string         `json:"tagName"`
	TextContent string         `json:"textContent"`
	Name        string         `json:"name"`
	Attributes  map[string]any `json:"attributes"`
	ChildNodes  []*RawNode     `json:"childNodes"`
}

// Node is a DOM node with its type resolved to the semantic enum.
type Node struct {
	Type        NodeType       `json:"type"`
	ID          *int           `json:"id,omitempty"`
	TagName     string         `json:"tagName,omitempty"`
	TextContent string         `json:"textContent,omitempty"`
	Name        string         `json:"name,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	ChildNodes  []*Node        `json:"childNodes,omitempty"`
}

// EmptyDocument is the tree used before a full snapshot has been seen.
func EmptyDocument() *Node {
	return &Node{Type: NodeDocument}
}

// Normalize converts the subtree rooted at r, resolving every node type.
// A node without a type code becomes an Element. Unknown codes are logged
// and also become Elements.
func (r *RawNode) Normalize() *Node {
	if r == nil {
		return nil
	}

	n := &Node{
		Type:        NodeElement,
		ID:          r.ID,
		TagName:     r.TagName,
		TextContent: r.TextContent,
		Name:        r.Name,
		Attributes:  r.Attributes,
	}
	if r.Type != nil {
		t, ok := NormalizeNodeType(*r.Type)
		if !ok {
			log.Warn().Int("code", *r.Type).Msg("Unknown node type, treating as element")
		}
		n.Type = t
	}

	if len(r.ChildNodes) > 0 {
		n.ChildNodes = make([]*Node, 0, len(r.ChildNodes))
		for _, child := range r.ChildNodes {
			if c := child.Normalize(); c != nil {
				n.ChildNodes = append(n.ChildNodes, c)
			}
		}
	}
	return n
}

// Walk calls fn for n and every descendant in document order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.ChildNodes {
		c.Walk(fn)
	}
}

// Attr returns the string value of an attribute, or "".
func (n *Node) Attr(name string) string {
	if n == nil || n.Attributes == nil {
		return ""
	}
	if s, ok := n.Attributes[name].(string); ok {
		return s
	}
	return ""
}
