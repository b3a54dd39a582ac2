package html

import (
	gohtml "html"
	"strings"
)

// NodeID addresses a node inside its Document's arena.
type NodeID int32

// NoNode is the parent of the root.
const NoNode NodeID = -1

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Attribute is one name/value pair. Names are lowercase.
type Attribute struct {
	Name  string
	Value string
}

// Node is an element or a text node. Only text nodes carry Text; only
// elements carry a Tag, Attributes and Children.
type Node struct {
	Type       NodeType
	Tag        string
	Attributes []Attribute
	Text       string
	Parent     NodeID
	Children   []NodeID
}

// Document owns every node of one parse. Nodes refer to each other by ID;
// the parent link is for upward traversal only.
type Document struct {
	nodes []Node
}

const rootTag = "document"

func NewDocument() *Document {
	d := &Document{nodes: make([]Node, 0, 64)}
	d.nodes = append(d.nodes, Node{Type: ElementNode, Tag: rootTag, Parent: NoNode})
	return d
}

// Root returns the synthetic root element.
func (d *Document) Root() NodeID { return 0 }

// Len returns the number of nodes in the arena.
func (d *Document) Len() int { return len(d.nodes) }

// Node returns the node for id. The pointer is invalidated by later appends.
func (d *Document) Node(id NodeID) *Node { return &d.nodes[id] }

func (d *Document) Children(id NodeID) []NodeID { return d.nodes[id].Children }

func (d *Document) Parent(id NodeID) NodeID { return d.nodes[id].Parent }

func (d *Document) Tag(id NodeID) string { return d.nodes[id].Tag }

func (d *Document) IsText(id NodeID) bool { return d.nodes[id].Type == TextNode }

// Attr returns the value of the named attribute.
func (d *Document) Attr(id NodeID, name string) (string, bool) {
	return d.nodes[id].Attr(name)
}

// AttrOr returns the attribute value or def when absent.
func (d *Document) AttrOr(id NodeID, name, def string) string {
	if v, ok := d.nodes[id].Attr(name); ok {
		return v
	}
	return def
}

func (d *Document) HasAttr(id NodeID, name string) bool {
	_, ok := d.nodes[id].Attr(name)
	return ok
}

// Attr looks up an attribute by lowercase name.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AppendElement creates an element under parent and returns its ID.
func (d *Document) AppendElement(parent NodeID, tag string, attrs []Attribute) NodeID {
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, Node{Type: ElementNode, Tag: tag, Attributes: attrs, Parent: parent})
	d.nodes[parent].Children = append(d.nodes[parent].Children, id)
	return id
}

// AppendText creates a text node under parent. Empty text is allowed: it
// marks an element that had no content.
func (d *Document) AppendText(parent NodeID, text string) NodeID {
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, Node{Type: TextNode, Text: text, Parent: parent})
	d.nodes[parent].Children = append(d.nodes[parent].Children, id)
	return id
}

// TextContent concatenates the direct text children of id.
func (d *Document) TextContent(id NodeID) string {
	var sb strings.Builder
	for _, c := range d.nodes[id].Children {
		if d.nodes[c].Type == TextNode {
			sb.WriteString(d.nodes[c].Text)
		}
	}
	return sb.String()
}

// DeepText concatenates every text descendant of id in document order.
func (d *Document) DeepText(id NodeID) string {
	var sb strings.Builder
	d.Walk(id, func(n NodeID) bool {
		if d.nodes[n].Type == TextNode {
			sb.WriteString(d.nodes[n].Text)
		}
		return true
	})
	return sb.String()
}

// Walk visits id and its descendants depth-first. Returning false from fn
// skips the node's subtree.
func (d *Document) Walk(id NodeID, fn func(NodeID) bool) {
	if !fn(id) {
		return
	}
	for _, c := range d.nodes[id].Children {
		d.Walk(c, fn)
	}
}

// Find returns the first element with the given tag below from, or NoNode.
func (d *Document) Find(from NodeID, tag string) NodeID {
	found := NoNode
	d.Walk(from, func(n NodeID) bool {
		if found != NoNode {
			return false
		}
		if n != from && d.nodes[n].Type == ElementNode && d.nodes[n].Tag == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

// ChildElements returns the element children of id with the given tag.
func (d *Document) ChildElements(id NodeID, tag string) []NodeID {
	var out []NodeID
	for _, c := range d.nodes[id].Children {
		if d.nodes[c].Type == ElementNode && d.nodes[c].Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Serialize returns the markup of id's children.
func (d *Document) Serialize(id NodeID) string {
	var sb strings.Builder
	for _, c := range d.nodes[id].Children {
		d.serializeNode(&sb, c)
	}
	return sb.String()
}

// SerializeOuter returns the markup of id including its own tags.
func (d *Document) SerializeOuter(id NodeID) string {
	var sb strings.Builder
	d.serializeNode(&sb, id)
	return sb.String()
}

func (d *Document) serializeNode(sb *strings.Builder, id NodeID) {
	n := &d.nodes[id]
	if n.Type == TextNode {
		sb.WriteString(gohtml.EscapeString(n.Text))
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	// Attributes keep source order.
	for _, a := range n.Attributes {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(gohtml.EscapeString(a.Value))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')

	if IsVoid(n.Tag) {
		return
	}
	for _, c := range n.Children {
		d.serializeNode(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}

// IsVoid reports whether tag can never contain markup children.
func IsVoid(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "command", "embed", "hr", "img",
		"input", "keygen", "link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}
