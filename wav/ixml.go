package wav

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// iXML's precedence is USER over ASWG: the ALL-CAPS <USER> block is
// authoritative, the camelCase <ASWG> block only fills what USER leaves
// empty. Neither go-xmp (an RDF/XMP library, not a generic XML DOM) nor any
// other example-pack dependency models "preserve unknown elements
// verbatim", so this is a small hand-rolled tree over encoding/xml's
// tokenizer instead of a third-party DOM.

// ixmlEmbedder and ixmlContentType are written unconditionally on every
// save, identifying NomenAudio as the tool that last touched the chunk.
const (
	ixmlEmbedder    = "NomenAudio"
	ixmlContentType = "sfx"
)

// ixmlNode is a generic XML element: enough structure to round-trip any
// iXML tree, known or not, without losing sibling elements this package
// doesn't understand.
type ixmlNode struct {
	Name     string
	Attrs    []xml.Attr
	Text     string
	Children []*ixmlNode
}

func newIXMLRoot() *ixmlNode {
	return &ixmlNode{Name: "BWFXML"}
}

func (n *ixmlNode) child(name string) *ixmlNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

func (n *ixmlNode) childOrCreate(name string) *ixmlNode {
	if c := n.child(name); c != nil {
		return c
	}

	c := &ixmlNode{Name: name}
	n.Children = append(n.Children, c)

	return c
}

func (n *ixmlNode) text(name string) string {
	if c := n.child(name); c != nil {
		return strings.TrimSpace(c.Text)
	}

	return ""
}

func (n *ixmlNode) setText(name, value string) {
	n.childOrCreate(name).Text = value
}

func parseIXMLNode(dec *xml.Decoder, start xml.StartElement) (*ixmlNode, error) {
	node := &ixmlNode{Name: start.Name.Local, Attrs: start.Attr}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read token inside <%s>: %w", node.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseIXMLNode(dec, t)
			if err != nil {
				return nil, err
			}

			node.Children = append(node.Children, child)
		case xml.CharData:
			node.Text += string(t)
		case xml.EndElement:
			return node, nil
		}
	}
}

// parseIXMLRoot parses an iXML chunk payload into a generic element tree
// rooted at whatever the document's outer element is (normally BWFXML).
func parseIXMLRoot(payload []byte) (*ixmlNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(payload))

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("find root element: %w", err)
		}

		if start, ok := tok.(xml.StartElement); ok {
			return parseIXMLNode(dec, start)
		}
	}
}

func encodeIXMLNode(enc *xml.Encoder, n *ixmlNode) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}, Attr: n.Attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData([]byte(n.Text))); err != nil {
			return err
		}
	}

	for _, c := range n.Children {
		if err := encodeIXMLNode(enc, c); err != nil {
			return err
		}
	}

	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

func encodeIXML(root *ixmlNode) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	if err := encodeIXMLNode(enc, root); err != nil {
		return nil, fmt.Errorf("encode iXML tree: %w", err)
	}

	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("flush iXML encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// readIXML parses a raw iXML payload and extracts the merged ChunkMetadata
// view: USER tags take precedence over ASWG tags for the same field, and
// unrecognized <USER> children become custom fields.
func readIXML(payload []byte) (*ixmlNode, ChunkMetadata, error) {
	root, err := parseIXMLRoot(payload)
	if err != nil {
		return nil, ChunkMetadata{}, err
	}

	return root, extractIXMLMetadata(root), nil
}

func extractIXMLMetadata(root *ixmlNode) ChunkMetadata {
	meta := ChunkMetadata{CustomFields: map[string]string{}}

	if aswg := root.child("ASWG"); aswg != nil {
		for _, slot := range fieldSlots {
			if slot.ASWGTag == "" {
				continue
			}

			if v := aswg.text(slot.ASWGTag); v != "" {
				slot.Set(&meta, v)
			}
		}
	}

	if user := root.child("USER"); user != nil {
		known := make(map[string]bool, len(fieldSlots))

		for _, slot := range fieldSlots {
			if slot.UserTag == "" {
				continue
			}

			known[slot.UserTag] = true

			if v := user.text(slot.UserTag); v != "" {
				slot.Set(&meta, v)
			}
		}

		for _, c := range user.Children {
			if known[c.Name] {
				continue
			}

			meta.CustomFields[c.Name] = strings.TrimSpace(c.Text)
		}
	}

	return meta
}

// writeIXML builds the iXML payload to store: existing is the parsed tree
// from the source file (nil if the source had no iXML chunk), and meta is
// the full merged metadata state to serialize. Every present field is set
// on both USER and ASWG (where each has a slot); CustomFields are written
// under USER verbatim.
func writeIXML(existing *ixmlNode, meta ChunkMetadata) ([]byte, error) {
	root := existing
	if root == nil {
		root = newIXMLRoot()
	}

	root.Name = "BWFXML"

	user := root.childOrCreate("USER")
	user.setText("EMBEDDER", ixmlEmbedder)

	aswg := root.childOrCreate("ASWG")
	aswg.setText("contentType", ixmlContentType)

	for _, slot := range fieldSlots {
		value := slot.Get(&meta)
		if value == "" {
			continue
		}

		if slot.UserTag != "" {
			user.setText(slot.UserTag, value)
		}

		if slot.ASWGTag != "" {
			aswg.setText(slot.ASWGTag, value)
		}
	}

	for k, v := range meta.CustomFields {
		if v == "" {
			continue
		}

		user.setText(k, v)
	}

	return encodeIXML(root)
}
