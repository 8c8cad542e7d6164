// Package config handles strainpi configuration documents.
//
// A Document keeps the YAML node tree as it is read,
// so comments and key order survive load, modify and save.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ohmeta/strainpi/pkg/utils/yamler"
	"gopkg.in/yaml.v3"
)

var ErrParse = errors.New("cannot parse config")
var ErrNotMapping = errors.New("not a mapping")
var ErrCannotCreateConfig = errors.New("cannot create config file")
var ErrCannotUpdateConfig = errors.New("cannot update config file")

// Document is a YAML configuration document whose top level is a mapping.
type Document struct {
	root *yaml.Node // DocumentNode
}

// New returns an empty document.
func New() *Document {
	return &Document{
		root: &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{yamler.Map()}},
	}
}

// Load reads and parses the config file.
//
// # Returns
//
// - *Document: loaded document
//
// - error: wrapping os.ErrNotExist if the file is missing, or ErrParse if the file is malformed.
func Load(path string) (*Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, buf)
}

// Parse parses YAML content as a document.
//
// name is used in error messages. Empty content yields an empty document.
func Parse(name string, content []byte) (*Document, error) {
	root := new(yaml.Node)
	if err := yaml.Unmarshal(content, root); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, name, err)
	}

	switch {
	case root.Kind == 0 || len(root.Content) == 0:
		return New(), nil
	case root.Content[0].Kind == yaml.ScalarNode && root.Content[0].Tag == "!!null":
		return New(), nil
	case root.Content[0].Kind != yaml.MappingNode:
		return nil, fmt.Errorf("%w: %s: top level should be a mapping", ErrParse, name)
	}

	return &Document{root: root}, nil
}

func (d *Document) mapping() *yaml.Node {
	return d.root.Content[0]
}

// Node returns the top level mapping node.
func (d *Document) Node() *yaml.Node {
	return d.mapping()
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{root: cloneNode(d.root, map[*yaml.Node]*yaml.Node{})}
}

func cloneNode(n *yaml.Node, memo map[*yaml.Node]*yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if c, ok := memo[n]; ok {
		return c
	}
	c := new(yaml.Node)
	*c = *n
	memo[n] = c

	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i := range n.Content {
			c.Content[i] = cloneNode(n.Content[i], memo)
		}
	}
	c.Alias = cloneNode(n.Alias, memo)
	return c
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// get the value of key in mapping node m.
//
// # Returns
//
// - index of the key node in m.Content, or -1 if not found.
func lookupKey(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i
		}
	}
	return -1
}

// Lookup finds the node at path.
//
// An empty path means the top level mapping.
func (d *Document) Lookup(path ...string) (*yaml.Node, bool) {
	n := d.mapping()
	for _, key := range path {
		n = deref(n)
		if n.Kind != yaml.MappingNode {
			return nil, false
		}
		i := lookupKey(n, key)
		if i < 0 {
			return nil, false
		}
		n = n.Content[i+1]
	}
	return deref(n), true
}

// String returns the scalar value at path.
//
// If the path is not found or not a scalar, it returns ("", false).
func (d *Document) String(path ...string) (string, bool) {
	n, ok := d.Lookup(path...)
	if !ok || n.Kind != yaml.ScalarNode {
		return "", false
	}
	return n.Value, true
}

// Bool returns the boolean value at path.
//
// If the path is not found or not a boolean, it returns (false, false).
func (d *Document) Bool(path ...string) (bool, bool) {
	n, ok := d.Lookup(path...)
	if !ok || n.Kind != yaml.ScalarNode {
		return false, false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false, false
	}
	return b, true
}

// Keys returns the keys of the mapping at path, in order.
//
// If the path is not found or not a mapping, it returns nil.
func (d *Document) Keys(path ...string) []string {
	n, ok := d.Lookup(path...)
	if !ok || n.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

// Set puts the value at path.
//
// Missing intermediate mappings are created.
// When the path already has a value, it is replaced but its comments are kept.
// Aliases on the path are replaced with copies of their anchored nodes,
// so that other aliases of the same anchor are not changed.
//
// # Args
//
// - value: value to be set. See yamler.Value for supported types.
//
// - path: keys from the top level. It should not be empty.
//
// # Returns
//
// - error: wrapping ErrNotMapping when an intermediate value is not a mapping.
func (d *Document) Set(value any, path ...string) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrNotMapping)
	}

	v, err := yamler.Value(value)
	if err != nil {
		return err
	}

	m := d.mapping()
	for nth, key := range path {
		m = deref(m)
		if m.Kind != yaml.MappingNode {
			return fmt.Errorf("%w: %v", ErrNotMapping, path[:nth])
		}

		i := lookupKey(m, key)
		last := nth == len(path)-1
		switch {
		case i < 0 && last:
			m.Content = append(m.Content, yamler.Text(key), v)
		case i < 0:
			child := yamler.Map()
			m.Content = append(m.Content, yamler.Text(key), child)
			m = child
		case last:
			old := m.Content[i+1]
			inheritComments(v, old)
			m.Content[i+1] = v
		default:
			if m.Content[i+1].Kind == yaml.AliasNode {
				// write into a copy, not into the anchored node shared with other aliases.
				m.Content[i+1] = detach(m.Content[i+1])
			}
			m = m.Content[i+1]
		}
	}
	return nil
}

func inheritComments(to, from *yaml.Node) {
	if to.HeadComment == "" {
		to.HeadComment = from.HeadComment
	}
	if to.LineComment == "" {
		to.LineComment = from.LineComment
	}
	if to.FootComment == "" {
		to.FootComment = from.FootComment
	}
}

// Decode decodes the document into v, as yaml.Unmarshal does.
func (d *Document) Decode(v any) error {
	return d.root.Decode(v)
}

// Encode writes the document as YAML with 2-space indent.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return err
	}
	return enc.Close()
}

// Bytes returns the document encoded as YAML.
func (d *Document) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := d.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
