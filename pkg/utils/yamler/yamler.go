package yamler

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

func Text(value string, options ...Option) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	for _, opt := range options {
		n = opt(n)
	}
	return n
}

func Bool(b bool) *yaml.Node {
	value := "false"
	if b {
		value = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: value}
}

type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func Number[N Numeric](n N) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(n)}
}

type Option func(*yaml.Node) *yaml.Node

func WithStyle(s yaml.Style) Option {
	return func(n *yaml.Node) *yaml.Node {
		n.Style = s
		return n
	}
}

func WithHeadComment(comment string) Option {
	return func(n *yaml.Node) *yaml.Node {
		n.HeadComment = comment
		return n
	}
}

func WithFootComment(comment string) Option {
	return func(n *yaml.Node) *yaml.Node {
		n.FootComment = comment
		return n
	}
}

func Seq(s ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Content: s}
}

func Null() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

type MapEntry struct {
	Key   *yaml.Node
	Value *yaml.Node
}

func Entry(k *yaml.Node, v *yaml.Node) MapEntry {
	return MapEntry{Key: k, Value: v}
}

func Map(e ...MapEntry) *yaml.Node {
	content := []*yaml.Node{}

	for _, ee := range e {
		content = append(content, ee.Key)
		content = append(content, ee.Value)
	}

	return &yaml.Node{Kind: yaml.MappingNode, Content: content}
}

// Value converts a Go value into a yaml node.
//
// Supported: *yaml.Node (as is), nil, string, bool, numerics,
// slices of them ([]string, []any) and map[string]any.
// Map keys are emitted in sorted order.
//
// Other values are encoded by yaml.v3 itself.
func Value(v any) (*yaml.Node, error) {
	switch vv := v.(type) {
	case *yaml.Node:
		return vv, nil
	case nil:
		return Null(), nil
	case string:
		return Text(vv), nil
	case bool:
		return Bool(vv), nil
	case int:
		return Number(vv), nil
	case int64:
		return Number(vv), nil
	case uint:
		return Number(vv), nil
	case float64:
		return Number(vv), nil
	case []string:
		s := make([]*yaml.Node, 0, len(vv))
		for _, item := range vv {
			s = append(s, Text(item))
		}
		return Seq(s...), nil
	case []any:
		s := make([]*yaml.Node, 0, len(vv))
		for _, item := range vv {
			n, err := Value(item)
			if err != nil {
				return nil, err
			}
			s = append(s, n)
		}
		return Seq(s...), nil
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		entries := make([]MapEntry, 0, len(keys))
		for _, k := range keys {
			n, err := Value(vv[k])
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry(Text(k), n))
		}
		return Map(entries...), nil
	}

	n := new(yaml.Node)
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}
