package config

import "gopkg.in/yaml.v3"

// MergeMode decides what happens on keys which exist only in the base document.
type MergeMode int

const (
	// KeepExtra keeps keys which exist only in the base.
	KeepExtra MergeMode = iota

	// RemoveExtra drops keys which do not exist in the override.
	//
	// This is for re-serialising a regenerated document onto an existing one:
	// the result has the override's content, with the base's comments and key order.
	RemoveExtra
)

func (m MergeMode) String() string {
	switch m {
	case KeepExtra:
		return "keep-extra"
	case RemoveExtra:
		return "remove-extra"
	}
	return "unknown"
}

// Merge overlays override onto base, and returns a new document.
//
// Neither base nor override are modified.
//
// For each key in override:
//
// - when both values are mappings, they are merged recursively.
//
// - otherwise, the override's value replaces the base's one.
// Sequences are replaced, not concatenated.
//
// Keys only in override are appended after the base's keys, in the override's order.
//
// Keys only in base are kept (KeepExtra) or dropped (RemoveExtra).
func Merge(base, override *Document, mode MergeMode) *Document {
	ret := base.Clone()
	ov := override.Clone()
	mergeMapping(ret.mapping(), ov.mapping(), mode)
	return ret
}

func mergeMapping(base, override *yaml.Node, mode MergeMode) {
	// key nodes and value nodes are cloned already, so it is safe to share them.
	merged := make([]*yaml.Node, 0, len(base.Content)+len(override.Content))
	appended := make([]*yaml.Node, 0, len(override.Content))
	seen := map[string]struct{}{}

	for i := 0; i+1 < len(override.Content); i += 2 {
		seen[override.Content[i].Value] = struct{}{}
	}

	for i := 0; i+1 < len(base.Content); i += 2 {
		k, v := base.Content[i], base.Content[i+1]
		if _, ok := seen[k.Value]; !ok {
			if mode == KeepExtra {
				merged = append(merged, k, v)
			}
			continue
		}

		oi := lookupKey(override, k.Value)
		ov := override.Content[oi+1]
		bv, ovv := deref(v), deref(ov)
		if bv.Kind == yaml.MappingNode && ovv.Kind == yaml.MappingNode {
			if v.Kind == yaml.AliasNode {
				// do not modify the anchored mapping shared with others.
				bv = detach(v)
			}
			mergeMapping(bv, ovv, mode)
			merged = append(merged, k, bv)
			continue
		}

		if ov.Kind == yaml.AliasNode {
			ov = detach(ov)
		}
		inheritComments(ov, v)
		merged = append(merged, k, ov)
	}

	for i := 0; i+1 < len(override.Content); i += 2 {
		k := override.Content[i]
		if lookupKey(base, k.Value) >= 0 {
			continue
		}
		v := override.Content[i+1]
		if v.Kind == yaml.AliasNode {
			v = detach(v)
		}
		appended = append(appended, k, v)
	}

	base.Content = append(merged, appended...)
}

// detach makes an alias node into a copy of its anchored node.
func detach(alias *yaml.Node) *yaml.Node {
	n := cloneNode(deref(alias), map[*yaml.Node]*yaml.Node{})
	n.Anchor = ""
	inheritComments(n, alias)
	return n
}
