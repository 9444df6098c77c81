package mapper

import (
	"sort"
	"strings"

	"podmanager/internal/domain"
)

// entry is one flattened source attribute
type entry struct {
	segs  []string
	value any
	// object marks a nested JSON object kept whole for location properties
	object bool
	// collection marks an array of objects
	collection bool
}

func (e entry) joined() string {
	return strings.Join(e.segs, "")
}

func (e entry) leaf() string {
	return e.segs[len(e.segs)-1]
}

// ignoredKey reports whether a source key is never copied
func ignoredKey(key string) bool {
	switch key {
	case "Links", "Oem", "Actions":
		return true
	}
	return strings.HasPrefix(key, "@")
}

// flatten turns a decoded JSON object into path entries in a stable order
func flatten(src map[string]any) []entry {
	var out []entry
	flattenInto(&out, nil, src)
	return out
}

func flattenInto(out *[]entry, prefix []string, src map[string]any) {
	keys := make([]string, 0, len(src))
	for k := range src {
		if !ignoredKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		segs := append(append([]string(nil), prefix...), k)
		switch v := src[k].(type) {
		case map[string]any:
			*out = append(*out, entry{segs: segs, value: v, object: true})
			flattenInto(out, segs, v)
		case []any:
			*out = append(*out, entry{segs: segs, value: v, collection: isObjectArray(v)})
		default:
			*out = append(*out, entry{segs: segs, value: v})
		}
	}
}

func isObjectArray(list []any) bool {
	if len(list) == 0 {
		return false
	}
	for _, item := range list {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

// normalize folds a name for loose matching
func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.', '@':
			return -1
		}
		return r
	}, s)
}

// matcher finds the source entry feeding a target property
type matcher struct {
	loose bool
}

// find returns the entry for d. A property matches at most one entry; ties at
// the shallowest depth are ambiguous and match nothing.
func (m matcher) find(entries []entry, d domain.Descriptor) (entry, bool) {
	usable := func(e entry) bool {
		if e.collection {
			return false
		}
		if e.object {
			return d.Semantic() == domain.SemanticLocation
		}
		return true
	}

	name := d.Name()
	var exact, leaf []entry
	for _, e := range entries {
		if !usable(e) {
			continue
		}
		switch {
		case e.joined() == name:
			exact = append(exact, e)
		case e.leaf() == name:
			leaf = append(leaf, e)
		}
	}
	if e, ok := unique(exact); ok {
		return e, true
	}
	if e, ok := unique(leaf); ok {
		return e, true
	}
	if !m.loose {
		return entry{}, false
	}

	norm := normalize(name)
	var equal, suffix []entry
	for _, e := range entries {
		if !usable(e) {
			continue
		}
		joined := normalize(e.joined())
		switch {
		case joined == norm || normalize(e.leaf()) == norm:
			equal = append(equal, e)
		case strings.HasSuffix(joined, norm):
			suffix = append(suffix, e)
		}
	}
	if e, ok := unique(equal); ok {
		return e, true
	}
	return unique(suffix)
}

// field returns the top-level array of objects named name
func (m matcher) field(entries []entry, name string) ([]any, bool) {
	for _, e := range entries {
		if len(e.segs) != 1 {
			continue
		}
		if e.segs[0] == name || (m.loose && normalize(e.segs[0]) == normalize(name)) {
			list, ok := e.value.([]any)
			return list, ok
		}
	}
	return nil, false
}

// unique returns the single shallowest candidate
func unique(candidates []entry) (entry, bool) {
	if len(candidates) == 0 {
		return entry{}, false
	}
	best := -1
	depth := 0
	ambiguous := false
	for i, e := range candidates {
		switch {
		case best < 0 || len(e.segs) < depth:
			best, depth, ambiguous = i, len(e.segs), false
		case len(e.segs) == depth:
			ambiguous = true
		}
	}
	if ambiguous {
		return entry{}, false
	}
	return candidates[best], true
}
