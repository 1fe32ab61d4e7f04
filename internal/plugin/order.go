package plugin

import "strings"

// SortKey reduces a plugin reference to its bare name so ordering operates
// identically on folder names and module identifiers: any path prefix and a
// trailing entry-module segment are stripped. "layer_selector",
// "layer_selector/main" and "bundled/layer_selector/main" all reduce to
// "layer_selector".
func SortKey(name string) string {
	key := strings.TrimSuffix(name, "/"+entryModule)
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	return key
}

// Reorder returns a new slice with the descriptors named in order placed
// first, in order-list position, and all remaining descriptors after them in
// their original relative order. Order entries that match no descriptor are
// ignored. The input slice is never mutated; a nil or empty order returns a
// copy in the original order.
func Reorder(descriptors []Descriptor, order []string) []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	if len(order) == 0 {
		return append(out, descriptors...)
	}

	used := make([]bool, len(descriptors))
	for _, want := range order {
		key := SortKey(want)
		for i, desc := range descriptors {
			if used[i] || SortKey(desc.FolderName) != key {
				continue
			}
			out = append(out, desc)
			used[i] = true
			break
		}
	}
	for i, desc := range descriptors {
		if !used[i] {
			out = append(out, desc)
		}
	}
	return out
}
