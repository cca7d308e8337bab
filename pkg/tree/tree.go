// Package tree provides shared utilities for working with child listings and display paths.
package tree

import (
	"sort"
	"strings"

	"github.com/feishukit/feishukit/pkg/models"
)

// FindByName returns the first child whose name matches exactly (case-sensitive).
func FindByName(children []models.Descriptor, name string) (models.Descriptor, bool) {
	for _, child := range children {
		if child.Name == name {
			return child, true
		}
	}
	return models.Descriptor{}, false
}

// FindByID returns the child with the given ID.
func FindByID(children []models.Descriptor, id string) (models.Descriptor, bool) {
	for _, child := range children {
		if child.ID == id {
			return child, true
		}
	}
	return models.Descriptor{}, false
}

// FoldersFirst returns a copy of children with folders (and wiki nodes that
// have children) ahead of everything else. Relative order is preserved.
func FoldersFirst(children []models.Descriptor) []models.Descriptor {
	out := make([]models.Descriptor, len(children))
	copy(out, children)
	sort.SliceStable(out, func(i, j int) bool {
		return isContainer(out[i]) && !isContainer(out[j])
	})
	return out
}

// SortByName orders children by name in place. Equal names keep their
// relative order.
func SortByName(children []models.Descriptor) {
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Name < children[j].Name
	})
}

func isContainer(d models.Descriptor) bool {
	return d.Kind == models.KindFolder || d.HasChildren
}

// NamesWithPrefix returns the names of children that start with prefix.
// Matching is case-sensitive, like name lookup. If foldersOnly is set,
// non-containers are skipped.
func NamesWithPrefix(children []models.Descriptor, prefix string, foldersOnly bool) []string {
	var names []string
	for _, child := range children {
		if foldersOnly && !isContainer(child) {
			continue
		}
		if strings.HasPrefix(child.Name, prefix) {
			names = append(names, child.Name)
		}
	}
	return names
}

// BuildPath joins display names into an absolute display path.
func BuildPath(names []string) string {
	if len(names) == 0 {
		return "/"
	}
	return "/" + strings.Join(names, "/")
}

// SplitPath splits "a/b/c" into its non-empty, trimmed components.
func SplitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
