// Package models contains shared data types used across the client packages.
package models

import "time"

// Mode identifies which backing hierarchy a location or store belongs to.
type Mode string

const (
	// ModeTree is Drive: every node has exactly one parent folder.
	ModeTree Mode = "tree"
	// ModeGraph is Wiki: nodes live in a space and resolve parents one by one.
	ModeGraph Mode = "graph"
)

// Kind is the capability-agnostic classification of a node.
type Kind string

const (
	KindFolder     Kind = "folder"
	KindTabular    Kind = "tabular"    // spreadsheet
	KindRelational Kind = "relational" // bitable
	KindDocument   Kind = "document"
	KindContainer  Kind = "container" // wiki node that has children
)

// Remote type strings used by Drive files and Wiki obj_type.
const (
	TypeFolder   = "folder"
	TypeSheet    = "sheet"
	TypeBitable  = "bitable"
	TypeDoc      = "doc"
	TypeDocx     = "docx"
	TypeFile     = "file"
	TypeMindnote = "mindnote"
	TypeWiki     = "wiki"
)

// Descriptor describes a single child returned by a store listing or lookup.
// Descriptors are never mutated after creation; a refresh replaces them.
type Descriptor struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        Kind      `json:"kind"`
	HasChildren bool      `json:"has_children"`
	RawType     string    `json:"type"`
	ModifiedAt  time.Time `json:"modified_at,omitempty"`

	// Graph-only fields.
	SpaceID    string `json:"space_id,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
	ResourceID string `json:"resource_id,omitempty"`
}

// IsFolder reports whether the descriptor is a Drive folder.
func (d Descriptor) IsFolder() bool {
	return d.Kind == KindFolder
}

// KindForType maps a remote type string to a Kind.
func KindForType(rawType string, hasChildren bool) Kind {
	switch rawType {
	case TypeFolder:
		return KindFolder
	case TypeSheet:
		return KindTabular
	case TypeBitable:
		return KindRelational
	}
	if hasChildren {
		return KindContainer
	}
	return KindDocument
}

// Space is a Wiki space the application can access.
type Space struct {
	ID          string `json:"space_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Bookmark is a saved shortcut to a Wiki node.
type Bookmark struct {
	NodeID  string `json:"token"`
	SpaceID string `json:"space_id"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
}
