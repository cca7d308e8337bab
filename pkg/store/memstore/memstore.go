// Package memstore implements the tree and graph stores in memory. It backs
// the navigator tests and the offline demo shell.
package memstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/store"
)

// ErrNotFound is returned for unknown node ids.
var ErrNotFound = errors.New("node not found")

// Operation names accepted by FailOn.
const (
	OpList       = "list"
	OpGetNode    = "get_node"
	OpListSpaces = "list_spaces"
	OpCreate     = "create"
	OpMove       = "move"
	OpRename     = "rename"
	OpDelete     = "delete"
)

// Calls counts store invocations, including failed ones.
type Calls struct {
	List       int
	GetNode    int
	ListSpaces int
	Create     int
	Move       int
	Rename     int
	Delete     int
}

// Store is an in-memory Store. A tree-mode Store satisfies store.Store; a
// graph-mode Store also serves GetNode and ListSpaces.
type Store struct {
	mode   models.Mode
	host   string
	nodes  map[string]models.Descriptor
	order  map[string][]string // listing key -> child ids in insertion order
	spaces []models.Space
	seq    int

	failures    map[string]error
	getFailures map[string]error
	content     map[string]string

	Calls Calls
}

var (
	_ store.Store         = (*Store)(nil)
	_ store.GraphStore    = (*Store)(nil)
	_ store.ContentReader = (*Store)(nil)
)

// NewTree creates an empty tree store.
func NewTree() *Store {
	return newStore(models.ModeTree)
}

// NewGraph creates an empty graph store.
func NewGraph() *Store {
	return newStore(models.ModeGraph)
}

func newStore(mode models.Mode) *Store {
	return &Store{
		mode:        mode,
		host:        "demo.feishu.cn",
		nodes:       make(map[string]models.Descriptor),
		order:       make(map[string][]string),
		failures:    make(map[string]error),
		getFailures: make(map[string]error),
		content:     make(map[string]string),
	}
}

func key(spaceID, parentID string) string {
	return spaceID + "/" + parentID
}

func (s *Store) Mode() models.Mode { return s.mode }

// AddSpace registers a graph space.
func (s *Store) AddSpace(id, name string) {
	s.spaces = append(s.spaces, models.Space{ID: id, Name: name})
}

// Add inserts d under parentID and returns the stored descriptor. A missing
// ID or Kind is filled in.
func (s *Store) Add(spaceID, parentID string, d models.Descriptor) models.Descriptor {
	if d.ID == "" {
		d.ID = s.nextID()
	}
	if d.Kind == "" {
		d.Kind = models.KindForType(d.RawType, d.HasChildren)
	}
	if s.mode == models.ModeGraph {
		d.SpaceID = spaceID
	} else {
		spaceID = ""
	}
	d.ParentID = parentID
	s.nodes[d.ID] = d
	k := key(spaceID, parentID)
	s.order[k] = append(s.order[k], d.ID)
	s.markParent(parentID)
	return d
}

// SetParent rewrites the parent recorded on a node without moving it in any
// listing. Tests use it to build broken or cyclic ancestry.
func (s *Store) SetParent(id, parentID string) {
	d := s.nodes[id]
	d.ID = id
	d.ParentID = parentID
	s.nodes[id] = d
}

// SetContent sets the text returned by Content for a node.
func (s *Store) SetContent(id, text string) {
	s.content[id] = text
}

// FailOn makes every call of op return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// FailGetNode makes GetNode(id) return err.
func (s *Store) FailGetNode(id string, err error) {
	s.getFailures[id] = err
}

// Node returns the stored descriptor for id.
func (s *Store) Node(id string) (models.Descriptor, bool) {
	d, ok := s.nodes[id]
	return d, ok
}

// ResetCalls zeroes the call counters.
func (s *Store) ResetCalls() {
	s.Calls = Calls{}
}

func (s *Store) ListChildren(_ context.Context, spaceID, parentID string) ([]models.Descriptor, error) {
	s.Calls.List++
	if err := s.failures[OpList]; err != nil {
		return nil, err
	}
	if s.mode == models.ModeTree {
		spaceID = ""
	}
	ids := s.order[key(spaceID, parentID)]
	out := make([]models.Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.nodes[id])
	}
	return out, nil
}

func (s *Store) GetNode(_ context.Context, id string) (models.Descriptor, error) {
	s.Calls.GetNode++
	if err := s.failures[OpGetNode]; err != nil {
		return models.Descriptor{}, err
	}
	if err := s.getFailures[id]; err != nil {
		return models.Descriptor{}, err
	}
	d, ok := s.nodes[id]
	if !ok {
		return models.Descriptor{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return d, nil
}

func (s *Store) ListSpaces(context.Context) ([]models.Space, error) {
	s.Calls.ListSpaces++
	if err := s.failures[OpListSpaces]; err != nil {
		return nil, err
	}
	out := make([]models.Space, len(s.spaces))
	copy(out, s.spaces)
	return out, nil
}

var rawTypeByKind = map[models.Kind]string{
	models.KindFolder:     models.TypeFolder,
	models.KindTabular:    models.TypeSheet,
	models.KindRelational: models.TypeBitable,
	models.KindDocument:   models.TypeDocx,
}

func (s *Store) Create(_ context.Context, spaceID, parentID, name string, kind models.Kind) (models.Descriptor, error) {
	s.Calls.Create++
	if err := s.failures[OpCreate]; err != nil {
		return models.Descriptor{}, err
	}
	if (s.mode == models.ModeTree && kind == models.KindDocument) ||
		(s.mode == models.ModeGraph && kind == models.KindFolder) {
		return models.Descriptor{}, fmt.Errorf("create %s in %s mode: %w", kind, s.mode, store.ErrUnsupported)
	}
	return s.Add(spaceID, parentID, models.Descriptor{Name: name, Kind: kind, RawType: rawTypeByKind[kind]}), nil
}

func (s *Store) Move(_ context.Context, spaceID string, node models.Descriptor, newParentID string) error {
	s.Calls.Move++
	if err := s.failures[OpMove]; err != nil {
		return err
	}
	d, ok := s.nodes[node.ID]
	if !ok {
		return fmt.Errorf("move %s: %w", node.ID, ErrNotFound)
	}
	if s.mode == models.ModeTree {
		spaceID = ""
	} else if d.SpaceID != "" {
		spaceID = d.SpaceID
	}
	s.unlink(key(spaceID, d.ParentID), d.ID)
	s.unmarkParent(spaceID, d.ParentID)
	d.ParentID = newParentID
	s.nodes[d.ID] = d
	k := key(spaceID, newParentID)
	s.order[k] = append(s.order[k], d.ID)
	s.markParent(newParentID)
	return nil
}

func (s *Store) Rename(_ context.Context, node models.Descriptor, newName string) error {
	s.Calls.Rename++
	if s.mode == models.ModeGraph {
		return fmt.Errorf("rename in graph mode: %w", store.ErrUnsupported)
	}
	if err := s.failures[OpRename]; err != nil {
		return err
	}
	d, ok := s.nodes[node.ID]
	if !ok {
		return fmt.Errorf("rename %s: %w", node.ID, ErrNotFound)
	}
	d.Name = newName
	s.nodes[d.ID] = d
	return nil
}

func (s *Store) Delete(_ context.Context, spaceID string, node models.Descriptor) error {
	s.Calls.Delete++
	if err := s.failures[OpDelete]; err != nil {
		return err
	}
	d, ok := s.nodes[node.ID]
	if !ok {
		return fmt.Errorf("delete %s: %w", node.ID, ErrNotFound)
	}
	if s.mode == models.ModeTree {
		spaceID = ""
	} else if d.SpaceID != "" {
		spaceID = d.SpaceID
	}
	s.unlink(key(spaceID, d.ParentID), d.ID)
	s.unmarkParent(spaceID, d.ParentID)
	s.removeSubtree(spaceID, d.ID)
	return nil
}

func (s *Store) URL(node models.Descriptor) (string, error) {
	if s.mode == models.ModeGraph {
		return fmt.Sprintf("https://%s/wiki/%s", s.host, node.ID), nil
	}
	return fmt.Sprintf("https://%s/%s/%s", s.host, node.RawType, node.ID), nil
}

func (s *Store) Content(_ context.Context, node models.Descriptor) (string, error) {
	text, ok := s.content[node.ID]
	if !ok {
		return "", fmt.Errorf("read content of %s: %w", node.RawType, store.ErrUnsupported)
	}
	return text, nil
}

func (s *Store) nextID() string {
	s.seq++
	if s.mode == models.ModeGraph {
		return fmt.Sprintf("wik%04d", s.seq)
	}
	return fmt.Sprintf("tok%04d", s.seq)
}

func (s *Store) unlink(k, id string) {
	ids := s.order[k]
	for i, cur := range ids {
		if cur == id {
			s.order[k] = append(ids[:i:i], ids[i+1:]...)
			return
		}
	}
}

func (s *Store) removeSubtree(spaceID, id string) {
	for _, child := range s.order[key(spaceID, id)] {
		s.removeSubtree(spaceID, child)
	}
	delete(s.order, key(spaceID, id))
	delete(s.nodes, id)
}

func (s *Store) markParent(parentID string) {
	if p, ok := s.nodes[parentID]; ok && !p.HasChildren {
		p.HasChildren = true
		if s.mode == models.ModeGraph && p.Kind == models.KindDocument {
			p.Kind = models.KindContainer
		}
		s.nodes[parentID] = p
	}
}

func (s *Store) unmarkParent(spaceID, parentID string) {
	if len(s.order[key(spaceID, parentID)]) > 0 {
		return
	}
	if p, ok := s.nodes[parentID]; ok {
		p.HasChildren = false
		if p.Kind == models.KindContainer {
			p.Kind = models.KindDocument
		}
		s.nodes[parentID] = p
	}
}
