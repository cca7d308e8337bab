// Package nav implements the dual-mode navigator over Drive (a strict tree)
// and Wiki (a node graph with upward parent lookup).
//
// An Engine is owned by a single caller and is not safe for concurrent use.
package nav

import (
	"context"
	"errors"
	"fmt"

	"github.com/feishukit/feishukit/internal/logging"
	"github.com/feishukit/feishukit/pkg/bookmark"
	"github.com/feishukit/feishukit/pkg/cache"
	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/store"
	"github.com/feishukit/feishukit/pkg/tree"
)

// Start modes.
const (
	StartAuto  = "auto"
	StartDrive = "drive"
	StartWiki  = "wiki"
)

// Config wires an Engine. Tree and Graph may each be nil when that side is
// not configured.
type Config struct {
	Tree        store.Store
	Graph       store.GraphStore
	Bookmarks   *bookmark.Store
	RootID      string
	RootName    string
	DefaultMode string
}

// Engine holds the current Location, the selected space and one directory
// cache per mode.
type Engine struct {
	tree      store.Store
	graph     store.GraphStore
	bookmarks *bookmark.Store

	rootID      string
	rootName    string
	defaultMode string

	loc        Location
	spaceID    string
	spaceNames map[string]string

	treeCache  *cache.DirCache
	graphCache *cache.DirCache
}

// New creates an engine. It starts at the Drive root when a tree store is
// configured, otherwise in wiki mode with no space; call Start to probe.
func New(cfg Config) *Engine {
	rootName := cfg.RootName
	if rootName == "" {
		rootName = DefaultRootName(cfg.RootID)
	}
	mode := cfg.DefaultMode
	if mode == "" {
		mode = StartAuto
	}
	e := &Engine{
		tree:        cfg.Tree,
		graph:       cfg.Graph,
		bookmarks:   cfg.Bookmarks,
		rootID:      cfg.RootID,
		rootName:    rootName,
		defaultMode: mode,
		spaceNames:  make(map[string]string),
		treeCache:   cache.New(models.ModeTree),
		graphCache:  cache.New(models.ModeGraph),
	}
	if e.tree != nil && mode != StartWiki {
		e.loc = e.treeRoot()
	}
	return e
}

// DefaultRootName labels the Drive root after the last characters of its token.
func DefaultRootName(rootID string) string {
	if rootID == "" {
		return "Drive"
	}
	return "…" + lastN(rootID, 8)
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func (e *Engine) treeRoot() Location {
	return Location{{Name: e.rootName, ID: e.rootID, Mode: models.ModeTree}}
}

// Start picks the initial location. In auto mode the Drive root is probed
// and wiki mode is used when the probe fails; the probe error is returned
// so the caller can explain the fallback.
func (e *Engine) Start(ctx context.Context) error {
	if e.defaultMode == StartWiki || e.tree == nil {
		e.loc = nil
		if e.defaultMode == StartDrive {
			return &UnsupportedError{Op: "drive", Mode: models.ModeTree}
		}
		return nil
	}

	e.loc = e.treeRoot()
	_, err := e.ListCurrent(ctx)
	if err == nil {
		return nil
	}
	logging.WithContext(ctx).Warn("drive root probe failed", logging.Err(err))
	if e.defaultMode == StartAuto && e.graph != nil {
		e.loc = nil
	}
	return err
}

// Location returns a copy of the current location.
func (e *Engine) Location() Location {
	return e.loc.Clone()
}

// Mode returns the current mode.
func (e *Engine) Mode() models.Mode {
	return e.loc.Mode()
}

// SpaceID returns the selected Wiki space, or "".
func (e *Engine) SpaceID() string {
	return e.spaceID
}

// Pwd renders the current location.
func (e *Engine) Pwd() string {
	return e.loc.String()
}

// HasDrive reports whether a tree store is configured.
func (e *Engine) HasDrive() bool {
	return e.tree != nil
}

// HasWiki reports whether a graph store is configured.
func (e *Engine) HasWiki() bool {
	return e.graph != nil
}

func (e *Engine) storeFor(mode models.Mode, op string) (store.Store, error) {
	switch mode {
	case models.ModeTree:
		if e.tree != nil {
			return e.tree, nil
		}
	case models.ModeGraph:
		if e.graph != nil {
			return e.graph, nil
		}
	}
	return nil, &UnsupportedError{Op: op, Mode: mode}
}

func (e *Engine) cacheFor(mode models.Mode) *cache.DirCache {
	if mode == models.ModeTree {
		return e.treeCache
	}
	return e.graphCache
}

// cacheKey keys a listing. Every space root shares the parent id "", so
// graph roots are keyed by space instead.
func cacheKey(mode models.Mode, spaceID, parentID string) string {
	if mode == models.ModeGraph && parentID == "" {
		return "space:" + spaceID
	}
	return parentID
}

func (e *Engine) currentKey() string {
	return cacheKey(e.loc.Mode(), e.spaceID, e.loc.TailID())
}

// ListCurrent returns the children of the current location, from cache when present.
func (e *Engine) ListCurrent(ctx context.Context) ([]models.Descriptor, error) {
	return e.listChildren(ctx, e.loc.Mode(), e.spaceID, e.loc.TailID())
}

func (e *Engine) listChildren(ctx context.Context, mode models.Mode, spaceID, parentID string) ([]models.Descriptor, error) {
	st, err := e.storeFor(mode, "list")
	if err != nil {
		return nil, err
	}
	if mode == models.ModeGraph && spaceID == "" && parentID == "" {
		return nil, ErrNoSpace
	}
	if mode == models.ModeTree {
		spaceID = ""
	}

	c := e.cacheFor(mode)
	key := cacheKey(mode, spaceID, parentID)
	if children, ok := c.Get(key); ok {
		return children, nil
	}

	children, err := st.ListChildren(ctx, spaceID, parentID)
	if err != nil {
		return nil, &RemoteError{Op: "list", Err: err}
	}
	c.Put(key, children)
	logging.WithContext(ctx).Debug("listing cached",
		logging.String("mode", string(mode)),
		logging.String("key", key),
		logging.Int("children", len(children)))
	return children, nil
}

// CachedChildren returns the current listing only if it is already cached.
// Completion uses it so that pressing tab never hits the network.
func (e *Engine) CachedChildren() ([]models.Descriptor, bool) {
	return e.cacheFor(e.loc.Mode()).Peek(e.currentKey())
}

// Lookup finds a child of the current location by exact name.
func (e *Engine) Lookup(ctx context.Context, name string) (models.Descriptor, error) {
	children, err := e.ListCurrent(ctx)
	if err != nil {
		return models.Descriptor{}, err
	}
	d, ok := tree.FindByName(children, name)
	if !ok {
		return models.Descriptor{}, notFound(name)
	}
	return d, nil
}

// Enter descends into the named child. In drive mode only folders can be
// entered; any wiki node can.
func (e *Engine) Enter(ctx context.Context, name string) error {
	d, err := e.Lookup(ctx, name)
	if err != nil {
		return err
	}
	mode := e.loc.Mode()
	if mode == models.ModeTree && !d.IsFolder() {
		return fmt.Errorf("%q: %w", name, ErrNotAFolder)
	}
	e.loc = e.loc.push(Element{Name: d.Name, ID: d.ID, Mode: mode})
	return nil
}

// EnterPath walks a relative path such as "a/../b/c". On failure the
// location is left where it was.
func (e *Engine) EnterPath(ctx context.Context, path string) error {
	saved := e.loc
	for _, part := range tree.SplitPath(path) {
		var err error
		switch part {
		case ".":
			continue
		case "..":
			err = e.Up()
		default:
			err = e.Enter(ctx, part)
		}
		if err != nil {
			e.loc = saved
			return err
		}
	}
	return nil
}

// Up moves to the parent. The Drive root and an empty wiki location cannot be left.
func (e *Engine) Up() error {
	n := len(e.loc)
	if n == 0 || (e.loc.Mode() == models.ModeTree && n <= 1) {
		return ErrAtRoot
	}
	e.loc = e.loc[:n-1].Clone()
	return nil
}

// ReturnToDrive resets the location to the Drive root.
func (e *Engine) ReturnToDrive() error {
	if e.tree == nil {
		return &UnsupportedError{Op: "drive", Mode: models.ModeTree}
	}
	e.loc = e.treeRoot()
	return nil
}

// Spaces lists the Wiki spaces visible to the app.
func (e *Engine) Spaces(ctx context.Context) ([]models.Space, error) {
	if e.graph == nil {
		return nil, &UnsupportedError{Op: "list spaces", Mode: models.ModeGraph}
	}
	spaces, err := e.graph.ListSpaces(ctx)
	if err != nil {
		return nil, &RemoteError{Op: "list spaces", Err: err}
	}
	for _, s := range spaces {
		e.spaceNames[s.ID] = s.Name
	}
	return spaces, nil
}

// SwitchToSpace moves to the root of a Wiki space. Caches are kept.
func (e *Engine) SwitchToSpace(ctx context.Context, spaceID string) error {
	if e.graph == nil {
		return &UnsupportedError{Op: "wiki", Mode: models.ModeGraph}
	}
	if spaceID == "" {
		return ErrNoSpace
	}
	e.loc = Location{{Name: e.spaceName(ctx, spaceID), ID: "", Mode: models.ModeGraph}}
	e.spaceID = spaceID
	return nil
}

func (e *Engine) spaceName(ctx context.Context, spaceID string) string {
	if name, ok := e.spaceNames[spaceID]; ok && name != "" {
		return name
	}
	if _, err := e.Spaces(ctx); err != nil {
		logging.WithContext(ctx).Debug("space name lookup failed", logging.Err(err))
	}
	if name, ok := e.spaceNames[spaceID]; ok && name != "" {
		return name
	}
	return "wiki:" + lastN(spaceID, 8)
}

// supported reports whether op may run in mode. Refusals happen before any
// remote call.
func supported(mode models.Mode, op string, kind models.Kind) bool {
	switch {
	case mode == models.ModeGraph && op == "rename":
		return false
	case op == "create" && kind == models.KindContainer:
		return false
	case mode == models.ModeGraph && op == "create" && kind == models.KindFolder:
		return false
	case mode == models.ModeTree && op == "create" && kind == models.KindDocument:
		return false
	}
	return true
}

func (e *Engine) mutationStore(op string, kind models.Kind) (store.Store, models.Mode, error) {
	mode := e.loc.Mode()
	if !supported(mode, op, kind) {
		label := op
		if kind != "" {
			label = op + " " + string(kind)
		}
		return nil, mode, &UnsupportedError{Op: label, Mode: mode}
	}
	st, err := e.storeFor(mode, op)
	if err != nil {
		return nil, mode, err
	}
	if mode == models.ModeGraph && e.spaceID == "" {
		return nil, mode, ErrNoSpace
	}
	return st, mode, nil
}

// Create makes a new child of the current location.
func (e *Engine) Create(ctx context.Context, name string, kind models.Kind) (models.Descriptor, error) {
	st, mode, err := e.mutationStore("create", kind)
	if err != nil {
		return models.Descriptor{}, err
	}
	if name == "" {
		return models.Descriptor{}, errors.New("name must not be empty")
	}

	d, err := st.Create(ctx, e.spaceID, e.loc.TailID(), name, kind)
	if err != nil {
		return models.Descriptor{}, &RemoteError{Op: "create", Err: err}
	}
	e.cacheFor(mode).Invalidate(e.currentKey())
	return d, nil
}

// Move moves the named child into dst: a sibling name, ".." for the parent
// of the current location, or "/" for the mode root.
func (e *Engine) Move(ctx context.Context, src, dst string) error {
	st, mode, err := e.mutationStore("move", "")
	if err != nil {
		return err
	}
	node, err := e.Lookup(ctx, src)
	if err != nil {
		return err
	}
	dstID, err := e.moveTarget(ctx, mode, dst)
	if err != nil {
		return err
	}
	if dstID == node.ID {
		return fmt.Errorf("cannot move %q into itself: %w", src, ErrInvalidTarget)
	}
	if dstID == e.loc.TailID() {
		return fmt.Errorf("%q is already there: %w", src, ErrInvalidTarget)
	}

	if err := st.Move(ctx, e.spaceID, node, dstID); err != nil {
		return &RemoteError{Op: "move", Err: err}
	}
	e.cacheFor(mode).Invalidate(e.currentKey(), cacheKey(mode, e.spaceID, dstID))
	return nil
}

func (e *Engine) moveTarget(ctx context.Context, mode models.Mode, dst string) (string, error) {
	n := len(e.loc)
	switch dst {
	case "":
		return "", fmt.Errorf("missing destination: %w", ErrInvalidTarget)
	case "/":
		if mode == models.ModeTree {
			return e.rootID, nil
		}
		return "", nil
	case "..":
		if mode == models.ModeTree {
			if n <= 1 {
				return "", ErrAtRoot
			}
			return e.loc[n-2].ID, nil
		}
		switch {
		case n >= 2:
			return e.loc[n-2].ID, nil
		case n == 1 && e.loc[0].ID != "":
			return "", nil
		}
		return "", ErrAtRoot
	}

	target, err := e.Lookup(ctx, dst)
	if err != nil {
		return "", err
	}
	if mode == models.ModeTree && !target.IsFolder() {
		return "", fmt.Errorf("%q: %w", dst, ErrNotAFolder)
	}
	return target.ID, nil
}

// Rename renames a child. Wiki nodes cannot be renamed.
func (e *Engine) Rename(ctx context.Context, oldName, newName string) error {
	st, mode, err := e.mutationStore("rename", "")
	if err != nil {
		return err
	}
	if newName == "" {
		return errors.New("new name must not be empty")
	}
	node, err := e.Lookup(ctx, oldName)
	if err != nil {
		return err
	}
	if err := st.Rename(ctx, node, newName); err != nil {
		return &RemoteError{Op: "rename", Err: err}
	}
	e.cacheFor(mode).Invalidate(e.currentKey())
	return nil
}

// Delete removes the named child.
func (e *Engine) Delete(ctx context.Context, name string) (models.Descriptor, error) {
	st, mode, err := e.mutationStore("delete", "")
	if err != nil {
		return models.Descriptor{}, err
	}
	node, err := e.Lookup(ctx, name)
	if err != nil {
		return models.Descriptor{}, err
	}
	if err := st.Delete(ctx, e.spaceID, node); err != nil {
		return models.Descriptor{}, &RemoteError{Op: "delete", Err: err}
	}
	e.cacheFor(mode).Invalidate(e.currentKey())
	return node, nil
}

// Refresh drops the current listing and fetches it again.
func (e *Engine) Refresh(ctx context.Context) ([]models.Descriptor, error) {
	e.cacheFor(e.loc.Mode()).Invalidate(e.currentKey())
	return e.ListCurrent(ctx)
}

// Open returns the web link of a child, or of the current location when
// name is "" or ".".
func (e *Engine) Open(ctx context.Context, name string) (string, error) {
	mode := e.loc.Mode()
	st, err := e.storeFor(mode, "open")
	if err != nil {
		return "", err
	}

	var node models.Descriptor
	if name == "" || name == "." {
		tail, ok := e.loc.Tail()
		if !ok || tail.ID == "" {
			return "", fmt.Errorf("no node to open: %w", ErrAtRoot)
		}
		node = models.Descriptor{ID: tail.ID, Name: tail.Name}
		if mode == models.ModeTree {
			node.Kind, node.RawType = models.KindFolder, models.TypeFolder
		}
	} else {
		node, err = e.Lookup(ctx, name)
		if err != nil {
			return "", err
		}
	}
	return st.URL(node)
}

// Content returns the plain text of a document child.
func (e *Engine) Content(ctx context.Context, name string) (string, error) {
	mode := e.loc.Mode()
	st, err := e.storeFor(mode, "cat")
	if err != nil {
		return "", err
	}
	reader, ok := st.(store.ContentReader)
	if !ok {
		return "", &UnsupportedError{Op: "cat", Mode: mode}
	}
	node, err := e.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	text, err := reader.Content(ctx, node)
	if errors.Is(err, store.ErrUnsupported) {
		return "", &UnsupportedError{Op: "cat " + node.RawType, Mode: mode}
	}
	if err != nil {
		return "", &RemoteError{Op: "cat", Err: err}
	}
	return text, nil
}

// CacheStats returns usage of both directory caches.
func (e *Engine) CacheStats() []cache.Stats {
	return []cache.Stats{e.treeCache.Stats(), e.graphCache.Stats()}
}

// ClearCaches drops every cached listing and returns how many were dropped.
func (e *Engine) ClearCaches() int {
	return e.treeCache.Clear() + e.graphCache.Clear()
}
