package nav

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/feishukit/feishukit/pkg/bookmark"
	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/tree"
)

var errNoBookmarks = errors.New("bookmark file is not configured")

// IsAlias reports whether token starts with the bookmark marker.
func IsAlias(token string) bool {
	return strings.HasPrefix(token, bookmark.AliasPrefix)
}

// ResolveAlias looks up a bookmark (with or without the leading "@") and
// rebuilds its ancestor chain. The bookmark file is re-read on every call.
// An unknown alias fails without contacting the wiki.
func (e *Engine) ResolveAlias(ctx context.Context, token string) (Location, error) {
	chain, _, err := e.resolveAlias(ctx, token)
	return chain, err
}

func (e *Engine) resolveAlias(ctx context.Context, token string) (Location, string, error) {
	alias := bookmark.NormalizeAlias(token)
	if e.bookmarks == nil {
		return nil, "", fmt.Errorf("@%s: %w", alias, ErrUnknownAlias)
	}
	b, ok, err := e.bookmarks.Get(alias)
	if err != nil {
		return nil, "", fmt.Errorf("load bookmarks: %w", err)
	}
	if !ok {
		return nil, "", fmt.Errorf("@%s: %w", alias, ErrUnknownAlias)
	}
	if e.graph == nil {
		return nil, "", &UnsupportedError{Op: "bookmark", Mode: models.ModeGraph}
	}

	chain, leaf, err := ancestorChain(ctx, e.graph, b.NodeID)
	if err != nil {
		return chain, "", err
	}
	spaceID := leaf.SpaceID
	if spaceID == "" {
		spaceID = b.SpaceID
	}
	return chain, spaceID, nil
}

// GotoAlias jumps to a bookmarked node.
func (e *Engine) GotoAlias(ctx context.Context, token string) error {
	chain, spaceID, err := e.resolveAlias(ctx, token)
	if err != nil {
		return err
	}
	e.applyChain(chain, spaceID)
	return nil
}

// ResolvePath resolves "@alias/a/b": the alias, then each component by
// exact name beneath it. The current location is not changed.
func (e *Engine) ResolvePath(ctx context.Context, path string) (Location, string, error) {
	head, rest, _ := strings.Cut(path, "/")
	chain, spaceID, err := e.resolveAlias(ctx, head)
	if err != nil {
		return nil, "", err
	}
	for _, name := range tree.SplitPath(rest) {
		children, err := e.listChildren(ctx, models.ModeGraph, spaceID, chain.TailID())
		if err != nil {
			return nil, "", err
		}
		d, ok := tree.FindByName(children, name)
		if !ok {
			return nil, "", notFound(name)
		}
		chain = chain.push(Element{Name: d.Name, ID: d.ID, Mode: models.ModeGraph})
	}
	return chain, spaceID, nil
}

// GotoPath moves to "@alias/a/b".
func (e *Engine) GotoPath(ctx context.Context, path string) error {
	chain, spaceID, err := e.ResolvePath(ctx, path)
	if err != nil {
		return err
	}
	e.applyChain(chain, spaceID)
	return nil
}

// SaveBookmark stores the current wiki node under alias.
func (e *Engine) SaveBookmark(alias string) (models.Bookmark, error) {
	tail, ok := e.loc.Tail()
	if e.loc.Mode() != models.ModeGraph || !ok || tail.ID == "" {
		return models.Bookmark{}, &UnsupportedError{Op: "bookmark", Mode: e.loc.Mode()}
	}
	if e.bookmarks == nil {
		return models.Bookmark{}, errNoBookmarks
	}

	b := models.Bookmark{NodeID: tail.ID, SpaceID: e.spaceID, Title: tail.Name}
	if e.graph != nil {
		if url, err := e.graph.URL(models.Descriptor{ID: tail.ID}); err == nil {
			b.URL = url
		}
	}
	if err := e.bookmarks.Put(alias, b); err != nil {
		return models.Bookmark{}, err
	}
	return b, nil
}

// DeleteBookmark removes alias, reporting whether it existed.
func (e *Engine) DeleteBookmark(alias string) (bool, error) {
	if e.bookmarks == nil {
		return false, errNoBookmarks
	}
	return e.bookmarks.Delete(alias)
}

// Bookmarks lists saved bookmarks sorted by alias.
func (e *Engine) Bookmarks() ([]bookmark.Entry, error) {
	if e.bookmarks == nil {
		return nil, nil
	}
	return e.bookmarks.List()
}
