// Package bookmark persists alias → Wiki node shortcuts in a JSON file.
//
// The file is re-read on every access and rewritten in full after every
// change. Concurrent writers are last-writer-wins.
package bookmark

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	goslug "github.com/gosimple/slug"
	"github.com/tidwall/jsonc"

	"github.com/feishukit/feishukit/internal/metrics"
	"github.com/feishukit/feishukit/pkg/models"
)

// AliasPrefix marks a bookmark reference on the command line.
const AliasPrefix = "@"

// Store reads and writes the bookmark file.
type Store struct {
	path string
}

// Entry is a bookmark together with its alias.
type Entry struct {
	Alias string
	models.Bookmark
}

// record accepts both historical layouts: "token" written by the shell and
// "node_token" written by the library facade.
type record struct {
	Token     string `json:"token,omitempty"`
	NodeToken string `json:"node_token,omitempty"`
	SpaceID   string `json:"space_id"`
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
}

// New returns a store backed by path. The file need not exist.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads every bookmark. A missing or empty file yields an empty map.
func (s *Store) Load() (map[string]models.Bookmark, error) {
	out, err := s.load()
	metrics.RecordBookmarkOp("load", err == nil)
	return out, err
}

func (s *Store) load() (map[string]models.Bookmark, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]models.Bookmark{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]models.Bookmark{}, nil
	}

	var raw map[string]record
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("parse bookmarks %s: %w", s.path, err)
	}

	out := make(map[string]models.Bookmark, len(raw))
	for alias, r := range raw {
		token := r.Token
		if token == "" {
			token = r.NodeToken
		}
		out[NormalizeAlias(alias)] = models.Bookmark{
			NodeID:  token,
			SpaceID: r.SpaceID,
			Title:   r.Title,
			URL:     r.URL,
		}
	}
	return out, nil
}

// Save replaces the file with bookmarks. The write is atomic.
func (s *Store) Save(bookmarks map[string]models.Bookmark) error {
	err := s.save(bookmarks)
	metrics.RecordBookmarkOp("save", err == nil)
	return err
}

func (s *Store) save(bookmarks map[string]models.Bookmark) error {
	raw := make(map[string]record, len(bookmarks))
	for alias, b := range bookmarks {
		raw[NormalizeAlias(alias)] = record{Token: b.NodeID, SpaceID: b.SpaceID, Title: b.Title, URL: b.URL}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create bookmark dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write bookmarks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Get looks up one alias, reloading the file.
func (s *Store) Get(alias string) (models.Bookmark, bool, error) {
	all, err := s.Load()
	if err != nil {
		return models.Bookmark{}, false, err
	}
	b, ok := all[NormalizeAlias(alias)]
	return b, ok, nil
}

// Put creates or overwrites alias and persists immediately.
func (s *Store) Put(alias string, b models.Bookmark) error {
	alias = NormalizeAlias(alias)
	if err := ValidateAlias(alias); err != nil {
		return err
	}
	all, err := s.Load()
	if err != nil {
		return err
	}
	all[alias] = b
	return s.Save(all)
}

// Delete removes alias. It reports whether the alias existed.
func (s *Store) Delete(alias string) (bool, error) {
	all, err := s.Load()
	if err != nil {
		return false, err
	}
	alias = NormalizeAlias(alias)
	if _, ok := all[alias]; !ok {
		return false, nil
	}
	delete(all, alias)
	return true, s.Save(all)
}

// List returns all bookmarks sorted by alias.
func (s *Store) List() ([]Entry, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(all))
	for alias, b := range all {
		entries = append(entries, Entry{Alias: alias, Bookmark: b})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Alias < entries[j].Alias })
	return entries, nil
}

// Aliases returns the sorted alias names.
func (s *Store) Aliases() ([]string, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Alias
	}
	return names, nil
}

// NormalizeAlias strips the leading "@" and surrounding space.
func NormalizeAlias(alias string) string {
	return strings.TrimPrefix(strings.TrimSpace(alias), AliasPrefix)
}

// InvalidAliasError reports an alias that cannot be stored or typed back.
type InvalidAliasError struct {
	Alias      string
	Reason     string
	Suggestion string
}

func (e *InvalidAliasError) Error() string {
	msg := fmt.Sprintf("invalid alias %q: %s", e.Alias, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (try %q)", e.Suggestion)
	}
	return msg
}

// ValidateAlias rejects aliases that the command line could not address:
// empty, containing whitespace, or containing the path separator.
func ValidateAlias(alias string) error {
	alias = NormalizeAlias(alias)
	if alias == "" {
		return &InvalidAliasError{Alias: alias, Reason: "empty"}
	}
	reason := ""
	switch {
	case strings.ContainsRune(alias, '/'):
		reason = "contains '/'"
	case strings.ContainsFunc(alias, unicode.IsSpace):
		reason = "contains whitespace"
	case strings.HasPrefix(alias, AliasPrefix):
		reason = "starts with '@'"
	}
	if reason == "" {
		return nil
	}
	return &InvalidAliasError{Alias: alias, Reason: reason, Suggestion: goslug.Make(alias)}
}
