package shell

import (
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/feishukit/feishukit/pkg/bookmark"
	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/tree"
)

var subcommands = map[string][]string{
	"touch": {"sheet", "bitable", "doc"},
	"wiki":  {"spaces", "node"},
	"bm":    {"list", "rm"},
}

// completer offers candidates from local state only: command names,
// bookmark aliases and listings already in the directory cache.
type completer struct {
	s *Shell
}

var _ readline.AutoCompleter = completer{}

// Completer returns the tab completer for readline.
func (s *Shell) Completer() readline.AutoCompleter {
	return completer{s: s}
}

// Do returns the suffixes that complete the word under the cursor and the
// length of that word, as readline expects.
func (c completer) Do(line []rune, pos int) ([][]rune, int) {
	prev, word, ok := splitForCompletion(string(line[:pos]))
	if !ok {
		return nil, 0
	}
	candidates := c.s.candidates(prev, unescapeArg(word))

	var out [][]rune
	for _, cand := range candidates {
		escaped := escapeArg(cand)
		if !strings.HasPrefix(escaped, word) {
			continue
		}
		out = append(out, []rune(escaped[len(word):]+" "))
	}
	return out, len([]rune(word))
}

// splitForCompletion splits text into the complete words before the cursor
// and the partial word under it, which is returned still escaped.
func splitForCompletion(text string) ([]string, string, bool) {
	start := 0
	escaped := false
	for i, r := range text {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == ' ' || r == '\t':
			start = i + 1
		}
	}
	prev, err := splitArgs(text[:start])
	if err != nil {
		return nil, "", false
	}
	return prev, text[start:], true
}

// candidates lists the full names that may complete prefix after prev.
func (s *Shell) candidates(prev []string, prefix string) []string {
	if len(prev) == 0 {
		return withPrefix(s.commandNames(), prefix)
	}
	cmd, ok := s.lookup(prev[0])
	if !ok {
		return nil
	}

	var args []string
	for _, a := range prev[1:] {
		if !strings.HasPrefix(a, "-") {
			args = append(args, a)
		}
	}

	switch cmd.name {
	case "help":
		if len(args) == 0 {
			return withPrefix(s.commandNames(), prefix)
		}
	case "cd":
		if len(args) == 0 {
			if strings.HasPrefix(prefix, bookmark.AliasPrefix) {
				return s.aliasCandidates(prefix, true)
			}
			return append(s.childCandidates(prefix, true), withPrefix([]string{"..", "/"}, prefix)...)
		}
	case "open", "cat", "rm", "rename":
		if len(args) == 0 {
			return s.childCandidates(prefix, false)
		}
	case "mv":
		switch len(args) {
		case 0:
			return s.childCandidates(prefix, false)
		case 1:
			return append(s.childCandidates(prefix, true), withPrefix([]string{"..", "/"}, prefix)...)
		}
	case "touch":
		if len(args) == 0 {
			return withPrefix(subcommands["touch"], prefix)
		}
	case "wiki":
		if len(args) == 0 {
			if strings.HasPrefix(prefix, bookmark.AliasPrefix) {
				return s.aliasCandidates(prefix, true)
			}
			return withPrefix(subcommands["wiki"], prefix)
		}
	case "bm":
		switch {
		case len(args) == 0:
			return withPrefix(subcommands["bm"], prefix)
		case len(args) == 1 && args[0] == "rm":
			return s.aliasCandidates(prefix, false)
		}
	}
	return nil
}

// childCandidates returns cached child names. With dirsOnly, drive mode
// offers folders only; every wiki node can hold children.
func (s *Shell) childCandidates(prefix string, dirsOnly bool) []string {
	children, ok := s.engine.CachedChildren()
	if !ok {
		return nil
	}
	foldersOnly := dirsOnly && s.engine.Mode() == models.ModeTree
	return tree.NamesWithPrefix(children, prefix, foldersOnly)
}

func (s *Shell) aliasCandidates(prefix string, marked bool) []string {
	entries, err := s.engine.Bookmarks()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Alias
		if marked {
			name = bookmark.AliasPrefix + name
		}
		names = append(names, name)
	}
	return withPrefix(names, prefix)
}

func withPrefix(names []string, prefix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
