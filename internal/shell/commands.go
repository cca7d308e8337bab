package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/feishukit/feishukit/pkg/bookmark"
	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/nav"
	"github.com/feishukit/feishukit/pkg/tree"
)

var touchKinds = map[string]models.Kind{
	"sheet":   models.KindTabular,
	"bitable": models.KindRelational,
	"doc":     models.KindDocument,
}

func (s *Shell) register() {
	s.add(&command{
		name: "ls", usage: "ls [-l]", summary: "list the current location",
		maxArgs: 0,
		flags:   func(fs *pflag.FlagSet) { fs.BoolP("long", "l", false, "show type, modification time and id") },
		run:     s.cmdLs,
	})
	s.add(&command{
		name: "cd", usage: "cd [name|path|..|/|@alias[/path]]", summary: "change location",
		maxArgs: 1, run: s.cmdCd,
	})
	s.add(&command{
		name: "pwd", usage: "pwd", summary: "print the current location",
		maxArgs: 0, run: s.cmdPwd,
	})
	s.add(&command{
		name: "open", usage: "open [name]", summary: "print the web link of a child or the current node",
		maxArgs: 1, run: s.cmdOpen,
	})
	s.add(&command{
		name: "cat", usage: "cat <name>", summary: "print the text of a document",
		minArgs: 1, maxArgs: 1, run: s.cmdCat,
	})
	s.add(&command{
		name: "mkdir", usage: "mkdir <name>", summary: "create a folder (drive)",
		minArgs: 1, maxArgs: 1, run: s.cmdMkdir,
	})
	s.add(&command{
		name: "touch", usage: "touch sheet|bitable|doc <name>", summary: "create a spreadsheet, bitable or document",
		minArgs: 2, maxArgs: 2, run: s.cmdTouch,
	})
	s.add(&command{
		name: "mv", usage: "mv <name> <folder|..|/>", summary: "move a child",
		minArgs: 2, maxArgs: 2, run: s.cmdMv,
	})
	s.add(&command{
		name: "rename", usage: "rename <old> <new>", summary: "rename a child (drive)",
		minArgs: 2, maxArgs: 2, run: s.cmdRename,
	})
	s.add(&command{
		name: "rm", usage: "rm [-f] <name>", summary: "delete a child",
		minArgs: 1, maxArgs: 1,
		flags: func(fs *pflag.FlagSet) { fs.BoolP("force", "f", false, "do not ask for confirmation") },
		run:   s.cmdRm,
	})
	s.add(&command{
		name: "refresh", usage: "refresh [-a]", summary: "drop the cached listing and list again",
		maxArgs: 0,
		flags:   func(fs *pflag.FlagSet) { fs.BoolP("all", "a", false, "drop every cached listing") },
		run:     s.cmdRefresh,
	})
	s.add(&command{
		name: "wiki", usage: "wiki [spaces|<space_id>|node <id>|@alias]", summary: "browse wiki spaces",
		maxArgs: 2, run: s.cmdWiki,
	})
	s.add(&command{
		name: "bm", usage: "bm [list|rm <alias>|<alias>]", summary: "manage bookmarks",
		maxArgs: 2, run: s.cmdBm,
	})
	s.add(&command{
		name: "drive", usage: "drive", summary: "return to the drive root",
		maxArgs: 0, run: s.cmdDrive,
	})
	s.add(&command{
		name: "stats", usage: "stats", summary: "show directory cache usage",
		maxArgs: 0, run: s.cmdStats,
	})
	s.add(&command{
		name: "help", aliases: []string{"?"}, usage: "help [command]", summary: "show help",
		maxArgs: 1, run: s.cmdHelp,
	})
	s.add(&command{
		name: "exit", aliases: []string{"quit", "q"}, usage: "exit", summary: "leave the shell",
		maxArgs: 0,
		run: func(context.Context, *pflag.FlagSet, []string) error {
			return ErrExit
		},
	})
}

func (s *Shell) cmdLs(ctx context.Context, fs *pflag.FlagSet, _ []string) error {
	long, _ := fs.GetBool("long")
	children, err := s.engine.ListCurrent(ctx)
	if err != nil {
		return err
	}
	s.renderListing(tree.FoldersFirst(children), long)
	return nil
}

func (s *Shell) cmdCd(ctx context.Context, _ *pflag.FlagSet, args []string) error {
	if len(args) == 0 || args[0] == "/" {
		return s.toRoot(ctx)
	}
	target := args[0]
	if nav.IsAlias(target) {
		return s.gotoAlias(ctx, target)
	}
	return s.engine.EnterPath(ctx, target)
}

// toRoot goes to the drive root in drive mode and to the space root in wiki mode.
func (s *Shell) toRoot(ctx context.Context) error {
	if s.engine.Mode() == models.ModeTree {
		return s.engine.ReturnToDrive()
	}
	if s.engine.SpaceID() == "" {
		return nav.ErrNoSpace
	}
	return s.engine.SwitchToSpace(ctx, s.engine.SpaceID())
}

func (s *Shell) gotoAlias(ctx context.Context, target string) error {
	var err error
	if strings.Contains(target, "/") {
		err = s.engine.GotoPath(ctx, target)
	} else {
		err = s.engine.GotoAlias(ctx, target)
	}
	alias, _, _ := strings.Cut(bookmark.NormalizeAlias(target), "/")
	switch {
	case errors.Is(err, nav.ErrBrokenAncestorLink):
		return &hintError{err: err, hint: fmt.Sprintf("the bookmark may point at a deleted node; remove it with 'bm rm %s'", alias)}
	case errors.Is(err, nav.ErrUnknownAlias):
		return &hintError{err: err, hint: "list bookmarks with 'bm list'"}
	}
	return err
}

func (s *Shell) cmdPwd(_ context.Context, _ *pflag.FlagSet, _ []string) error {
	line := s.engine.Pwd()
	if s.engine.Mode() == models.ModeGraph && s.engine.SpaceID() != "" {
		line += "  " + s.styles.muted.Render("(space "+s.engine.SpaceID()+")")
	}
	fmt.Fprintln(s.out, line)
	return nil
}

func (s *Shell) cmdOpen(ctx context.Context, _ *pflag.FlagSet, args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	url, err := s.engine.Open(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, url)
	return nil
}

func (s *Shell) cmdCat(ctx context.Context, _ *pflag.FlagSet, args []string) error {
	text, err := s.engine.Content(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(s.out)
	}
	return nil
}

func (s *Shell) cmdMkdir(ctx context.Context, _ *pflag.FlagSet, args []string) error {
	d, err := s.engine.Create(ctx, args[0], models.KindFolder)
	if err != nil {
		return err
	}
	s.printCreated(d)
	return nil
}

func (s *Shell) cmdTouch(ctx context.Context, _ *pflag.FlagSet, args []string) error {
	kind, ok := touchKinds[args[0]]
	if !ok {
		return &UsageError{Usage: "touch sheet|bitable|doc <name>", Reason: fmt.Sprintf("unknown type %q", args[0])}
	}
	d, err := s.engine.Create(ctx, args[1], kind)
	if err != nil {
		return err
	}
	s.printCreated(d)
	return nil
}

func (s *Shell) printCreated(d models.Descriptor) {
	s.printf("created %s %s %s\n", kindLabel(d), s.styles.bold.Render(d.Name), s.styles.muted.Render("("+d.ID+")"))
}

func (s *Shell) cmdMv(ctx context.Context, _ *pflag.FlagSet, args []string) error {
	if err := s.engine.Move(ctx, args[0], args[1]); err != nil {
		return err
	}
	s.printf("moved %s to %s\n", s.styles.bold.Render(args[0]), args[1])
	return nil
}

func (s *Shell) cmdRename(ctx context.Context, _ *pflag.FlagSet, args []string) error {
	if err := s.engine.Rename(ctx, args[0], args[1]); err != nil {
		return err
	}
	s.printf("renamed %s to %s\n", args[0], s.styles.bold.Render(args[1]))
	return nil
}

func (s *Shell) cmdRm(ctx context.Context, fs *pflag.FlagSet, args []string) error {
	force, _ := fs.GetBool("force")
	name := args[0]
	node, err := s.engine.Lookup(ctx, name)
	if err != nil {
		return err
	}
	if !force {
		if s.confirm == nil {
			return &UsageError{Usage: "rm [-f] <name>", Reason: "no terminal to confirm on, pass -f"}
		}
		ok, err := s.confirm(fmt.Sprintf("delete %s %q? [y/N] ", kindLabel(node), node.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(s.out, s.styles.muted.Render("cancelled"))
			return nil
		}
	}
	d, err := s.engine.Delete(ctx, name)
	if err != nil {
		return err
	}
	s.printf("deleted %s %s\n", kindLabel(d), s.styles.bold.Render(d.Name))
	return nil
}

func (s *Shell) cmdRefresh(ctx context.Context, fs *pflag.FlagSet, _ []string) error {
	if all, _ := fs.GetBool("all"); all {
		n := s.engine.ClearCaches()
		fmt.Fprintln(s.out, s.styles.muted.Render(fmt.Sprintf("dropped %d cached listings", n)))
	}
	children, err := s.engine.Refresh(ctx)
	if err != nil {
		return err
	}
	s.renderListing(tree.FoldersFirst(children), false)
	return nil
}

func (s *Shell) cmdWiki(ctx context.Context, _ *pflag.FlagSet, args []string) error {
	if len(args) == 0 {
		if id := s.engine.SpaceID(); id != "" {
			return s.engine.SwitchToSpace(ctx, id)
		}
		return s.listSpaces(ctx)
	}
	switch sub := args[0]; {
	case sub == "spaces":
		if len(args) != 1 {
			return &UsageError{Usage: "wiki spaces"}
		}
		return s.listSpaces(ctx)
	case sub == "node":
		if len(args) != 2 {
			return &UsageError{Usage: "wiki node <id>"}
		}
		return s.engine.JumpToNode(ctx, args[1])
	case nav.IsAlias(sub):
		if len(args) != 1 {
			return &UsageError{Usage: "wiki @alias"}
		}
		return s.gotoAlias(ctx, sub)
	default:
		if len(args) != 1 {
			return &UsageError{Usage: "wiki <space_id>"}
		}
		return s.engine.SwitchToSpace(ctx, sub)
	}
}

func (s *Shell) listSpaces(ctx context.Context) error {
	spaces, err := s.engine.Spaces(ctx)
	if err != nil {
		return err
	}
	s.renderSpaces(spaces)
	return nil
}

func (s *Shell) cmdBm(_ context.Context, _ *pflag.FlagSet, args []string) error {
	if len(args) == 0 || (args[0] == "list" && len(args) == 1) {
		entries, err := s.engine.Bookmarks()
		if err != nil {
			return err
		}
		s.renderBookmarks(entries)
		return nil
	}
	if args[0] == "rm" {
		if len(args) != 2 {
			return &UsageError{Usage: "bm rm <alias>"}
		}
		removed, err := s.engine.DeleteBookmark(args[1])
		if err != nil {
			return err
		}
		alias := bookmark.AliasPrefix + bookmark.NormalizeAlias(args[1])
		if !removed {
			return fmt.Errorf("%s: %w", alias, nav.ErrUnknownAlias)
		}
		s.printf("removed %s\n", alias)
		return nil
	}
	if len(args) != 1 {
		return &UsageError{Usage: "bm <alias>"}
	}

	b, err := s.engine.SaveBookmark(args[0])
	if err != nil {
		return err
	}
	s.printf("saved %s %s %s\n",
		s.styles.accent.Render(bookmark.AliasPrefix+bookmark.NormalizeAlias(args[0])),
		b.Title, s.styles.muted.Render("("+b.NodeID+")"))
	return nil
}

func (s *Shell) cmdDrive(_ context.Context, _ *pflag.FlagSet, _ []string) error {
	return s.engine.ReturnToDrive()
}

func (s *Shell) cmdStats(_ context.Context, _ *pflag.FlagSet, _ []string) error {
	s.renderStats(s.engine.CacheStats())
	return nil
}

func (s *Shell) cmdHelp(_ context.Context, _ *pflag.FlagSet, args []string) error {
	if len(args) == 1 {
		c, ok := s.lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown command %q", args[0])
		}
		s.printf("%s\n  %s\n", s.styles.bold.Render(c.usage), c.summary)
		if len(c.aliases) > 0 {
			s.printf("  aliases: %s\n", strings.Join(c.aliases, ", "))
		}
		return nil
	}
	rows := make([][]string, 0, len(s.commands))
	for _, c := range s.commands {
		rows = append(rows, []string{c.usage, c.summary})
	}
	s.renderTable([]string{"COMMAND", "DESCRIPTION"}, rows)
	return nil
}
