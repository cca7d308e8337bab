package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/chzyer/readline"

	"github.com/feishukit/feishukit/pkg/bookmark"
	"github.com/feishukit/feishukit/pkg/client"
	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/nav"
	"github.com/feishukit/feishukit/pkg/store/memstore"
)

const engSpace = "7000000000000000001"

type fixture struct {
	sh    *Shell
	out   *bytes.Buffer
	tree  *memstore.Store
	graph *memstore.Store
	eng   *nav.Engine
}

func newFixture(t *testing.T, confirm func(string) (bool, error)) *fixture {
	t.Helper()
	ts, gs := memstore.Demo()
	eng := nav.New(nav.Config{
		Tree:      ts,
		Graph:     gs,
		Bookmarks: bookmark.New(filepath.Join(t.TempDir(), "bookmarks.json")),
		RootID:    memstore.DemoRootID,
		RootName:  "Root",
	})
	out := &bytes.Buffer{}
	return &fixture{
		sh:    New(eng, Options{Out: out, Confirm: confirm}),
		out:   out,
		tree:  ts,
		graph: gs,
		eng:   eng,
	}
}

func (f *fixture) run(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := f.sh.Execute(context.Background(), line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
}

func TestLsAndCd(t *testing.T) {
	f := newFixture(t, nil)
	f.run(t, "ls")
	got := f.out.String()
	for _, want := range []string{"Reports/", "Archive/", "Meeting Notes", "[doc]"} {
		if !strings.Contains(got, want) {
			t.Errorf("ls output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Archive/") > strings.Index(got, "Meeting Notes") {
		t.Errorf("folders should be listed first:\n%s", got)
	}

	f.run(t, "cd Reports")
	if f.eng.Pwd() != "/Root/Reports" {
		t.Fatalf("pwd = %s", f.eng.Pwd())
	}
	f.out.Reset()
	f.run(t, "ls -l")
	if !strings.Contains(f.out.String(), "shtQ1") || !strings.Contains(f.out.String(), "TYPE") {
		t.Errorf("long listing:\n%s", f.out.String())
	}

	f.run(t, "cd ..", "cd Reports/../Archive")
	if f.eng.Pwd() != "/Root/Archive" {
		t.Errorf("pwd = %s", f.eng.Pwd())
	}
	f.run(t, "cd")
	if f.eng.Pwd() != "/Root" {
		t.Errorf("cd with no args should go to the root, got %s", f.eng.Pwd())
	}
}

func TestCd_Errors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.sh.Execute(ctx, `cd "Meeting Notes"`); !errors.Is(err, nav.ErrNotAFolder) {
		t.Errorf("err = %v, want ErrNotAFolder", err)
	}
	if err := f.sh.Execute(ctx, "cd Nope"); !errors.Is(err, nav.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := f.sh.Execute(ctx, "cd .."); !errors.Is(err, nav.ErrAtRoot) {
		t.Errorf("err = %v, want ErrAtRoot", err)
	}
}

func TestUsageAndUnknownCommands(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var ue *UsageError
	for _, line := range []string{"mkdir", "mv a", "ls extra", "ls --bogus", "touch zip x", "pwd x"} {
		if err := f.sh.Execute(ctx, line); !errors.As(err, &ue) {
			t.Errorf("%q: err = %v, want UsageError", line, err)
		}
	}
	if err := f.sh.Execute(ctx, "frobnicate"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("err = %v", err)
	}
	if err := f.sh.Execute(ctx, `cd "Reports`); err == nil {
		t.Error("unterminated quote should fail")
	}
	if err := f.sh.Execute(ctx, "   "); err != nil {
		t.Errorf("blank line: %v", err)
	}
	for _, line := range []string{"exit", "quit", "q"} {
		if err := f.sh.Execute(ctx, line); !errors.Is(err, ErrExit) {
			t.Errorf("%q: err = %v, want ErrExit", line, err)
		}
	}
}

func TestMutations(t *testing.T) {
	f := newFixture(t, nil)
	f.run(t, "mkdir Drafts", "touch sheet Plan", "cd Reports", `mv Q1\ Budget ..`, "cd ..", `rename "Q1 Budget" "Q1 Final"`)

	names := map[string]bool{}
	children, err := f.eng.ListCurrent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range children {
		names[c.Name] = true
	}
	for _, want := range []string{"Drafts", "Plan", "Q1 Final"} {
		if !names[want] {
			t.Errorf("missing %q in %v", want, names)
		}
	}
	if names["Q1 Budget"] {
		t.Error("old name still listed")
	}
	if !strings.Contains(f.out.String(), "created folder Drafts") {
		t.Errorf("output:\n%s", f.out.String())
	}
}

func TestRm_Confirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("declined", func(t *testing.T) {
		var asked string
		f := newFixture(t, func(prompt string) (bool, error) {
			asked = prompt
			return false, nil
		})
		f.run(t, "rm Archive")
		if !strings.Contains(asked, `"Archive"`) {
			t.Errorf("prompt = %q", asked)
		}
		if _, ok := f.tree.Node("fldArchive"); !ok {
			t.Error("declined delete removed the node")
		}
		if !strings.Contains(f.out.String(), "cancelled") {
			t.Errorf("output:\n%s", f.out.String())
		}
	})

	t.Run("accepted", func(t *testing.T) {
		f := newFixture(t, func(string) (bool, error) { return true, nil })
		f.run(t, "rm Archive")
		if _, ok := f.tree.Node("fldArchive"); ok {
			t.Error("node still present")
		}
	})

	t.Run("no terminal", func(t *testing.T) {
		f := newFixture(t, nil)
		var ue *UsageError
		if err := f.sh.Execute(ctx, "rm Archive"); !errors.As(err, &ue) {
			t.Fatalf("err = %v, want UsageError", err)
		}
		f.run(t, "rm -f Archive")
		if _, ok := f.tree.Node("fldArchive"); ok {
			t.Error("forced delete did not remove the node")
		}
	})

	t.Run("missing name never prompts", func(t *testing.T) {
		f := newFixture(t, func(string) (bool, error) {
			t.Error("confirm called")
			return true, nil
		})
		if err := f.sh.Execute(ctx, "rm Nope"); !errors.Is(err, nav.ErrNotFound) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestWikiAndBookmarks(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.run(t, "wiki spaces")
	if !strings.Contains(f.out.String(), "Engineering") {
		t.Errorf("spaces:\n%s", f.out.String())
	}
	f.run(t, "wiki "+engSpace, "cd Architecture/Storage", "bm storage")
	if f.eng.Mode() != models.ModeGraph {
		t.Fatal("expected wiki mode")
	}

	f.run(t, "drive")
	if f.eng.Mode() != models.ModeTree {
		t.Fatal("drive should return to tree mode")
	}
	f.run(t, "cd @storage")
	if f.eng.Pwd() != "/Architecture/Storage" || f.eng.SpaceID() != engSpace {
		t.Errorf("pwd = %s space = %s", f.eng.Pwd(), f.eng.SpaceID())
	}

	f.out.Reset()
	f.run(t, "bm list")
	if !strings.Contains(f.out.String(), "@storage") {
		t.Errorf("bm list:\n%s", f.out.String())
	}

	if err := f.sh.Execute(ctx, "rename Capacity\\ Plan X"); !errors.Is(err, nav.ErrUnsupportedInMode) {
		t.Errorf("wiki rename err = %v", err)
	}
	if err := f.sh.Execute(ctx, "mkdir X"); !errors.Is(err, nav.ErrUnsupportedInMode) {
		t.Errorf("wiki mkdir err = %v", err)
	}

	f.run(t, "wiki node wikCapacity")
	if f.eng.Pwd() != "/Architecture/Storage/Capacity Plan" {
		t.Errorf("pwd = %s", f.eng.Pwd())
	}

	f.run(t, "bm rm @storage")
	if err := f.sh.Execute(ctx, "bm rm storage"); !errors.Is(err, nav.ErrUnknownAlias) {
		t.Errorf("second rm err = %v", err)
	}
}

func TestBrokenBookmarkHint(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.run(t, "wiki node wikOncall", "bm rota")
	if err := f.graph.Delete(ctx, engSpace, models.Descriptor{ID: "wikOncall"}); err != nil {
		t.Fatal(err)
	}
	before := f.eng.Pwd()

	err := f.sh.Execute(ctx, "cd @rota")
	if !errors.Is(err, nav.ErrBrokenAncestorLink) {
		t.Fatalf("err = %v, want ErrBrokenAncestorLink", err)
	}
	if msg := DescribeError(err); !strings.Contains(msg, "bm rm rota") {
		t.Errorf("message = %q", msg)
	}
	if f.eng.Pwd() != before {
		t.Errorf("failed jump moved to %s", f.eng.Pwd())
	}
}

func TestOpenCatPwd(t *testing.T) {
	f := newFixture(t, nil)
	f.run(t, `cat "Meeting Notes"`, "open Reports", "pwd")
	got := f.out.String()
	for _, want := range []string{"Standup notes", "https://demo.feishu.cn/folder/fldReports", "/Root"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrompt(t *testing.T) {
	f := newFixture(t, nil)
	if got := f.sh.Prompt(); got != "[drive] /Root > " {
		t.Errorf("prompt = %q", got)
	}
	f.eng = nav.New(nav.Config{Graph: f.graph})
	f.sh = New(f.eng, Options{Out: f.out})
	if got := f.sh.Prompt(); got != "[wiki] (no space) > " {
		t.Errorf("prompt = %q", got)
	}
	if err := f.sh.Execute(context.Background(), "ls"); !errors.Is(err, nav.ErrNoSpace) {
		t.Errorf("ls without a space: %v", err)
	}
}

type scriptedReader struct {
	lines   []string
	errs    []error
	prompts []string
}

func (r *scriptedReader) SetPrompt(p string) { r.prompts = append(r.prompts, p) }

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line, err := r.lines[0], r.errs[0]
	r.lines, r.errs = r.lines[1:], r.errs[1:]
	return line, err
}

func TestRun(t *testing.T) {
	f := newFixture(t, nil)
	rl := &scriptedReader{
		lines: []string{"cd Reports", "", "bogus", "pwd", "exit", "never"},
		errs:  []error{nil, readline.ErrInterrupt, nil, nil, nil, nil},
	}
	if err := f.sh.Run(context.Background(), rl); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := f.out.String()
	if !strings.Contains(got, "error: unknown command") {
		t.Errorf("errors should be printed and the loop continue:\n%s", got)
	}
	if !strings.Contains(got, "Ctrl-D") {
		t.Errorf("interrupt hint missing:\n%s", got)
	}
	if len(rl.lines) != 1 {
		t.Errorf("exit should stop reading, %d lines left", len(rl.lines))
	}
	if rl.prompts[1] != "[drive] /Root/Reports > " {
		t.Errorf("prompt after cd = %q", rl.prompts[1])
	}
}

func TestRun_EOF(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.sh.Run(context.Background(), &scriptedReader{}); err != nil {
		t.Errorf("EOF should end the loop cleanly: %v", err)
	}
}

func TestConfirmer(t *testing.T) {
	tests := []struct {
		line string
		err  error
		want bool
	}{
		{"y", nil, true},
		{" YES ", nil, true},
		{"n", nil, false},
		{"", nil, false},
		{"", readline.ErrInterrupt, false},
	}
	for _, tt := range tests {
		rl := &scriptedReader{lines: []string{tt.line}, errs: []error{tt.err}}
		got, err := Confirmer(rl)("delete? ")
		if err != nil || got != tt.want {
			t.Errorf("Confirmer(%q, %v) = %v, %v", tt.line, tt.err, got, err)
		}
		if rl.prompts[0] != "delete? " {
			t.Errorf("prompt = %q", rl.prompts[0])
		}
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.Canceled, "interrupted"},
		{&nav.RemoteError{Op: "list", Err: context.DeadlineExceeded}, "timed out"},
		{nav.ErrNoSpace, "wiki spaces"},
		{&client.APIError{Op: "move file", Msg: "no permission", Code: 1061004, Status: 403, RequestID: "req-1"},
			"move file failed: no permission, code 1061004, http 403, request req-1"},
	}
	for _, tt := range tests {
		if got := DescribeError(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("DescribeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestHelp(t *testing.T) {
	f := newFixture(t, nil)
	f.run(t, "help", "help q")
	got := f.out.String()
	if !strings.Contains(got, "touch sheet|bitable|doc <name>") || !strings.Contains(got, "aliases: quit, q") {
		t.Errorf("help output:\n%s", got)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"ls -l", []string{"ls", "-l"}},
		{`rm "Q1 Budget"`, []string{"rm", "Q1 Budget"}},
		{`rm 'it''s'`, []string{"rm", "its"}},
		{`mv Q1\ Budget ..`, []string{"mv", "Q1 Budget", ".."}},
		{`cd ""`, []string{"cd", ""}},
		{"  pwd\t ", []string{"pwd"}},
		{"", nil},
	}
	for _, tt := range tests {
		got, err := splitArgs(tt.line)
		if err != nil {
			t.Errorf("splitArgs(%q): %v", tt.line, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	for _, name := range []string{"plain", "Q1 Budget", `a\b`, `it's "x"`} {
		args, err := splitArgs("cat " + escapeArg(name))
		if err != nil || len(args) != 2 || args[1] != name {
			t.Errorf("round trip of %q = %q, %v", name, args, err)
		}
		if got := unescapeArg(escapeArg(name)); got != name {
			t.Errorf("unescapeArg(escapeArg(%q)) = %q", name, got)
		}
	}
}
