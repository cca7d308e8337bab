// Package shell implements the interactive command dispatcher on top of the
// navigation engine: command parsing, rendering, confirmation and tab
// completion.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/feishukit/feishukit/internal/logging"
	"github.com/feishukit/feishukit/pkg/nav"
)

// ErrExit is returned by Execute when the user asks to leave.
var ErrExit = errors.New("exit requested")

// LineReader is the part of *readline.Instance the loop needs.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Options configures a Shell.
type Options struct {
	Out io.Writer
	// Confirm asks a yes/no question. When nil, destructive commands
	// require an explicit force flag.
	Confirm func(prompt string) (bool, error)
}

// Shell dispatches command lines to an Engine.
type Shell struct {
	engine   *nav.Engine
	out      io.Writer
	styles   styles
	confirm  func(prompt string) (bool, error)
	commands []*command
	byName   map[string]*command
}

type command struct {
	name    string
	aliases []string
	usage   string
	summary string
	minArgs int
	maxArgs int // -1 for no limit
	flags   func(fs *pflag.FlagSet)
	run     func(ctx context.Context, fs *pflag.FlagSet, args []string) error
}

// UsageError reports a malformed command line.
type UsageError struct {
	Usage  string
	Reason string
}

func (e *UsageError) Error() string {
	if e.Reason == "" {
		return "usage: " + e.Usage
	}
	return e.Reason + "; usage: " + e.Usage
}

// hintError attaches a follow-up suggestion to an error.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() }
func (e *hintError) Unwrap() error { return e.err }

// New creates a shell bound to engine.
func New(engine *nav.Engine, opts Options) *Shell {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	s := &Shell{
		engine:  engine,
		out:     out,
		styles:  newStyles(out),
		confirm: opts.Confirm,
		byName:  make(map[string]*command),
	}
	s.register()
	return s
}

func (s *Shell) add(c *command) {
	s.commands = append(s.commands, c)
	s.byName[c.name] = c
	for _, a := range c.aliases {
		s.byName[a] = c
	}
}

func (s *Shell) lookup(name string) (*command, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// commandNames returns every name a command can be invoked by, sorted.
func (s *Shell) commandNames() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs one command line. Blank lines are ignored.
func (s *Shell) Execute(ctx context.Context, line string) error {
	args, err := splitArgs(strings.TrimSpace(line))
	if err != nil {
		return err
	}
	return s.Dispatch(ctx, args)
}

// Dispatch runs a command given as already split words.
func (s *Shell) Dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, ok := s.lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q; type 'help'", args[0])
	}

	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	rest := args[1:]
	if cmd.flags != nil {
		cmd.flags(fs)
		if err := fs.Parse(rest); err != nil {
			return &UsageError{Usage: cmd.usage, Reason: err.Error()}
		}
		rest = fs.Args()
	}
	if len(rest) < cmd.minArgs || (cmd.maxArgs >= 0 && len(rest) > cmd.maxArgs) {
		return &UsageError{Usage: cmd.usage}
	}

	ctx = logging.WithCommand(ctx, cmd.name)
	logging.WithContext(ctx).Debug("run command", logging.Int("args", len(rest)))
	return cmd.run(ctx, fs, rest)
}

// Run reads and executes lines until exit, EOF or ctx is done. Ctrl-C at
// the prompt clears the line; during a command it cancels that command only.
func (s *Shell) Run(ctx context.Context, rl LineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rl.SetPrompt(s.Prompt())
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if len(line) == 0 {
				fmt.Fprintln(s.out, s.styles.muted.Render("(type 'exit' or press Ctrl-D to quit)"))
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		if errors.Is(s.runLine(ctx, line), ErrExit) {
			return nil
		}
	}
}

func (s *Shell) runLine(ctx context.Context, line string) error {
	cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err := s.Execute(cmdCtx, line)
	if err != nil && !errors.Is(err, ErrExit) {
		s.printError(err)
	}
	return err
}

// Confirmer returns a Confirm function that asks on rl. Anything other than
// "y" or "yes" declines, as do Ctrl-C and Ctrl-D.
func Confirmer(rl LineReader) func(prompt string) (bool, error) {
	return func(prompt string) (bool, error) {
		rl.SetPrompt(prompt)
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
