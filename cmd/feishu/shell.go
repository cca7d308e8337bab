package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/feishukit/feishukit/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive navigator (default)",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	if err := a.start(ctx); err != nil {
		return err
	}

	var rl *readline.Instance
	opts := shell.Options{Out: os.Stdout}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		opts.Confirm = func(prompt string) (bool, error) {
			return shell.Confirmer(rl)(prompt)
		}
	}
	sh := shell.New(a.engine, opts)

	if dir := filepath.Dir(a.cfg.HistoryFile); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	rl, err = readline.NewEx(&readline.Config{
		Prompt:            sh.Prompt(),
		HistoryFile:       a.cfg.HistoryFile,
		AutoComplete:      sh.Completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(os.Stdout, "feishu %s, type 'help' for commands\n", version)
	return sh.Run(ctx, rl)
}
