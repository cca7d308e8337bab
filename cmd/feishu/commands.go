package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feishukit/feishukit/internal/shell"
	"github.com/feishukit/feishukit/pkg/nav"
)

var spacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "List the wiki spaces visible to the app",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return oneShot(cmd, true, []string{"wiki", "spaces"})
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls [@alias[/path] | path]",
	Short: "List the drive root, a drive path or a bookmarked wiki node",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return oneShot(cmd, true, []string{"ls", "-l"})
		}
		return oneShot(cmd, true, []string{"cd", args[0]}, []string{"ls", "-l"})
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve @alias[/path]",
	Short: "Print the ancestor chain of a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var bmCmd = &cobra.Command{
	Use:   "bm",
	Short: "Manage wiki bookmarks",
}

var bmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return oneShot(cmd, false, []string{"bm", "list"})
	},
}

var bmRmCmd = &cobra.Command{
	Use:   "rm <alias>",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(cmd, false, []string{"bm", "rm", args[0]})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "feishu version %s\n", version)
	},
}

func init() {
	bmCmd.AddCommand(bmListCmd, bmRmCmd)
	rootCmd.AddCommand(spacesCmd, lsCmd, resolveCmd, bmCmd, versionCmd)
}

// oneShot runs shell commands in order without a prompt.
func oneShot(cmd *cobra.Command, remote bool, lines ...[]string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, cmd, remote)
	if err != nil {
		return err
	}
	sh := shell.New(a.engine, shell.Options{Out: cmd.OutOrStdout()})
	for _, args := range lines {
		if err := sh.Dispatch(ctx, args); err != nil {
			return err
		}
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target := args[0]
	if !nav.IsAlias(target) {
		return fmt.Errorf("%q is not a bookmark; aliases start with @", target)
	}
	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}

	chain, spaceID, err := a.engine.ResolvePath(ctx, target)
	var be *nav.BrokenLinkError
	if errors.As(err, &be) {
		out := cmd.OutOrStdout()
		if be.NodeID != "" {
			fmt.Fprintf(out, "(unreachable: %s)\n", be.NodeID)
			printChain(out, be.Partial, 1)
		}
		return err
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "space %s\n", spaceID)
	printChain(out, chain, 0)
	return nil
}

func printChain(w io.Writer, chain nav.Location, depth int) {
	for i, el := range chain {
		fmt.Fprintf(w, "%s%s  (%s)\n", strings.Repeat("  ", depth+i), el.Name, el.ID)
	}
}
