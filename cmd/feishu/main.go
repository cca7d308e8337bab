// Feishu navigator
//
// Browse Feishu Drive folders and Wiki spaces like a file system:
// - interactive shell with history and tab completion
// - bookmarks to wiki nodes, resolved through their ancestor chain
// - one-shot commands for scripting
//
// Sub-commands:
//
//	feishu [shell]               Interactive navigator (default)
//	feishu spaces                List wiki spaces
//	feishu ls [@alias/path]      List the drive root or a bookmarked node
//	feishu resolve @alias/path   Print the ancestor chain of a bookmark
//	feishu bm list|rm <alias>    Manage bookmarks
//	feishu version               Print the version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/feishukit/feishukit/internal/logging"
	"github.com/feishukit/feishukit/internal/shell"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// SIGINT is left to the shell, which cancels only the running command.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+shell.DescribeError(err))
		os.Exit(1)
	}
}
