package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/feishukit/feishukit/internal/config"
	"github.com/feishukit/feishukit/internal/logging"
	"github.com/feishukit/feishukit/internal/metrics"
	"github.com/feishukit/feishukit/pkg/bookmark"
	"github.com/feishukit/feishukit/pkg/client"
	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/nav"
	"github.com/feishukit/feishukit/pkg/retry"
	"github.com/feishukit/feishukit/pkg/store"
	"github.com/feishukit/feishukit/pkg/store/memstore"
)

var (
	configFile string
	envFile    string
	demoMode   bool
)

var rootCmd = &cobra.Command{
	Use:   "feishu",
	Short: "Navigate Feishu Drive and Wiki from the terminal",
	Long: `feishu browses Drive folders and Wiki spaces as one hierarchy. Drive is a
strict folder tree; Wiki nodes are reached through their space or through
bookmarks, whose ancestor chain is rebuilt on every jump.

Credentials come from FEISHU_APP_ID and FEISHU_APP_SECRET, a .env file or
the config file in the user config directory.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell,
}

func init() {
	rootCmd.SetVersionTemplate("feishu version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default: <user config dir>/feishukit/config.*)")
	pf.StringVar(&envFile, "env-file", "", "dotenv file with FEISHU_* settings (default: ./.env)")
	pf.BoolVar(&demoMode, "demo", false, "use a built-in in-memory drive and wiki instead of the API")

	pf.String("app-id", "", "application id")
	pf.String("base-url", "", "open API base URL")
	pf.String("domain", "", "tenant sub-domain or host used for web links")
	pf.Duration("timeout", 0, "per-request timeout")
	pf.Int("retry-attempts", 0, "attempts for read requests")
	pf.String("folder-token", "", "drive folder to use as root")
	pf.String("root-name", "", "display name of the drive root")
	pf.String("default-mode", "", "start mode: auto, drive or wiki")
	pf.String("bookmarks", "", "bookmark file")
	pf.String("history-file", "", "shell history file")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
}

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	engine *nav.Engine
}

// setup loads configuration, initializes logging and builds the engine.
// remote is false for commands that only touch local files.
func setup(ctx context.Context, cmd *cobra.Command, remote bool) (*app, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	if remote && !demoMode {
		err = cfg.Validate()
	} else {
		err = cfg.ValidateLocal()
	}
	if err != nil {
		return nil, err
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logging.Warn("metrics endpoint stopped", logging.Err(err))
			}
		}()
	}

	navCfg := nav.Config{
		Bookmarks:   bookmark.New(cfg.Bookmarks),
		RootID:      cfg.FolderToken,
		RootName:    cfg.RootName,
		DefaultMode: cfg.DefaultMode,
	}
	if demoMode {
		tree, graph := memstore.Demo()
		navCfg.Tree, navCfg.Graph = tree, graph
		navCfg.RootID = memstore.DemoRootID
		navCfg.Bookmarks = bookmark.New(filepath.Join(os.TempDir(), "feishukit-demo-bookmarks.json"))
	} else {
		rc := retry.DefaultConfig()
		rc.MaxAttempts = cfg.RetryAttempts
		c := client.New(client.Config{
			BaseURL:     cfg.BaseURL,
			AppID:       cfg.AppID,
			AppSecret:   cfg.AppSecret,
			Domain:      cfg.Domain,
			Timeout:     cfg.Timeout,
			RetryConfig: rc,
		})
		navCfg.Tree = store.NewDrive(c)
		navCfg.Graph = store.NewWiki(c)
	}

	logging.Debug("engine configured",
		logging.Bool("demo", demoMode),
		logging.String("root", navCfg.RootID),
		logging.String("mode", cfg.DefaultMode))
	return &app{cfg: cfg, engine: nav.New(navCfg)}, nil
}

// start picks the initial location, explaining a fallback to wiki mode.
func (a *app) start(ctx context.Context) error {
	err := a.engine.Start(ctx)
	if err == nil {
		return nil
	}
	if a.cfg.DefaultMode == nav.StartAuto && a.engine.Mode() == models.ModeGraph {
		fmt.Fprintf(os.Stderr, "drive root unavailable (%v); starting in wiki mode\n", err)
		return nil
	}
	return err
}
