package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"jellypot/internal/bridge"
	"jellypot/internal/browser"
	"jellypot/internal/config"
	"jellypot/internal/detail"
	"jellypot/internal/launcher"
	"jellypot/internal/logging"
	"jellypot/internal/resolver"
)

func newBridgeCommand(ctx *commandContext) *cobra.Command {
	var browserURL string
	var launchMode string

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Attach to the browser and add the player button to Jellyfin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if browserURL != "" {
				cfg.Bridge.BrowserURL = browserURL
			}
			if launchMode != "" {
				cfg.Bridge.LaunchMode = launchMode
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return runBridge(cmd.Context(), ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&browserURL, "browser-url", "", "DevTools address of a running browser (overrides bridge.browser_url)")
	cmd.Flags().StringVar(&launchMode, "launch-mode", "", "How launch URLs are opened: frame or exec")
	return cmd
}

func runBridge(parent context.Context, ctx *commandContext, cfg *config.Config, logger *slog.Logger) error {
	signalCtx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	manager := browser.NewManager(browser.Options{
		ControlURL:   cfg.Bridge.BrowserURL,
		Launch:       cfg.Bridge.LaunchBrowser,
		Headless:     cfg.Bridge.Headless,
		UserDataDir:  filepath.Join(cfg.Paths.StateDir, "browser"),
		WebURL:       cfg.WebURL(),
		PollInterval: cfg.PollInterval(),
		Logger:       logger,
	})
	if err := manager.Connect(signalCtx); err != nil {
		return err
	}
	defer manager.Close() //nolint:errcheck

	page, err := manager.FindPage(signalCtx)
	if err != nil {
		return err
	}

	api, err := hostAPI(ctx, cfg, page)
	if err != nil {
		return err
	}

	var l launcher.Launcher
	switch cfg.Bridge.LaunchMode {
	case config.LaunchModeExec:
		l = launcher.NewExecLauncher(logger)
	default:
		l = launcher.NewFrameLauncher(page, cfg.FrameCleanup(), logger)
	}

	b := bridge.New(bridge.Options{
		Page:         page,
		Resolver:     resolver.New(api, logger),
		Launcher:     l,
		Scheme:       cfg.Bridge.Scheme,
		Button:       detail.ButtonSpec{Title: cfg.Bridge.ButtonTitle, IconURL: cfg.Bridge.IconURL},
		PollInterval: cfg.PollInterval(),
		Logger:       logger,
	})
	logger.Info("bridge running",
		logging.String("launch_mode", cfg.Bridge.LaunchMode),
		logging.Bool("page_api", cfg.Bridge.UsePageAPI))

	err = b.Run(signalCtx)
	if errors.Is(err, context.Canceled) && parent.Err() == nil {
		logger.Info("bridge stopped")
		return nil
	}
	return err
}

// hostAPI picks where item lookups go: the page's own ApiClient, which needs
// no credentials, or the Jellyfin HTTP API.
func hostAPI(ctx *commandContext, cfg *config.Config, page *browser.Page) (resolver.HostAPI, error) {
	if cfg.Bridge.UsePageAPI {
		return page.API(), nil
	}
	client, err := ctx.jellyfinClient()
	if err != nil {
		return nil, fmt.Errorf("bridge.use_page_api is off: %w", err)
	}
	return jellyfinHost(client), nil
}
