package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdlive/mdlive/internal/adapters/primary/http"
	"github.com/mdlive/mdlive/internal/adapters/secondary/browser"
	"github.com/mdlive/mdlive/internal/adapters/secondary/config"
	"github.com/mdlive/mdlive/internal/adapters/secondary/converter"
	"github.com/mdlive/mdlive/internal/adapters/secondary/resolver"
	"github.com/mdlive/mdlive/internal/adapters/secondary/watcher"
	"github.com/mdlive/mdlive/internal/domain/entities"
	"github.com/mdlive/mdlive/internal/domain/ports"
	"github.com/mdlive/mdlive/internal/domain/services"
)

var (
	// Serve command flags - zero values mean "not set, use config"
	port        int
	host        string
	contextRepo string
	offline     bool
	noBrowser   bool
	debounceMs  int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [folder]",
	Short: "Serve a folder of markdown files with live reload",
	Long: `Start a local HTTP server rendering the folder's markdown files as
GitHub would. Open pages refresh automatically when their file, or an
image they embed, changes on disk.

Example:
  mdlive serve
  mdlive serve ./docs --port 8080 --offline
  mdlive serve --context owner/repo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVar(&host, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().StringVarP(&contextRepo, "context", "c", "", "GitHub context repo (owner/repo) for GFM rendering")
	serveCmd.Flags().BoolVar(&offline, "offline", false, "Render with the built-in converter instead of the GitHub API")
	serveCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Don't open the browser automatically")
	serveCmd.Flags().IntVar(&debounceMs, "debounce", 0, "Debounce window in milliseconds (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	folder := "."
	if len(args) == 1 {
		folder = args[0]
	}

	cfg, err := loadAndMergeConfig(cmd, folder)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Logging)

	pathResolver, err := resolver.NewFilesystemResolver(folder)
	if err != nil {
		return err
	}

	scanner := converter.NewGoldmarkScanner()
	cache := services.NewRenderCache(pathResolver.Root(), newConverter(cfg.Render), scanner, logger)
	hub := services.NewReloadHub(logger)
	coordinator := services.NewChangeCoordinator(cache, hub, cfg.Watcher.GetDebounce(), logger)

	ctx := cmd.Context()

	// Failure to establish the root watch is fatal.
	fileWatcher := watcher.NewFsnotifyWatcher()
	events, err := fileWatcher.Watch(ctx, pathResolver.Root())
	if err != nil {
		return err
	}
	defer func() { _ = fileWatcher.Stop() }()

	go coordinator.Run(ctx, events)

	server := http.NewServer(pathResolver, cache, hub, cfg)
	if err := server.Start(ctx, cfg.Server.Host, cfg.Server.Port); err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("mdlive running", slog.String("url", url), slog.String("folder", pathResolver.Root()))

	if cfg.Browser.AutoOpen && !noBrowser {
		if err := browser.NewLauncher().Launch(url); err != nil {
			logger.Warn("could not open browser", slog.String("error", err.Error()))
		}
	}

	<-ctx.Done()

	return server.Stop(context.Background())
}

// newConverter picks the markdown converter for the configured render mode.
func newConverter(cfg entities.RenderConfig) ports.MarkdownConverter {
	if cfg.Offline {
		return converter.NewOfflineConverter()
	}
	return converter.NewGitHubConverter(cfg.GetAPIURL(), cfg.Context)
}

// newLogger builds the process-wide structured logger from logging config.
func newLogger(cfg entities.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.GetLevel() {
	case entities.LogLevelDebug:
		level = slog.LevelDebug
	case entities.LogLevelWarn:
		level = slog.LevelWarn
	case entities.LogLevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadAndMergeConfig applies the precedence chain:
// defaults -> global config -> local config -> CLI flags.
func loadAndMergeConfig(cmd *cobra.Command, folder string) (*entities.Config, error) {
	loader := config.NewTOMLLoader()
	ctx := cmd.Context()

	finalConfig := config.GetDefaultConfig()

	// An explicit --config file replaces the global and local layers.
	if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
		explicit, err := loader.LoadFile(ctx, cfgPath)
		if err != nil {
			return nil, err
		}
		mergeConfigs(finalConfig, explicit)
		applyCliFlags(cmd, finalConfig)
		return finalConfig, nil
	}

	globalConfig, err := loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if globalConfig != nil {
		mergeConfigs(finalConfig, globalConfig)
	}

	localConfig, err := loader.LoadLocal(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}
	if localConfig != nil {
		mergeConfigs(finalConfig, localConfig)
	}

	applyCliFlags(cmd, finalConfig)

	return finalConfig, nil
}

// mergeConfigs merges source config into target config (source takes precedence)
func mergeConfigs(target, source *entities.Config) {
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = source.Server.CORSOrigins
	}

	target.Render.Offline = source.Render.Offline
	if source.Render.Context != "" {
		target.Render.Context = source.Render.Context
	}
	if source.Render.APIURL != "" {
		target.Render.APIURL = source.Render.APIURL
	}

	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}
	if source.Watcher.MaxHoldSeconds != 0 {
		target.Watcher.MaxHoldSeconds = source.Watcher.MaxHoldSeconds
	}

	target.Browser.AutoOpen = source.Browser.AutoOpen

	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
}

// applyCliFlags overrides config values with explicitly set CLI flags
func applyCliFlags(cmd *cobra.Command, cfg *entities.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}
	if cmd.Flags().Changed("context") {
		cfg.Render.Context = contextRepo
	}
	if cmd.Flags().Changed("offline") {
		cfg.Render.Offline = offline
	}
	if cmd.Flags().Changed("debounce") {
		cfg.Watcher.DebounceMs = debounceMs
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Verbose = true
	}
}
