package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vtol-medical-drone-system/internal/api"
	"vtol-medical-drone-system/internal/bootstrap"
	"vtol-medical-drone-system/internal/config"
	"vtol-medical-drone-system/internal/db"
	"vtol-medical-drone-system/internal/generator"
	"vtol-medical-drone-system/internal/logging"
	"vtol-medical-drone-system/internal/models"
	"vtol-medical-drone-system/internal/parser"

	"github.com/spf13/cobra"
)

// defaultArchive is used by the archive subcommands when no --db is given
const defaultArchive = "meddrone.db"

var errNoSupplies = errors.New("no valid supply lines in input")

var (
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meddrone [port]",
		Short: "VTOL Medical Drone System - local demo server",
		Long: `Serves the VTOL Medical Drone System dashboard from the current directory
and answers /api/status, /api/fleet, /api/alerts and /api/metrics with mock
fleet data. The optional port argument defaults to 8000; if the port is taken
the next free one is used.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runServer,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to YAML config (default ./"+config.DefaultConfigFile+" if present)")
	pf.String("db", "", "Path to SQLite dataset archive")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")

	f := rootCmd.Flags()
	f.String("static-dir", ".", "Directory holding the front-end files")
	f.Bool("no-browser", false, "Do not open the dashboard in a browser")
	f.String("variant", "literal", "Data variant (literal, generated)")
	f.String("mode", "snapshot", "Generation mode (snapshot, live)")
	f.Uint64("seed", 0, "Random seed for generated data (0 = time based)")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(statsCmd())
	return rootCmd
}

// loadConfig resolves configuration and applies explicitly set flags on top
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Data.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Lookup("static-dir") != nil && flags.Changed("static-dir") {
		cfg.Server.StaticDir, _ = flags.GetString("static-dir")
	}
	if flags.Lookup("no-browser") != nil && flags.Changed("no-browser") {
		noBrowser, _ := flags.GetBool("no-browser")
		cfg.Server.OpenBrowser = !noBrowser
	}
	if flags.Lookup("variant") != nil && flags.Changed("variant") {
		cfg.Data.Variant, _ = flags.GetString("variant")
	}
	if flags.Lookup("mode") != nil && flags.Changed("mode") {
		cfg.Data.Mode, _ = flags.GetString("mode")
	}
	if flags.Lookup("seed") != nil && flags.Changed("seed") {
		cfg.Data.Seed, _ = flags.GetUint64("seed")
	}

	logger = logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
	})
	return cfg.Validate()
}

// runServer starts the dashboard server
func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚁 VTOL Medical Drone System - Local Server Setup")
	fmt.Println(strings.Repeat("=", 60))

	if err := bootstrap.CheckAssets(cfg.Server.StaticDir, cfg.Server.RequiredAssets); err != nil {
		var missing *bootstrap.MissingAssetsError
		if errors.As(err, &missing) {
			fmt.Printf("❌ Missing required files: %s\n", strings.Join(missing.Missing, ", "))
			fmt.Println("❌ Please run this command from the project directory")
		}
		return err
	}
	fmt.Println("✅ All required files found")

	port := cfg.Server.Port
	if len(args) == 1 {
		p, err := config.ParsePort(args[0])
		if err != nil {
			logger.Warn("invalid port argument, using default", "arg", args[0], "port", port, "error", err)
			fmt.Printf("❌ Invalid port number. Using default port %d.\n", port)
		} else {
			port = p
		}
	}

	source, err := buildSource()
	if err != nil {
		return err
	}
	server := api.NewServer(source, cfg.Server.StaticDir, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, port, err := bootstrap.Listen(ctx, cfg.Server.Host, port, cfg.Server.MaxPortAttempts, logger)
	if err != nil {
		fmt.Printf("❌ Error starting server: %v\n", err)
		return err
	}

	url := fmt.Sprintf("http://localhost:%d", port)
	fmt.Println("🚁 VTOL Medical Drone System Server")
	fmt.Printf("📡 Server running at: %s\n", url)
	fmt.Printf("   Data: %s (%s)\n", cfg.Data.Variant, cfg.Data.Mode)
	fmt.Println("   Endpoints:")
	for _, path := range server.Endpoints() {
		fmt.Printf("     GET  %s\n", path)
	}
	fmt.Println("⏹️  Press Ctrl+C to stop the server")
	fmt.Println(strings.Repeat("-", 60))

	if cfg.Server.OpenBrowser {
		if err := bootstrap.OpenBrowser(url); err != nil {
			logger.Warn("could not open browser", "error", err)
			fmt.Println("⚠️  Could not open browser automatically")
		} else {
			fmt.Println("🌐 Browser opened automatically")
		}
	}

	httpServer := &http.Server{
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, httpServer, ln, cfg.Server.ShutdownTimeout)
}

// serve runs srv on ln until it fails or ctx is cancelled. Cancellation is a
// clean stop and returns nil.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Println("\n🛑 Server stopped by user")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown did not complete cleanly", "error", err)
	}
	return nil
}

// buildSource picks the data source: a stored dataset when an archive is
// configured and populated, otherwise the configured generator variant
func buildSource() (generator.Source, error) {
	opts := cfg.GeneratorOptions()
	if cfg.Data.DBPath == "" {
		return generator.New(generator.Variant(cfg.Data.Variant), opts)
	}

	database, err := db.New(cfg.Data.DBPath)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer database.Close()

	ds, err := database.LoadDataset()
	if errors.Is(err, db.ErrNoDataset) {
		logger.Warn("archive is empty, generating data instead", "db", cfg.Data.DBPath)
		return generator.New(generator.Variant(cfg.Data.Variant), opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	logger.Info("serving stored dataset", "db", cfg.Data.DBPath, "seed", ds.Seed, "generated_at", ds.GeneratedAt)
	return generator.FromDataset(ds, opts), nil
}

func archivePath() string {
	if cfg.Data.DBPath != "" {
		return cfg.Data.DBPath
	}
	return defaultArchive
}

// generateCmd generates a dataset and stores it in the archive
func generateCmd() *cobra.Command {
	var drones, missions int
	var seed uint64
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a mock fleet dataset and store it in the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cfg.GeneratorOptions()
			opts.Mode = generator.ModeSnapshot
			if cmd.Flags().Changed("drones") {
				opts.Sizes.Drones = drones
			}
			if cmd.Flags().Changed("missions") {
				opts.Sizes.Missions = missions
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}
			if err := opts.Sizes.Validate(); err != nil {
				return err
			}

			database, err := db.New(archivePath())
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			start := time.Now()
			ds := generator.NewGenerated(opts).Dataset()
			if err := database.SaveDataset(ds); err != nil {
				return fmt.Errorf("failed to store dataset: %w", err)
			}

			fmt.Printf("✓ Generated %d drones, %d missions, %d supplies, %d log entries in %v\n",
				len(ds.Drones), len(ds.Missions), len(ds.Supplies), len(ds.InventoryLog), time.Since(start))
			fmt.Printf("  Seed:     %d\n", ds.Seed)
			fmt.Printf("  Database: %s\n", archivePath())

			if output != "" {
				if err := exportJSON(output, ds); err != nil {
					return err
				}
				fmt.Printf("Data exported to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&drones, "drones", "n", generator.DefaultSizes.Drones, "Number of drones to generate")
	cmd.Flags().IntVarP(&missions, "missions", "m", generator.DefaultSizes.Missions, "Number of missions to generate")
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "Random seed (0 = time based)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Export generated data to JSON file")
	return cmd
}

func exportJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ingestCmd loads supply manifests into the archive
func ingestCmd() *cobra.Command {
	var format string
	var validate bool

	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Replace the archived medical supplies with manifest files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.New(archivePath())
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			p := parser.NewParser(format, logger)
			var supplies []models.SupplyItem
			rejected := 0

			for _, file := range args {
				fmt.Printf("Processing %s...\n", file)
				items, err := p.ParseFile(file)
				if err != nil {
					return fmt.Errorf("%s: %w; archive left unchanged", file, err)
				}
				for _, item := range items {
					if validate {
						if errs := parser.ValidateSupply(&item); len(errs) > 0 {
							logger.Warn("rejected supply line", "file", file, "type", item.Type, "problems", errs)
							rejected++
							continue
						}
					}
					supplies = append(supplies, item)
				}
			}

			if len(supplies) == 0 {
				return fmt.Errorf("%w (%d rejected); archive left unchanged", errNoSupplies, rejected)
			}

			count, err := database.ReplaceSupplies(supplies)
			if errors.Is(err, db.ErrNoDataset) {
				return fmt.Errorf("%w: run 'meddrone generate' first", err)
			}
			if err != nil {
				return fmt.Errorf("failed to store supplies: %w", err)
			}

			fmt.Printf("\nTotal: %d supply lines stored", count)
			if rejected > 0 {
				fmt.Printf(", %d rejected", rejected)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "File format (csv, json)")
	cmd.Flags().BoolVarP(&validate, "validate", "v", true, "Validate supply lines before storing")
	return cmd
}

// statsCmd shows archive statistics
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dataset archive statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.New(archivePath())
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			stats, err := database.GetStats()
			if err != nil {
				return fmt.Errorf("error getting stats: %w", err)
			}

			fmt.Println("📊 VTOL Medical Drone System Archive")
			fmt.Println("====================================")
			if !stats.HasDataset {
				fmt.Println("  No dataset stored. Use 'meddrone generate' to create one.")
				return nil
			}
			fmt.Printf("  Seed:            %d\n", stats.Seed)
			fmt.Printf("  Generated At:    %s\n", stats.GeneratedAt.Format(time.RFC3339))
			fmt.Printf("  Drones:          %d\n", stats.Drones)
			fmt.Printf("  Missions:        %d\n", stats.Missions)
			fmt.Printf("  Supply Lines:    %d (%d low)\n", stats.Supplies, stats.LowStock)
			fmt.Printf("  Inventory Log:   %d\n", stats.InventoryLogs)
			fmt.Printf("  Database:        %s\n", archivePath())
			return nil
		},
	}
}
