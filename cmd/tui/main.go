package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"persons-admin/internal/api"
	"persons-admin/internal/config"
	"persons-admin/internal/form"
	"persons-admin/internal/grid"
	"persons-admin/internal/tui"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	configPath string
	baseURL    string
	pageSize   int
)

var rootCmd = &cobra.Command{
	Use:   "persons-tui",
	Short: "Browse and add persons from the terminal",
	Long: `persons-tui shows the persons collection as a paged table with search,
sorting, a name filter and row selection, and opens a form to add a person.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default: configs/config.yml)")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "Persons API base URL (overrides api.base_url)")
	rootCmd.Flags().IntVar(&pageSize, "page-size", 0, "Rows per page (overrides grid.page_size)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(false); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if cmd.Flags().Changed("page-size") {
		if pageSize <= 0 {
			return fmt.Errorf("--page-size must be positive, got %d", pageSize)
		}
		cfg.Grid.PageSize = pageSize
	}

	// stdout belongs to the screen
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	personsAPI := api.NewPersonsAPI(cfg.API.BaseURL, cfg.API.Timeout)
	events := tui.NewEvents(32)
	ctrl := grid.NewController(api.NewPageFetcher(personsAPI, events), events, cfg.Grid.PageSize)
	defer ctrl.Close()
	f := form.New(personsAPI, events, cfg.Form.RedirectPath)

	slog.Info("Starting persons-tui", "base_url", cfg.API.BaseURL, "page_size", cfg.Grid.PageSize)
	m := tui.New(ctx, ctrl, f, events, tui.Options{ShowExtendedToolbar: cfg.Grid.ShowExtendedToolbar})
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
