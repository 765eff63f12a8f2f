package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"persons-admin/internal/api"
	"persons-admin/internal/bot"
	"persons-admin/internal/config"
	"persons-admin/internal/redis"
	"syscall"

	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.LoadEnv(true); err != nil {
		slog.Error("Error loading .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		slog.Error("init config err", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	redisClient, err := redis.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err != nil {
		slog.Error("failed to create Redis client", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	personsAPI := api.NewPersonsAPI(cfg.API.BaseURL, cfg.API.Timeout)
	tgBot, err := bot.NewBot(cfg.TelegramToken, redisClient, personsAPI, bot.Options{
		PageSize:            cfg.Grid.PageSize,
		ShowExtendedToolbar: cfg.Grid.ShowExtendedToolbar,
		RedirectPath:        cfg.Form.RedirectPath,
	})
	if err != nil {
		slog.Error("failed to create bot", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tgBot.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return tgBot.ClearActionsPeriodically(gctx, cfg.Actions.TTL)
	})

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")
	tgBot.Stop()
	if err := g.Wait(); err != nil {
		slog.Error("shutdown err", "error", err)
	}
	slog.Info("Application shutdown complete")
}
