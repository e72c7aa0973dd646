package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ideamans/go-sheettable/coursework"
	"github.com/ideamans/go-sheettable/dialogue"
	"github.com/ideamans/go-sheettable/internal/config"
	"github.com/ideamans/go-sheettable/internal/metrics"
	"github.com/ideamans/go-sheettable/internal/telegram"
	"github.com/ideamans/go-sheettable/roster"
)

var runWatch bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot",
	Long: `Run connects to Telegram and answers until interrupted.

A user sends /lab (bot.command) and the bot asks for a link to the work.
The next valid http, https, ftp or ftps URL is recorded in the Works table.
/cancel (bot.cancel_command) abandons an open dialogue.

With the memory backend a fresh spreadsheet is created on start.

Example:
  LABBOT_BOT_TOKEN=123:abc labbot run --config labbot.yaml`,
	RunE: runBot,
}

func init() {
	runCmd.Flags().BoolVar(&runWatch, "watch", true, "reload bot messages when the config file changes")
}

func runBot(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, m := newMetrics()

	store, err := openStore(ctx, m)
	if err != nil {
		return err
	}
	if store.SpreadsheetID() == "" {
		if cfg.Spreadsheet.Backend != config.BackendMemory {
			return fmt.Errorf("spreadsheet.id is not set: run \"labbot init\" first")
		}
		if _, err := roster.New(store).CreateSpreadsheet(ctx, cfg.Spreadsheet.Title, cfg.Spreadsheet.RowCount, cfg.Spreadsheet.ColumnCount); err != nil {
			return fmt.Errorf("create spreadsheet: %w", err)
		}
	}
	logger.Info("using spreadsheet",
		zap.String("backend", cfg.Spreadsheet.Backend),
		zap.String("spreadsheet_id", store.SpreadsheetID()),
		zap.String("url", store.URL()))

	bot, err := telegram.New(cfg.Bot.Token.Value(), telegram.Options{
		PollTimeout: cfg.Bot.PollTimeout,
		AllowChat:   cfg.Chat.AllowsChat,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	botName := cfg.Bot.Name
	if botName == "" {
		botName = bot.Username()
	}
	machine, err := dialogue.NewMachine(bot, coursework.New(store, logger), dialogue.Options{
		StartCommand:  cfg.Bot.Command,
		CancelCommand: cfg.Bot.CancelCommand,
		BotName:       botName,
		Messages:      cfg.Bot.Messages,
		Logger:        logger,
		OnEvent:       m.ObserveEvent,
	})
	if err != nil {
		return err
	}
	if err := m.TrackActive(machine.Active); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(ctx, machine)
	})

	if cfg.Metrics.Listen != "" {
		router := metrics.NewRouter(reg, func(ctx context.Context) error {
			_, err := store.ListKeyColumn(ctx, roster.StudentsTable)
			return err
		})
		g.Go(func() error {
			return metrics.Serve(ctx, cfg.Metrics.Listen, router, logger)
		})
	}

	if runWatch {
		if _, err := os.Stat(configFile); err == nil {
			g.Go(func() error {
				return config.Watch(ctx, configFile, logger, func(c *config.Config) {
					machine.SetMessages(c.Bot.Messages)
				})
			})
		}
	}

	logger.Info("labbot started", zap.String("bot", bot.Username()), zap.String("command", "/"+cfg.Bot.Command))
	err = g.Wait()
	logger.Info("labbot stopped")
	return err
}
