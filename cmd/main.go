package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alias1177/CoinSignal/internal/app"
	"github.com/Alias1177/CoinSignal/internal/config"
	"github.com/Alias1177/CoinSignal/internal/logger"
	"github.com/Alias1177/CoinSignal/internal/report"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1) Загружаем конфиг и настраиваем логгер
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if _, err := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg)

	// 2) Метрики, если задан адрес
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(application)}
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// 3) Прогон по топ-N активам
	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	records, err := application.Orchestrator.Run(runCtx, cfg.TopN)
	if err != nil {
		log.Error().Err(err).Int("records", len(records)).Msg("Run did not complete, reporting partial results")
	}

	text := report.RenderHTML(records, time.Now())
	fmt.Println(text)

	// 4) Отправляем отчёт в Telegram
	if !cfg.SendReport || cfg.TelegramBotToken == "" || len(cfg.TelegramChatIDs) == 0 {
		log.Info().Msg("Telegram delivery disabled")
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Telegram bot")
		os.Exit(1)
	}

	if err := report.NewTelegramSender(bot, cfg.TelegramChatIDs).Send(ctx, text); err != nil {
		log.Error().Err(err).Msg("Report delivery failed")
		os.Exit(1)
	}
}

func metricsMux(application *app.App) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", application.Metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
