package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KotFed0t/btc_moonshot_bot/config"
	"github.com/KotFed0t/btc_moonshot_bot/data"
	"github.com/KotFed0t/btc_moonshot_bot/data/cache"
	"github.com/KotFed0t/btc_moonshot_bot/data/repository/postgres"
	"github.com/KotFed0t/btc_moonshot_bot/data/session"
	"github.com/KotFed0t/btc_moonshot_bot/internal/chartRenderer/pieChart"
	"github.com/KotFed0t/btc_moonshot_bot/internal/dialog"
	"github.com/KotFed0t/btc_moonshot_bot/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/btc_moonshot_bot/internal/externalApi/coingeckoApi"
	"github.com/KotFed0t/btc_moonshot_bot/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/btc_moonshot_bot/internal/scheduler"
	"github.com/KotFed0t/btc_moonshot_bot/internal/service/moonshotService"
	"github.com/KotFed0t/btc_moonshot_bot/internal/tgbot"
	"github.com/KotFed0t/btc_moonshot_bot/internal/transport/telegram"
)

const deleteOldFilesTimeout = 5 * time.Minute

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config loaded", slog.String("logLevel", cfg.LogLevel), slog.Bool("googleDrive", cfg.GoogleDrive.Enabled()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg.Cache.PriceExpiration)
	redisSession := session.NewRedisSession(redisClient, cfg.SessionExpiration)

	priceApi := coingeckoApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	// без credentials выгрузка отправляется только файлом в telegram
	var cloudStorage moonshotService.CloudStorage
	sched := scheduler.New()
	if cfg.GoogleDrive.Enabled() {
		googleCloudStorage := googleDriveApi.New(ctx, cfg)
		cloudStorage = googleCloudStorage

		err := sched.NewIntervalJob("delete old google drive exports", googleCloudStorage.DeleteOldFiles, cfg.Jobs.DeleteOldFilesInterval, deleteOldFilesTimeout, true)
		if err != nil {
			panic(err)
		}
	}
	sched.Start()
	defer sched.Stop()

	moonshotSrv := moonshotService.New(cfg, pgRepo, redisCache, priceApi, reportGenerator, cloudStorage)

	dialogMachine := dialog.New(redisSession, moonshotSrv)

	tgController := telegram.NewController(cfg, moonshotSrv, dialogMachine, pieChart.New())

	tgBot := tgbot.New(cfg, tgController)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	})).With(slog.String("app", "btc_moonshot_bot"))
	slog.SetDefault(log)
}
