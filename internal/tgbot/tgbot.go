package tgbot

import (
	"log/slog"

	"github.com/KotFed0t/btc_moonshot_bot/config"
	"github.com/KotFed0t/btc_moonshot_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/btc_moonshot_bot/internal/transport/telegram"
	customMW "github.com/KotFed0t/btc_moonshot_bot/internal/transport/telegram/middleware"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot           *tele.Bot
	ctrl          *telegram.Controller
	allowedUserID int64
}

func New(cfg *config.Config, ctrl *telegram.Controller) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
		OnError: func(err error, c tele.Context) {
			slog.Error("unhandled telegram handler error", slog.String("err", err.Error()))
		},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl, allowedUserID: cfg.Telegram.AllowedUserID}
}

func (b *TGBot) Start() {
	// OnlyOwner последним, чтобы отказы тоже попадали в лог
	b.bot.Use(middleware.Recover(), customMW.Logger(), customMW.OnlyOwner(b.allowedUserID))

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/menu", b.ctrl.Menu)
	b.bot.Handle("/cancel", b.ctrl.Cancel)
	b.bot.Handle("/export", b.ctrl.Export)

	b.bot.Handle(&telebotConverter.BtnAddPurchase, b.ctrl.StartAddPurchase)
	b.bot.Handle(&telebotConverter.BtnProgress, b.ctrl.Progress)
	b.bot.Handle(&telebotConverter.BtnHistory, b.ctrl.History)
	b.bot.Handle(&telebotConverter.BtnMoonshot, b.ctrl.StartMoonshot)

	b.bot.Handle(tele.OnText, b.ctrl.OnText)
}
