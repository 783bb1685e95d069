package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/KotFed0t/btc_moonshot_bot/config"
	"github.com/KotFed0t/btc_moonshot_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/btc_moonshot_bot/internal/dialog"
	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/KotFed0t/btc_moonshot_bot/internal/service"
	"github.com/KotFed0t/btc_moonshot_bot/utils"
	tele "gopkg.in/telebot.v4"
)

type MoonshotService interface {
	GetSnapshot(ctx context.Context) (model.Snapshot, error)
	GetHistory(ctx context.Context) ([]model.Purchase, error)
	ExportHistory(ctx context.Context) (model.Export, error)
}

type Dialog interface {
	StartAddPurchase(ctx context.Context, key string) (dialog.Result, error)
	StartMoonshot(ctx context.Context, key string) (dialog.Result, error)
	Cancel(ctx context.Context, key string) (dialog.Result, error)
	HandleInput(ctx context.Context, key, text string) (dialog.Result, error)
}

type ChartRenderer interface {
	RenderProgress(ctx context.Context, snapshot model.Snapshot) ([]byte, error)
}

type Controller struct {
	moonshotService MoonshotService
	dialog          Dialog
	chartRenderer   ChartRenderer
	formatter       *telebotConverter.Formatter
	timeout         time.Duration
	location        *time.Location
}

func NewController(cfg *config.Config, moonshotService MoonshotService, dialog Dialog, chartRenderer ChartRenderer) *Controller {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Warn("unknown timezone, falling back to UTC", slog.String("timezone", cfg.Timezone), slog.String("err", err.Error()))
		location = time.UTC
	}

	return &Controller{
		moonshotService: moonshotService,
		dialog:          dialog,
		chartRenderer:   chartRenderer,
		formatter:       telebotConverter.NewFormatter(cfg.API.CoingeckoApi.FiatCurrency, cfg.API.CoingeckoApi.AssetSymbol),
		timeout:         cfg.Telegram.HandlerTimeout,
		location:        location,
	}
}

func (ctrl *Controller) requestCtx(c tele.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(utils.CreateCtxWithRqID(c), ctrl.timeout)
}

func sessionKey(c tele.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

func (ctrl *Controller) Start(c tele.Context) error {
	if err := c.Send(ctrl.formatter.Greeting()); err != nil {
		return err
	}
	return ctrl.Menu(c)
}

func (ctrl *Controller) Menu(c tele.Context) error {
	return c.Send(telebotConverter.MainMenuMsg, telebotConverter.MainMenu)
}

func (ctrl *Controller) StartAddPurchase(c tele.Context) error {
	ctx, cancel := ctrl.requestCtx(c)
	defer cancel()

	res, err := ctrl.dialog.StartAddPurchase(ctx, sessionKey(c))
	if err != nil {
		slog.Error("got error from dialog.StartAddPurchase", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return c.Send(telebotConverter.InternalErrMsg)
	}

	return ctrl.sendResult(c, res)
}

func (ctrl *Controller) StartMoonshot(c tele.Context) error {
	ctx, cancel := ctrl.requestCtx(c)
	defer cancel()

	res, err := ctrl.dialog.StartMoonshot(ctx, sessionKey(c))
	if err != nil {
		slog.Error("got error from dialog.StartMoonshot", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return c.Send(telebotConverter.InternalErrMsg)
	}

	return ctrl.sendResult(c, res)
}

func (ctrl *Controller) Cancel(c tele.Context) error {
	ctx, cancel := ctrl.requestCtx(c)
	defer cancel()

	res, err := ctrl.dialog.Cancel(ctx, sessionKey(c))
	if err != nil {
		slog.Error("got error from dialog.Cancel", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return c.Send(telebotConverter.InternalErrMsg)
	}

	if res.Outcome == dialog.OutcomeIgnored {
		return c.Send(telebotConverter.NothingToCancelMsg, telebotConverter.MainMenu)
	}

	return ctrl.sendResult(c, res)
}

// OnText routes free text into the active flow. Text outside a flow is ignored.
func (ctrl *Controller) OnText(c tele.Context) error {
	ctx, cancel := ctrl.requestCtx(c)
	defer cancel()
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := ctrl.dialog.HandleInput(ctx, sessionKey(c), c.Text())
	if err != nil {
		if errors.Is(err, dialog.ErrCorruptedSession) {
			slog.Error("dialog session was corrupted", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send(telebotConverter.InternalErrMsg, telebotConverter.MainMenu)
		}
		slog.Error("got error from dialog.HandleInput", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(telebotConverter.TemporaryFailureMsg)
	}

	return ctrl.sendResult(c, res)
}

func (ctrl *Controller) sendResult(c tele.Context, res dialog.Result) error {
	switch res.Outcome {
	case dialog.OutcomeIgnored:
		return nil
	case dialog.OutcomeRetry:
		return c.Send(telebotConverter.InvalidNumberMsg)
	case dialog.OutcomePrompt:
		return c.Send(ctrl.prompt(res.State), tele.RemoveKeyboard)
	case dialog.OutcomePurchaseAdded:
		return c.Send(ctrl.formatter.PurchaseAdded(res.Purchase), telebotConverter.MainMenu)
	case dialog.OutcomeMoonshot:
		return c.Send(ctrl.formatter.Moonshot(res.Moonshot), telebotConverter.MainMenu)
	case dialog.OutcomeCancelled:
		return c.Send(telebotConverter.CancelledMsg, telebotConverter.MainMenu)
	default:
		return fmt.Errorf("unknown dialog outcome %d", res.Outcome)
	}
}

func (ctrl *Controller) prompt(state model.State) string {
	switch state {
	case model.StateAwaitAmount:
		return ctrl.formatter.AskAmount()
	case model.StateAwaitPrice:
		return telebotConverter.AskPriceMsg
	case model.StateAwaitTargetPrice:
		return ctrl.formatter.AskTargetPrice()
	default:
		return telebotConverter.MainMenuMsg
	}
}

func (ctrl *Controller) Progress(c tele.Context) error {
	ctx, cancel := ctrl.requestCtx(c)
	defer cancel()
	rqID := utils.GetRequestIDFromCtx(ctx)

	snapshot, err := ctrl.moonshotService.GetSnapshot(ctx)
	if err != nil {
		slog.Error("got error from moonshotService.GetSnapshot", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(telebotConverter.TemporaryFailureMsg)
	}

	if err = c.Send(ctrl.formatter.Progress(snapshot)); err != nil {
		return err
	}

	img, err := ctrl.chartRenderer.RenderProgress(ctx, snapshot)
	if err != nil {
		// текст уже отправлен, без картинки можно обойтись
		slog.Error("got error from chartRenderer.RenderProgress", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil
	}

	return c.Send(&tele.Photo{File: tele.FromReader(bytes.NewReader(img))})
}

func (ctrl *Controller) History(c tele.Context) error {
	ctx, cancel := ctrl.requestCtx(c)
	defer cancel()

	purchases, err := ctrl.moonshotService.GetHistory(ctx)
	if err != nil {
		slog.Error("got error from moonshotService.GetHistory", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return c.Send(telebotConverter.TemporaryFailureMsg)
	}

	for _, msg := range ctrl.formatter.History(purchases, ctrl.location) {
		if err = c.Send(msg); err != nil {
			return err
		}
	}

	return nil
}

func (ctrl *Controller) Export(c tele.Context) error {
	ctx, cancel := ctrl.requestCtx(c)
	defer cancel()

	export, err := ctrl.moonshotService.ExportHistory(ctx)
	if err != nil {
		if errors.Is(err, service.ErrEmptyHistory) {
			return c.Send(telebotConverter.NoPurchasesMsg)
		}
		slog.Error("got error from moonshotService.ExportHistory", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return c.Send(telebotConverter.TemporaryFailureMsg)
	}

	if export.DownloadLink != "" {
		return c.Send(fmt.Sprintf(telebotConverter.ExportLinkMsg, export.DownloadLink))
	}

	return c.Send(&tele.Document{
		File:     tele.FromReader(bytes.NewReader(export.FileBytes)),
		FileName: export.FileName,
	})
}
