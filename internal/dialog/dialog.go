// Package dialog implements the multi-step input flows of the bot.
//
// A flow is a linear sequence of states stored per identity in a Session
// store. Invalid input never advances or mutates a session; a failing
// completion step leaves the session untouched so the same input can be sent
// again. Starting a flow while another is active abandons the previous one.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/btc_moonshot_bot/data/session"
	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/KotFed0t/btc_moonshot_bot/utils"
	"github.com/shopspring/decimal"
)

var ErrCorruptedSession = errors.New("corrupted dialog session")

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
	DeleteSession(ctx context.Context, key string) error
}

type Service interface {
	AddPurchase(ctx context.Context, amount, price decimal.Decimal) (model.Purchase, error)
	GetMoonshot(ctx context.Context, targetPrice decimal.Decimal) (model.Moonshot, error)
}

type Outcome int

const (
	// no active flow, input is not for us
	OutcomeIgnored Outcome = iota
	// flow moved to Result.State and expects the next input
	OutcomePrompt
	// input rejected, flow stays in Result.State
	OutcomeRetry
	OutcomePurchaseAdded
	OutcomeMoonshot
	OutcomeCancelled
)

type Result struct {
	Outcome  Outcome
	State    model.State
	Purchase model.Purchase
	Moonshot model.Moonshot
}

type Machine struct {
	session Session
	srv     Service
}

func New(session Session, srv Service) *Machine {
	return &Machine{session: session, srv: srv}
}

func (m *Machine) StartAddPurchase(ctx context.Context, key string) (Result, error) {
	return m.start(ctx, key, model.FlowAddPurchase, model.StateAwaitAmount)
}

func (m *Machine) StartMoonshot(ctx context.Context, key string) (Result, error) {
	return m.start(ctx, key, model.FlowMoonshot, model.StateAwaitTargetPrice)
}

func (m *Machine) start(ctx context.Context, key string, flow model.Flow, state model.State) (Result, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Machine.start"

	chatSession := model.Session{
		Flow:         flow,
		State:        state,
		PartialInput: map[string]decimal.Decimal{},
	}

	// перезаписывает незавершенный диалог, если он был
	err := m.session.SetSession(ctx, key, chatSession)
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return Result{}, err
	}

	slog.Debug("flow started", slog.String("rqID", rqID), slog.String("op", op), slog.Int("flow", int(flow)))

	return Result{Outcome: OutcomePrompt, State: state}, nil
}

// Cancel abandons the active flow, if there is one.
func (m *Machine) Cancel(ctx context.Context, key string) (Result, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Machine.Cancel"

	chatSession, err := m.session.GetSession(ctx, key)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Result{Outcome: OutcomeIgnored}, nil
		}
		return Result{}, err
	}

	if err = m.session.DeleteSession(ctx, key); err != nil {
		slog.Error("got error from session.DeleteSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return Result{}, err
	}

	slog.Debug("flow cancelled", slog.String("rqID", rqID), slog.String("op", op), slog.Int("flow", int(chatSession.Flow)))

	return Result{Outcome: OutcomeCancelled, State: model.StateIdle}, nil
}

// HandleInput feeds free text into the active flow.
func (m *Machine) HandleInput(ctx context.Context, key, text string) (Result, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Machine.HandleInput"

	chatSession, err := m.session.GetSession(ctx, key)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Result{Outcome: OutcomeIgnored}, nil
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return Result{}, err
	}

	if !chatSession.Active() {
		// сессия без флоу ничего не ждет
		m.finish(ctx, key)
		return Result{Outcome: OutcomeIgnored}, nil
	}

	slog.Debug("handle input", slog.String("rqID", rqID), slog.String("op", op), slog.Int("state", int(chatSession.State)))

	switch {
	case chatSession.Flow == model.FlowAddPurchase && chatSession.State == model.StateAwaitAmount:
		return m.handleAmount(ctx, key, chatSession, text)
	case chatSession.Flow == model.FlowAddPurchase && chatSession.State == model.StateAwaitPrice:
		return m.handlePrice(ctx, key, chatSession, text)
	case chatSession.Flow == model.FlowMoonshot && chatSession.State == model.StateAwaitTargetPrice:
		return m.handleTargetPrice(ctx, key, chatSession, text)
	default:
		slog.Warn("unexpected session state, dropping", slog.String("rqID", rqID), slog.String("op", op), slog.Any("session", chatSession))
		m.finish(ctx, key)
		return Result{Outcome: OutcomeIgnored}, nil
	}
}

func (m *Machine) handleAmount(ctx context.Context, key string, chatSession model.Session, text string) (Result, error) {
	amount, ok := ParsePositive(text)
	if !ok {
		return Result{Outcome: OutcomeRetry, State: chatSession.State}, nil
	}

	next := model.Session{
		Flow:         chatSession.Flow,
		State:        model.StateAwaitPrice,
		PartialInput: map[string]decimal.Decimal{model.InputAmount: amount},
	}

	if err := m.session.SetSession(ctx, key, next); err != nil {
		return Result{}, err
	}

	return Result{Outcome: OutcomePrompt, State: next.State}, nil
}

func (m *Machine) handlePrice(ctx context.Context, key string, chatSession model.Session, text string) (Result, error) {
	price, ok := ParsePositive(text)
	if !ok {
		return Result{Outcome: OutcomeRetry, State: chatSession.State}, nil
	}

	amount, ok := chatSession.PartialInput[model.InputAmount]
	if !ok {
		m.finish(ctx, key)
		return Result{}, fmt.Errorf("%w: no amount collected", ErrCorruptedSession)
	}

	purchase, err := m.srv.AddPurchase(ctx, amount, price)
	if err != nil {
		return Result{}, err
	}

	m.finish(ctx, key)

	return Result{Outcome: OutcomePurchaseAdded, State: model.StateIdle, Purchase: purchase}, nil
}

func (m *Machine) handleTargetPrice(ctx context.Context, key string, chatSession model.Session, text string) (Result, error) {
	targetPrice, ok := ParsePositive(text)
	if !ok {
		return Result{Outcome: OutcomeRetry, State: chatSession.State}, nil
	}

	moonshot, err := m.srv.GetMoonshot(ctx, targetPrice)
	if err != nil {
		return Result{}, err
	}

	m.finish(ctx, key)

	return Result{Outcome: OutcomeMoonshot, State: model.StateIdle, Moonshot: moonshot}, nil
}

// finish destroys the session. A failure is only logged: the result is
// already committed and the session will expire on its own.
func (m *Machine) finish(ctx context.Context, key string) {
	if err := m.session.DeleteSession(ctx, key); err != nil {
		slog.Error(
			"got error from session.DeleteSession",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("op", "Machine.finish"),
			slog.String("err", err.Error()),
		)
	}
}
