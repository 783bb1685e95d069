package dialog

import (
	"context"
	"errors"
	"testing"

	"github.com/KotFed0t/btc_moonshot_bot/data/session"
	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/KotFed0t/btc_moonshot_bot/internal/portfolioCalculator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memSession is an in-memory Session store
type memSession struct {
	sessions map[string]model.Session
	setErr   error
}

func newMemSession() *memSession {
	return &memSession{sessions: map[string]model.Session{}}
}

func (s *memSession) GetSession(_ context.Context, key string) (model.Session, error) {
	chatSession, ok := s.sessions[key]
	if !ok {
		return model.Session{}, session.ErrNotFound
	}
	return chatSession, nil
}

func (s *memSession) SetSession(_ context.Context, key string, chatSession model.Session) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.sessions[key] = chatSession
	return nil
}

func (s *memSession) DeleteSession(_ context.Context, key string) error {
	delete(s.sessions, key)
	return nil
}

// MockService is a mock implementation of Service for testing
type MockService struct {
	mock.Mock
}

func (m *MockService) AddPurchase(ctx context.Context, amount, price decimal.Decimal) (model.Purchase, error) {
	args := m.Called(ctx, amount, price)
	return args.Get(0).(model.Purchase), args.Error(1)
}

func (m *MockService) GetMoonshot(ctx context.Context, targetPrice decimal.Decimal) (model.Moonshot, error) {
	args := m.Called(ctx, targetPrice)
	return args.Get(0).(model.Moonshot), args.Error(1)
}

const owner = "42"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decEq(expected string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(dec(expected)) })
}

func newTestMachine() (*Machine, *memSession, *MockService) {
	store := newMemSession()
	srv := new(MockService)
	return New(store, srv), store, srv
}

func TestHandleInput_NoSessionIsIgnored(t *testing.T) {
	m, store, srv := newTestMachine()

	res, err := m.HandleInput(context.Background(), owner, "hello")

	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.Empty(t, store.sessions)
	srv.AssertNotCalled(t, "AddPurchase", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddPurchase_RetryThenAdvance(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestMachine()

	res, err := m.StartAddPurchase(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, OutcomePrompt, res.Outcome)
	assert.Equal(t, model.StateAwaitAmount, res.State)

	res, err = m.HandleInput(ctx, owner, "abc")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetry, res.Outcome)
	assert.Equal(t, model.StateAwaitAmount, store.sessions[owner].State)
	assert.Empty(t, store.sessions[owner].PartialInput)

	res, err = m.HandleInput(ctx, owner, "0.01")
	require.NoError(t, err)
	assert.Equal(t, OutcomePrompt, res.Outcome)
	assert.Equal(t, model.StateAwaitPrice, res.State)
	assert.Equal(t, model.StateAwaitPrice, store.sessions[owner].State)
	assert.True(t, store.sessions[owner].PartialInput[model.InputAmount].Equal(dec("0.01")))
}

func TestAddPurchase_InvalidPriceKeepsPartialInput(t *testing.T) {
	ctx := context.Background()
	m, store, srv := newTestMachine()

	_, _ = m.StartAddPurchase(ctx, owner)
	_, _ = m.HandleInput(ctx, owner, "0.5")
	before := store.sessions[owner]

	for _, bad := range []string{"", "abc", "-100", "0"} {
		res, err := m.HandleInput(ctx, owner, bad)
		require.NoError(t, err)
		assert.Equal(t, OutcomeRetry, res.Outcome)
		assert.Equal(t, model.StateAwaitPrice, res.State)
		assert.Equal(t, before, store.sessions[owner])
	}

	srv.AssertNotCalled(t, "AddPurchase", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddPurchase_Complete(t *testing.T) {
	ctx := context.Background()
	m, store, srv := newTestMachine()

	added := model.Purchase{Amount: dec("0.5"), Price: dec("60000"), Total: dec("30000")}
	srv.On("AddPurchase", ctx, decEq("0.5"), decEq("60000")).Return(added, nil).Once()

	_, _ = m.StartAddPurchase(ctx, owner)
	_, _ = m.HandleInput(ctx, owner, "0.5")
	res, err := m.HandleInput(ctx, owner, "60000")

	require.NoError(t, err)
	assert.Equal(t, OutcomePurchaseAdded, res.Outcome)
	assert.Equal(t, model.StateIdle, res.State)
	assert.True(t, res.Purchase.Total.Equal(dec("30000")))
	assert.NotContains(t, store.sessions, owner)
	srv.AssertExpectations(t)

	// после завершения ввод снова игнорируется
	res, err = m.HandleInput(ctx, owner, "60000")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
}

func TestAddPurchase_StorageFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	m, store, srv := newTestMachine()
	dbErr := errors.New("db down")

	srv.On("AddPurchase", ctx, mock.Anything, mock.Anything).Return(model.Purchase{}, dbErr).Once()
	srv.On("AddPurchase", ctx, decEq("0.5"), decEq("60000")).Return(model.Purchase{Total: dec("30000")}, nil).Once()

	_, _ = m.StartAddPurchase(ctx, owner)
	_, _ = m.HandleInput(ctx, owner, "0.5")
	before := store.sessions[owner]

	_, err := m.HandleInput(ctx, owner, "60000")
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, before, store.sessions[owner])

	res, err := m.HandleInput(ctx, owner, "60000")
	require.NoError(t, err)
	assert.Equal(t, OutcomePurchaseAdded, res.Outcome)
}

func TestAddPurchase_CorruptedSession(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestMachine()

	store.sessions[owner] = model.Session{Flow: model.FlowAddPurchase, State: model.StateAwaitPrice}

	_, err := m.HandleInput(ctx, owner, "60000")

	assert.ErrorIs(t, err, ErrCorruptedSession)
	assert.NotContains(t, store.sessions, owner)
}

func TestMoonshot_Complete(t *testing.T) {
	ctx := context.Background()
	m, store, srv := newTestMachine()

	expected := portfolioCalculator.Moonshot(dec("1.0"), dec("90000"), dec("150000"))
	srv.On("GetMoonshot", ctx, decEq("150000")).Return(expected, nil)

	res, err := m.StartMoonshot(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitTargetPrice, res.State)

	res, err = m.HandleInput(ctx, owner, "to the moon")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetry, res.Outcome)
	assert.Equal(t, model.StateAwaitTargetPrice, store.sessions[owner].State)

	res, err = m.HandleInput(ctx, owner, "150000")
	require.NoError(t, err)
	assert.Equal(t, OutcomeMoonshot, res.Outcome)
	assert.True(t, res.Moonshot.HypotheticalValue.Equal(dec("150000")))
	assert.True(t, res.Moonshot.ProfitVsNow.Equal(dec("60000")))
	assert.NotContains(t, store.sessions, owner)
}

func TestMoonshot_OracleFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	m, store, srv := newTestMachine()
	apiErr := errors.New("coingecko timeout")

	srv.On("GetMoonshot", ctx, mock.Anything).Return(model.Moonshot{}, apiErr)

	_, _ = m.StartMoonshot(ctx, owner)
	_, err := m.HandleInput(ctx, owner, "150000")

	assert.ErrorIs(t, err, apiErr)
	assert.Equal(t, model.StateAwaitTargetPrice, store.sessions[owner].State)
}

func TestReentryAbandonsPreviousFlow(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestMachine()

	_, _ = m.StartAddPurchase(ctx, owner)
	_, _ = m.HandleInput(ctx, owner, "0.5")

	_, err := m.StartMoonshot(ctx, owner)
	require.NoError(t, err)

	assert.Equal(t, model.FlowMoonshot, store.sessions[owner].Flow)
	assert.Equal(t, model.StateAwaitTargetPrice, store.sessions[owner].State)
	assert.Empty(t, store.sessions[owner].PartialInput)
}

func TestSessionsAreKeyedByIdentity(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestMachine()

	_, _ = m.StartAddPurchase(ctx, "1")
	_, _ = m.StartMoonshot(ctx, "2")
	_, _ = m.HandleInput(ctx, "1", "0.3")

	assert.Equal(t, model.StateAwaitPrice, store.sessions["1"].State)
	assert.Equal(t, model.StateAwaitTargetPrice, store.sessions["2"].State)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestMachine()

	res, err := m.Cancel(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)

	_, _ = m.StartAddPurchase(ctx, owner)
	res, err = m.Cancel(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, res.Outcome)
	assert.NotContains(t, store.sessions, owner)
}

func TestStart_SessionStoreFailure(t *testing.T) {
	m, store, _ := newTestMachine()
	store.setErr = errors.New("redis down")

	_, err := m.StartAddPurchase(context.Background(), owner)

	assert.Error(t, err)
}

func TestHandleInput_UnknownStateIsDropped(t *testing.T) {
	m, store, _ := newTestMachine()
	store.sessions[owner] = model.Session{Flow: model.FlowMoonshot, State: model.StateAwaitAmount}

	res, err := m.HandleInput(context.Background(), owner, "1")

	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.NotContains(t, store.sessions, owner)
}

func TestHandleInput_InactiveSessionIsDropped(t *testing.T) {
	m, store, srv := newTestMachine()
	store.sessions[owner] = model.Session{Flow: model.FlowNone, State: model.StateAwaitPrice}

	res, err := m.HandleInput(context.Background(), owner, "60000")

	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.NotContains(t, store.sessions, owner)
	srv.AssertNotCalled(t, "AddPurchase", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleInput_OversizedNumberIsRetried(t *testing.T) {
	m, store, srv := newTestMachine()
	_, err := m.StartMoonshot(context.Background(), owner)
	require.NoError(t, err)

	res, err := m.HandleInput(context.Background(), owner, "1e50000000")

	require.NoError(t, err)
	assert.Equal(t, OutcomeRetry, res.Outcome)
	assert.Equal(t, model.StateAwaitTargetPrice, store.sessions[owner].State)
	srv.AssertNotCalled(t, "GetMoonshot", mock.Anything, mock.Anything)
}
