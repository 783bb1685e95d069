package session

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*RedisSession, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisSession(client, 10*time.Minute), mr
}

func TestRedisSession_NotFound(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.GetSession(context.Background(), "42")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisSession_RoundTrip(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	in := model.Session{
		Flow:         model.FlowAddPurchase,
		State:        model.StateAwaitPrice,
		PartialInput: map[string]decimal.Decimal{model.InputAmount: decimal.RequireFromString("0.01")},
	}

	require.NoError(t, s.SetSession(ctx, "42", in))

	out, err := s.GetSession(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, model.FlowAddPurchase, out.Flow)
	assert.Equal(t, model.StateAwaitPrice, out.State)
	assert.True(t, in.PartialInput[model.InputAmount].Equal(out.PartialInput[model.InputAmount]))
}

func TestRedisSession_KeyedByIdentity(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.SetSession(ctx, "1", model.Session{Flow: model.FlowMoonshot, State: model.StateAwaitTargetPrice}))

	_, err := s.GetSession(ctx, "2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisSession_Delete(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.SetSession(ctx, "42", model.Session{Flow: model.FlowMoonshot}))
	require.NoError(t, s.DeleteSession(ctx, "42"))

	_, err := s.GetSession(ctx, "42")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisSession_Expires(t *testing.T) {
	s, mr := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.SetSession(ctx, "42", model.Session{Flow: model.FlowMoonshot}))
	mr.FastForward(11 * time.Minute)

	_, err := s.GetSession(ctx, "42")
	assert.ErrorIs(t, err, ErrNotFound)
}
