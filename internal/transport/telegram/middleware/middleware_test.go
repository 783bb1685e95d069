package middleware

import (
	"testing"

	"github.com/KotFed0t/btc_moonshot_bot/internal/converter/telebotConverter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	sender *tele.User
	store  map[string]interface{}
	sent   []interface{}
}

func newFakeContext(sender *tele.User) *fakeContext {
	return &fakeContext{sender: sender, store: map[string]interface{}{}}
}

func (f *fakeContext) Sender() *tele.User { return f.sender }

func (f *fakeContext) Get(key string) interface{} { return f.store[key] }

func (f *fakeContext) Set(key string, val interface{}) { f.store[key] = val }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

func TestOnlyOwner(t *testing.T) {
	cases := map[string]struct {
		sender  *tele.User
		allowed bool
	}{
		"owner":    {sender: &tele.User{ID: 42}, allowed: true},
		"stranger": {sender: &tele.User{ID: 7}, allowed: false},
		"channel":  {sender: nil, allowed: false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			called := false
			handler := OnlyOwner(42)(func(c tele.Context) error {
				called = true
				return nil
			})

			c := newFakeContext(tc.sender)
			require.NoError(t, handler(c))

			assert.Equal(t, tc.allowed, called)
			if tc.allowed {
				assert.Empty(t, c.sent)
			} else {
				assert.Equal(t, []interface{}{telebotConverter.AccessDeniedMsg}, c.sent)
			}
		})
	}
}

func TestLogger_SetsRequestID(t *testing.T) {
	var rqID string
	handler := Logger()(func(c tele.Context) error {
		rqID, _ = c.Get("rqID").(string)
		return nil
	})

	require.NoError(t, handler(newFakeContext(&tele.User{ID: 1})))

	assert.Len(t, rqID, 36)
}
