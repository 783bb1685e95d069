package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/btc_moonshot_bot/internal/converter/telebotConverter"
	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			slog.Info("start request", slog.String("rqID", rqID))

			defer func() {
				slog.Info(
					"request finished",
					slog.String("rqID", rqID),
					slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
				)
			}()

			return next(c)
		}
	}
}

// OnlyOwner answers everyone except allowedUserID with a fixed denial and
// stops the chain, so no handler, session or storage is reached.
func OnlyOwner(allowedUserID int64) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || sender.ID != allowedUserID {
				rqID, _ := c.Get("rqID").(string)
				var senderID int64
				if sender != nil {
					senderID = sender.ID
				}
				slog.Warn("access denied", slog.String("rqID", rqID), slog.Int64("senderID", senderID))
				return c.Send(telebotConverter.AccessDeniedMsg)
			}

			return next(c)
		}
	}
}
