package coingeckoApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/btc_moonshot_bot/config"
	"github.com/KotFed0t/btc_moonshot_bot/internal/externalApi"
	"github.com/KotFed0t/btc_moonshot_bot/internal/model/coingeckoModel"
	"github.com/KotFed0t/btc_moonshot_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const simplePriceUrl = "/api/v3/simple/price"

type CoingeckoApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *CoingeckoApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.CoingeckoApi.Url)
	return &CoingeckoApi{client: client}
}

// GetCurrentPrice returns the spot price of asset (coingecko id, e.g. "bitcoin")
// in fiat (e.g. "usd").
func (a *CoingeckoApi) GetCurrentPrice(ctx context.Context, asset, fiat string) (decimal.Decimal, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)
	op := "CoingeckoApi.GetCurrentPrice"
	asset, fiat = strings.ToLower(asset), strings.ToLower(fiat)

	slog.Debug("start CoingeckoApi.GetCurrentPrice request", slog.String("rqID", rqId), slog.String("asset", asset), slog.String("fiat", fiat))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"ids":           asset,
			"vs_currencies": fiat,
		}).
		Get(simplePriceUrl)

	if err != nil {
		slog.Error("error while dialing CoingeckoApi", slog.String("err", err.Error()), slog.String("rqID", rqId), slog.String("op", op))
		return decimal.Decimal{}, err
	}

	if resp.IsError() {
		slog.Error(
			"CoingeckoApi responded with error status",
			slog.String("rqID", rqId),
			slog.String("op", op),
			slog.Int("status", resp.StatusCode()),
			slog.String("body", string(resp.Body())),
		)
		return decimal.Decimal{}, fmt.Errorf("%w: %d", externalApi.ErrUnexpectedStatus, resp.StatusCode())
	}

	simplePrice := coingeckoModel.SimplePrice{}
	err = json.Unmarshal(resp.Body(), &simplePrice)
	if err != nil {
		slog.Error("can't unmarshall response into coingeckoModel.SimplePrice", slog.String("err", err.Error()), slog.String("rqID", rqId), slog.String("op", op))
		return decimal.Decimal{}, err
	}

	price, ok := simplePrice[asset][fiat]
	if !ok {
		slog.Warn("price not found in CoingeckoApi response", slog.String("rqID", rqId), slog.String("op", op), slog.String("body", string(resp.Body())))
		return decimal.Decimal{}, externalApi.ErrNotFound
	}

	if !price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("non-positive price %s for %s/%s", price, asset, fiat)
	}

	slog.Debug("CoingeckoApi.GetCurrentPrice request complete", slog.String("rqID", rqId), slog.String("price", price.String()))

	return price, nil
}
