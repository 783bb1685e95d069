package moonshotService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/KotFed0t/btc_moonshot_bot/config"
	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/KotFed0t/btc_moonshot_bot/internal/portfolioCalculator"
	"github.com/KotFed0t/btc_moonshot_bot/internal/service"
	"github.com/KotFed0t/btc_moonshot_bot/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PriceApi interface {
	GetCurrentPrice(ctx context.Context, asset, fiat string) (decimal.Decimal, error)
}

type Cache interface {
	GetPrice(ctx context.Context, asset, fiat string) (decimal.Decimal, error)
	SetPrice(ctx context.Context, asset, fiat string, price decimal.Decimal) error
}

type Repository interface {
	InsertPurchase(ctx context.Context, purchase model.Purchase) error
	SumPurchases(ctx context.Context) (model.Aggregate, error)
	GetPurchases(ctx context.Context) ([]model.Purchase, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, purchases []model.Purchase, assetSymbol string) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type MoonshotService struct {
	repo            Repository
	cache           Cache
	priceApi        PriceApi
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage // nil when google drive is not configured

	asset            string
	assetSymbol      string
	fiat             string
	fileLimitInBytes int
	now              func() time.Time
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	priceApi PriceApi,
	reportGenerator ReportGenerator,
	cloudStorage CloudStorage,
) *MoonshotService {
	return &MoonshotService{
		repo:             repo,
		cache:            cache,
		priceApi:         priceApi,
		reportGenerator:  reportGenerator,
		cloudStorage:     cloudStorage,
		asset:            cfg.API.CoingeckoApi.AssetID,
		assetSymbol:      cfg.API.CoingeckoApi.AssetSymbol,
		fiat:             cfg.API.CoingeckoApi.FiatCurrency,
		fileLimitInBytes: cfg.Telegram.FileLimitInBytes,
		now:              time.Now,
	}
}

func (s *MoonshotService) AddPurchase(ctx context.Context, amount, price decimal.Decimal) (model.Purchase, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MoonshotService.AddPurchase"

	slog.Debug("AddPurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("amount", amount.String()), slog.String("price", price.String()))
	defer func() {
		slog.Debug("AddPurchase finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if !amount.IsPositive() || !price.IsPositive() {
		return model.Purchase{}, service.ErrNonPositive
	}

	purchase := model.Purchase{
		ID:       uuid.New(),
		Amount:   amount,
		Price:    price,
		Total:    amount.Mul(price),
		DtCreate: s.now().UTC(),
	}

	err := s.repo.InsertPurchase(ctx, purchase)
	if err != nil {
		slog.Error("got error from repo.InsertPurchase", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Purchase{}, err
	}

	return purchase, nil
}

func (s *MoonshotService) GetSnapshot(ctx context.Context) (model.Snapshot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MoonshotService.GetSnapshot"

	slog.Debug("GetSnapshot start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetSnapshot finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	agg, err := s.repo.SumPurchases(ctx)
	if err != nil {
		slog.Error("got error from repo.SumPurchases", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Snapshot{}, err
	}

	currentPrice, err := s.getCurrentPrice(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	return portfolioCalculator.Snapshot(agg, currentPrice, portfolioCalculator.Goal), nil
}

func (s *MoonshotService) GetMoonshot(ctx context.Context, targetPrice decimal.Decimal) (model.Moonshot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MoonshotService.GetMoonshot"

	slog.Debug("GetMoonshot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("targetPrice", targetPrice.String()))
	defer func() {
		slog.Debug("GetMoonshot finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if !targetPrice.IsPositive() {
		return model.Moonshot{}, service.ErrNonPositive
	}

	agg, err := s.repo.SumPurchases(ctx)
	if err != nil {
		slog.Error("got error from repo.SumPurchases", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Moonshot{}, err
	}

	currentPrice, err := s.getCurrentPrice(ctx)
	if err != nil {
		return model.Moonshot{}, err
	}

	return portfolioCalculator.Moonshot(agg.TotalUnits, currentPrice, targetPrice), nil
}

// GetHistory returns all purchases, most recent first.
func (s *MoonshotService) GetHistory(ctx context.Context) ([]model.Purchase, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MoonshotService.GetHistory"

	purchases, err := s.repo.GetPurchases(ctx)
	if err != nil {
		slog.Error("got error from repo.GetPurchases", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return purchases, nil
}

func (s *MoonshotService) ExportHistory(ctx context.Context) (model.Export, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MoonshotService.ExportHistory"

	slog.Debug("ExportHistory start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ExportHistory finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	purchases, err := s.GetHistory(ctx)
	if err != nil {
		return model.Export{}, err
	}

	if len(purchases) == 0 {
		return model.Export{}, service.ErrEmptyHistory
	}

	fileBytes, ext, err := s.reportGenerator.Generate(ctx, purchases, s.assetSymbol)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Export{}, err
	}

	export := model.Export{
		FileName:  fmt.Sprintf("purchases_%s%s", s.now().UTC().Format("2006-01-02_15-04-05"), ext),
		FileBytes: fileBytes,
	}

	if len(fileBytes) <= s.fileLimitInBytes || s.cloudStorage == nil {
		return export, nil
	}

	slog.Info("export exceeds telegram file limit, uploading to cloud", slog.String("rqID", rqID), slog.String("op", op), slog.Int("bytes", len(fileBytes)))

	link, err := s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), export.FileName)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Export{}, err
	}

	return model.Export{FileName: export.FileName, DownloadLink: link}, nil
}

func (s *MoonshotService) getCurrentPrice(ctx context.Context) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MoonshotService.getCurrentPrice"

	price, err := s.cache.GetPrice(ctx, s.asset, s.fiat)
	if err == nil {
		return price, nil
	}

	slog.Warn("can't get price from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	price, err = s.priceApi.GetCurrentPrice(ctx, s.asset, s.fiat)
	if err != nil {
		slog.Error("can't get price from priceApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return decimal.Decimal{}, errors.Join(service.ErrPriceUnavailable, err)
	}

	if err := s.cache.SetPrice(ctx, s.asset, s.fiat, price); err != nil {
		slog.Warn("can't save price to cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return price, nil
}
