package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/KotFed0t/btc_moonshot_bot/internal/portfolioCalculator"
	"github.com/KotFed0t/btc_moonshot_bot/utils"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName  = "Purchases"
	dateFormat = "yyyy-mm-dd hh:mm"
)

var ErrEmptyHistory = errors.New("empty purchase history")

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate builds a workbook with one row per purchase (as given, most recent
// first) and a totals row.
func (g *XLSXGenerator) Generate(ctx context.Context, purchases []model.Purchase, assetSymbol string) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(purchases) == 0 {
		return nil, "", ErrEmptyHistory
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("purchases", len(purchases)))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", err
	}

	if err := g.fillSheet(f, purchases, assetSymbol); err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(f *excelize.File, purchases []model.Purchase, assetSymbol string) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return err
	}

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(dateFormat)})
	if err != nil {
		return err
	}

	headers := []string{"date", fmt.Sprintf("amount, %s", assetSymbol), "price", "total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellStr(sheetName, cell, h)
	}

	if err := f.SetCellStyle(sheetName, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	row := 1
	for _, p := range purchases {
		row++
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), p.DtCreate)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), p.Amount.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), p.Price.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), p.Total.InexactFloat64())
	}

	if err := f.SetCellStyle(sheetName, "A2", fmt.Sprintf("A%d", row), dateStyle); err != nil {
		return fmt.Errorf("apply date style: %w", err)
	}

	agg := portfolioCalculator.Aggregate(purchases)
	row++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "total")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), agg.TotalUnits.InexactFloat64())
	_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), agg.TotalInvested.InexactFloat64())

	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), headerStyle); err != nil {
		return fmt.Errorf("apply totals style: %w", err)
	}

	return f.SetColWidth(sheetName, "A", "D", 18)
}

func ptr[T any](v T) *T {
	return &v
}
