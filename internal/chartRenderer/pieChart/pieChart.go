package pieChart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/KotFed0t/btc_moonshot_bot/internal/portfolioCalculator"
	"github.com/KotFed0t/btc_moonshot_bot/utils"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const size = 600

var (
	ErrNothingToDraw = errors.New("nothing to draw")

	currentValueColor = drawing.ColorFromHex("4CAF50")
	remainingColor    = drawing.ColorFromHex("FFC107")
)

type PieChart struct{}

func New() *PieChart {
	return &PieChart{}
}

// RenderProgress draws current value against what is left to the goal as PNG.
func (p *PieChart) RenderProgress(ctx context.Context, snapshot model.Snapshot) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PieChart.RenderProgress"

	slog.Debug("RenderProgress start", slog.String("rqID", rqID), slog.String("op", op))

	current := snapshot.CurrentValue.InexactFloat64()
	remaining := portfolioCalculator.RemainingToGoal(snapshot).InexactFloat64()
	total := current + remaining

	// нулевые сектора go-chart не рисует корректно
	values := make([]chart.Value, 0, 2)
	if current > 0 {
		values = append(values, chart.Value{
			Value: current,
			Label: fmt.Sprintf("Current value %.1f%%", current/total*100),
			Style: chart.Style{FillColor: currentValueColor, StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}
	if remaining > 0 {
		values = append(values, chart.Value{
			Value: remaining,
			Label: fmt.Sprintf("Left to goal %.1f%%", remaining/total*100),
			Style: chart.Style{FillColor: remainingColor, StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}

	if len(values) == 0 {
		return nil, ErrNothingToDraw
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("Progress to goal (%s)", snapshot.Goal.StringFixed(0)),
		Width:  size,
		Height: size,
		Values: values,
	}

	buf := bytes.NewBuffer(nil)
	if err := pie.Render(chart.PNG, buf); err != nil {
		slog.Error("failed on pie.Render", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("RenderProgress completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}
