package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/btc_moonshot_bot/data/repository"
	"github.com/KotFed0t/btc_moonshot_bot/internal/converter/dbConverter"
	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/KotFed0t/btc_moonshot_bot/internal/model/dbModel"
	"github.com/KotFed0t/btc_moonshot_bot/utils"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

func (r *Postgres) InsertPurchase(ctx context.Context, purchase model.Purchase) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertPurchase"
	query := `INSERT INTO purchases(id, amount, price, total, dt_create) VALUES($1, $2, $3, $4, $5)`

	slog.Debug("InsertPurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertPurchase failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertPurchase completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	p := dbConverter.ConvertPurchaseToDB(purchase)

	_, err = r.db.ExecContext(ctx, query, p.ID, p.Amount, p.Price, p.Total, p.DtCreate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return repository.ErrAlreadyExists
			}
		}
		return err
	}

	return nil
}

// SumPurchases returns zeros for an empty ledger.
func (r *Postgres) SumPurchases(ctx context.Context) (agg model.Aggregate, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.SumPurchases"
	query := `SELECT COALESCE(SUM(amount), 0) AS total_units, COALESCE(SUM(total), 0) AS total_invested FROM purchases`

	slog.Debug("SumPurchases start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("SumPurchases failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("SumPurchases completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.db.QueryRowxContext(ctx, query).Scan(&agg.TotalUnits, &agg.TotalInvested)
	if err != nil {
		return model.Aggregate{}, err
	}

	return agg, nil
}

// GetPurchases returns the whole ledger, most recent first.
func (r *Postgres) GetPurchases(ctx context.Context) (purchases []model.Purchase, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPurchases"
	query := `
		SELECT id, amount, price, total, dt_create
		FROM purchases
		ORDER BY dt_create DESC, id
		`

	slog.Debug("GetPurchases start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPurchases failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPurchases completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(purchases)))
		}
	}()

	var dbPurchases []dbModel.Purchase
	err = r.db.SelectContext(ctx, &dbPurchases, query)
	if err != nil {
		return nil, err
	}

	purchases = make([]model.Purchase, 0, len(dbPurchases))
	for _, p := range dbPurchases {
		purchases = append(purchases, dbConverter.ConvertPurchase(p))
	}

	return purchases, nil
}
