package dbConverter

import (
	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/KotFed0t/btc_moonshot_bot/internal/model/dbModel"
)

func ConvertPurchase(dbPurchase dbModel.Purchase) model.Purchase {
	return model.Purchase{
		ID:       dbPurchase.ID,
		Amount:   dbPurchase.Amount,
		Price:    dbPurchase.Price,
		Total:    dbPurchase.Total,
		DtCreate: dbPurchase.DtCreate,
	}
}

func ConvertPurchaseToDB(purchase model.Purchase) dbModel.Purchase {
	return dbModel.Purchase{
		ID:       purchase.ID,
		Amount:   purchase.Amount,
		Price:    purchase.Price,
		Total:    purchase.Total,
		DtCreate: purchase.DtCreate,
	}
}
