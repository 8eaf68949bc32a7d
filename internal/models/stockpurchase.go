package models

import "time"

// StockPurchase представляет закупку расходных материалов.
type StockPurchase struct {
	ID           int       // Идентификатор закупки
	UserUID      string    // Владелец записи
	Supplier     string    // Поставщик
	Description  string    // Что закуплено
	AmountCents  int       // Сумма закупки
	PurchaseDate time.Time // Дата закупки
	CreatedAt    time.Time // Дата создания записи
}

// DummyStockPurchase используется для приёма данных из JSON-запроса.
// Дата приходит строкой в формате 02-01-2006 и парсится вручную.
type DummyStockPurchase struct {
	Supplier     string `json:"supplier" validate:"required,min=1,max=100"` // Поставщик
	Description  string `json:"description" validate:"max=500"`             // Описание закупки
	AmountCents  int    `json:"amount_cents" validate:"required,gt=0"`      // Сумма (>0)
	PurchaseDate string `json:"purchase_date" validate:"required"`          // Дата в формате 02-01-2006
}
