// Package models содержит доменные структуры салона: процедуры, копилки,
// закупки материалов, а также вспомогательные типы для приёма данных из
// JSON-запросов.
package models

import "time"

// Treatment представляет процедуру салона с её ценой и себестоимостью.
type Treatment struct {
	ID              int       // Идентификатор процедуры
	UserUID         string    // Владелец записи
	Name            string    // Название процедуры
	Price           int       // Цена для клиента, в минимальных единицах валюты
	ProductCost     int       // Себестоимость материалов
	DurationMinutes int       // Длительность процедуры в минутах
	CreatedAt       time.Time // Дата создания записи
}

// DummyTreatment используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Treatment.
type DummyTreatment struct {
	Name            string `json:"name" validate:"required,min=1,max=100"`     // Название процедуры
	Price           int    `json:"price" validate:"required,gt=0"`             // Цена (>0)
	ProductCost     int    `json:"product_cost" validate:"gte=0"`              // Себестоимость (>=0)
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`  // Длительность (>0)
}
