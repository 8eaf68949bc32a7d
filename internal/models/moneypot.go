package models

import "time"

// MoneyPot представляет копилку — целевой фонд, в который пользователь
// откладывает процент от выручки (налоги, отпуск, новое оборудование).
type MoneyPot struct {
	ID          int       // Идентификатор копилки
	UserUID     string    // Владелец записи
	Name        string    // Название копилки
	Percent     int       // Процент от выручки, отчисляемый в копилку
	TargetCents int       // Целевая сумма
	SavedCents  int       // Накопленная сумма
	CreatedAt   time.Time // Дата создания записи
}

// DummyMoneyPot используется для приёма данных из JSON-запроса.
type DummyMoneyPot struct {
	Name        string `json:"name" validate:"required,min=1,max=100"` // Название копилки
	Percent     int    `json:"percent" validate:"required,gt=0,lte=100"` // Процент отчислений (1-100)
	TargetCents int    `json:"target_cents" validate:"gte=0"`          // Целевая сумма (>=0)
	SavedCents  int    `json:"saved_cents" validate:"gte=0"`           // Накопленная сумма (>=0)
}
