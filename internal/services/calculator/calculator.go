// Package calculator содержит финансовые калькуляторы салона.
//
// Все расчёты работают с суммами в минимальных единицах валюты (центах/пенсах)
// и округляют результат до целого в большую сторону там, где занижение
// означало бы работу себе в убыток.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidInput входные значения вне допустимого диапазона.
var ErrInvalidInput = errors.New("calculator input out of range")

// HourlyRateResult результат расчёта ставки за час.
type HourlyRateResult struct {
	HourlyRateCents int `json:"hourly_rate_cents"`
	MonthlyHours    int `json:"monthly_hours"`
}

// HourlyRate считает минимальную часовую ставку, покрывающую расходы салона
// и желаемый доход мастера при заданной недельной загрузке.
func HourlyRate(monthlyCostsCents, desiredIncomeCents, hoursPerWeek int) (*HourlyRateResult, error) {
	if monthlyCostsCents < 0 || desiredIncomeCents <= 0 || hoursPerWeek <= 0 || hoursPerWeek > 100 {
		return nil, ErrInvalidInput
	}
	// среднее число рабочих недель в месяце
	monthlyHours := float64(hoursPerWeek) * 52.0 / 12.0
	rate := math.Ceil(float64(monthlyCostsCents+desiredIncomeCents) / monthlyHours)
	return &HourlyRateResult{
		HourlyRateCents: int(rate),
		MonthlyHours:    int(math.Round(monthlyHours)),
	}, nil
}

// ProfitMarginResult результат расчёта маржи процедуры.
type ProfitMarginResult struct {
	ProfitCents   int     `json:"profit_cents"`
	MarginPercent float64 `json:"margin_percent"`
	TimeCostCents int     `json:"time_cost_cents"`
}

// ProfitMargin считает прибыль и маржу процедуры с учётом себестоимости
// материалов и стоимости времени мастера.
func ProfitMargin(priceCents, productCostCents, durationMinutes, hourlyRateCents int) (*ProfitMarginResult, error) {
	if priceCents <= 0 || productCostCents < 0 || durationMinutes <= 0 || hourlyRateCents < 0 {
		return nil, ErrInvalidInput
	}
	timeCost := int(math.Ceil(float64(hourlyRateCents) * float64(durationMinutes) / 60.0))
	profit := priceCents - productCostCents - timeCost
	margin := float64(profit) / float64(priceCents) * 100.0
	return &ProfitMarginResult{
		ProfitCents:   profit,
		MarginPercent: math.Round(margin*100) / 100,
		TimeCostCents: timeCost,
	}, nil
}

// RevenueProjectionResult результат прогноза выручки.
type RevenueProjectionResult struct {
	WeeklyCents  int `json:"weekly_cents"`
	MonthlyCents int `json:"monthly_cents"`
	AnnualCents  int `json:"annual_cents"`
}

// RevenueProjection строит прогноз выручки по средней цене процедуры
// и числу клиентов в неделю.
func RevenueProjection(averagePriceCents, clientsPerWeek, weeksPerYear int) (*RevenueProjectionResult, error) {
	if averagePriceCents <= 0 || clientsPerWeek <= 0 || weeksPerYear <= 0 || weeksPerYear > 52 {
		return nil, ErrInvalidInput
	}
	weekly := averagePriceCents * clientsPerWeek
	annual := weekly * weeksPerYear
	return &RevenueProjectionResult{
		WeeklyCents:  weekly,
		MonthlyCents: annual / 12,
		AnnualCents:  annual,
	}, nil
}

// StockRepository доступ к сумме закупок за период.
type StockRepository interface {
	SumStockPurchasesSince(ctx context.Context, userUID string, since time.Time) (int, error)
}

// StockBudgetResult результат расчёта бюджета на материалы.
type StockBudgetResult struct {
	BudgetCents    int  `json:"budget_cents"`
	SpentCents     int  `json:"spent_cents"`
	RemainingCents int  `json:"remaining_cents"`
	OverBudget     bool `json:"over_budget"`
}

// StockBudgetService считает месячный бюджет на материалы как процент от
// выручки и сравнивает его с фактическими закупками за текущий месяц.
type StockBudgetService struct {
	repo StockRepository
}

// NewStockBudgetService создает новый экземпляр StockBudgetService.
func NewStockBudgetService(repo StockRepository) *StockBudgetService {
	return &StockBudgetService{repo: repo}
}

// StockBudget возвращает бюджет, потраченное и остаток за месяц, в котором
// находится now.
func (s *StockBudgetService) StockBudget(ctx context.Context, userUID string,
	monthlyRevenueCents, budgetPercent int, now time.Time) (*StockBudgetResult, error) {
	const op = "calculator.StockBudget"
	if monthlyRevenueCents <= 0 || budgetPercent <= 0 || budgetPercent > 100 {
		return nil, ErrInvalidInput
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	spent, err := s.repo.SumStockPurchasesSince(ctx, userUID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	budget := monthlyRevenueCents * budgetPercent / 100
	return &StockBudgetResult{
		BudgetCents:    budget,
		SpentCents:     spent,
		RemainingCents: budget - spent,
		OverBudget:     spent > budget,
	}, nil
}
