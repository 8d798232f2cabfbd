package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// --- mock dashboard service ---

type mockDashboardService struct {
	summaryFn    func(ctx context.Context, r services.DateRange) (*services.Summary, error)
	statisticsFn func(ctx context.Context, r services.DateRange) (*services.Statistics, error)
}

func (m *mockDashboardService) Summary(ctx context.Context, r services.DateRange) (*services.Summary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(ctx, r)
	}
	return &services.Summary{ExpensesByCategory: []services.CategoryTotal{}, MonthlyTotals: []services.MonthlyTotal{}}, nil
}

func (m *mockDashboardService) Statistics(ctx context.Context, r services.DateRange) (*services.Statistics, error) {
	if m.statisticsFn != nil {
		return m.statisticsFn(ctx, r)
	}
	return &services.Statistics{}, nil
}

var _ services.DashboardServicer = (*mockDashboardService)(nil)

func setupDashboardRouter(handler *DashboardHandler) *gin.Engine {
	r := gin.New()
	r.GET("/dashboard/summary", handler.Summary)
	r.GET("/dashboard/statistics", handler.Statistics)
	return r
}

func TestDashboardHandler_Summary(t *testing.T) {
	t.Run("returns summary", func(t *testing.T) {
		svc := &mockDashboardService{
			summaryFn: func(_ context.Context, _ services.DateRange) (*services.Summary, error) {
				return &services.Summary{
					StartingBalance: decimal.NewFromInt(100),
					TotalIncome:     decimal.NewFromInt(50),
					TotalExpense:    decimal.NewFromInt(30),
					Balance:         decimal.NewFromInt(120),
					ExpensesByCategory: []services.CategoryTotal{
						{Category: models.ExpenseCategoryFood, Total: decimal.NewFromInt(30)},
					},
					MonthlyTotals: []services.MonthlyTotal{},
				}, nil
			},
		}
		r := setupDashboardRouter(NewDashboardHandler(svc))

		rec := doRequest(r, http.MethodGet, "/dashboard/summary", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		data := dataObject(t, parseJSON(t, rec))
		if data["balance"].(float64) != 120 {
			t.Errorf("expected balance 120, got %v", data["balance"])
		}
		categories := data["expensesByCategory"].([]interface{})
		if len(categories) != 1 || categories[0].(map[string]interface{})["category"] != "food" {
			t.Errorf("unexpected categories %v", categories)
		}
	})

	t.Run("forwards date range", func(t *testing.T) {
		var got services.DateRange
		svc := &mockDashboardService{
			summaryFn: func(_ context.Context, r services.DateRange) (*services.Summary, error) {
				got = r
				return &services.Summary{}, nil
			},
		}
		r := setupDashboardRouter(NewDashboardHandler(svc))

		rec := doRequest(r, http.MethodGet, "/dashboard/summary?from=2024-01-01T00:00:00Z", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.From == nil || !got.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || got.To != nil {
			t.Errorf("unexpected range %+v", got)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		r := setupDashboardRouter(NewDashboardHandler(&mockDashboardService{}))

		rec := doRequest(r, http.MethodGet, "/dashboard/summary?to=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "VALIDATION_ERROR")
	})

	t.Run("returns 500 on service failure", func(t *testing.T) {
		svc := &mockDashboardService{
			summaryFn: func(_ context.Context, _ services.DateRange) (*services.Summary, error) {
				return nil, apperrors.ErrInternalServer
			},
		}
		r := setupDashboardRouter(NewDashboardHandler(svc))

		rec := doRequest(r, http.MethodGet, "/dashboard/summary", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestDashboardHandler_Statistics(t *testing.T) {
	svc := &mockDashboardService{
		statisticsFn: func(_ context.Context, _ services.DateRange) (*services.Statistics, error) {
			return &services.Statistics{
				TotalTransactions: 3,
				IncomeCount:       1,
				ExpenseCount:      2,
				AverageIncome:     decimal.NewFromInt(10),
				AverageExpense:    decimal.RequireFromString("2.5"),
				LargestIncome:     newTestTransaction("tx-1"),
			}, nil
		},
	}
	r := setupDashboardRouter(NewDashboardHandler(svc))

	rec := doRequest(r, http.MethodGet, "/dashboard/statistics", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := dataObject(t, parseJSON(t, rec))
	if data["totalTransactions"].(float64) != 3 || data["averageExpense"].(float64) != 2.5 {
		t.Errorf("unexpected statistics %v", data)
	}
	if data["largestExpense"] != nil {
		t.Errorf("expected null largest expense, got %v", data["largestExpense"])
	}
}
