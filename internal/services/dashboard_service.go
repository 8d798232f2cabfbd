package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// monthlyWindow is how far back the monthly series reaches, regardless of
// the requested date range.
const monthlyWindow = 6

// dashboardService computes read-only aggregates. Independent queries run
// concurrently; each applies the same date range.
type dashboardService struct {
	db       *gorm.DB
	settings SettingsServicer
	now      func() time.Time
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB, settings SettingsServicer) DashboardServicer {
	return &dashboardService{db: db, settings: settings, now: time.Now}
}

type kindTotal struct {
	Kind  models.TransactionKind
	Total decimal.Decimal
}

type categoryRow struct {
	ExpenseCategory models.ExpenseCategory
	Total           decimal.Decimal
}

type monthlyRow struct {
	Date   time.Time
	Kind   models.TransactionKind
	Amount decimal.Decimal
}

// Summary implements DashboardServicer.
func (s *dashboardService) Summary(ctx context.Context, r DateRange) (*Summary, error) {
	var (
		settings   *models.Settings
		totals     []kindTotal
		categories []categoryRow
		monthly    []monthlyRow
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		settings, err = s.settings.GetOrCreate(gctx)
		return err
	})

	g.Go(func() error {
		return s.scoped(gctx, r).
			Select("kind, COALESCE(SUM(amount), 0) AS total").
			Group("kind").
			Scan(&totals).Error
	})

	g.Go(func() error {
		return s.scoped(gctx, r).
			Select("expense_category, COALESCE(SUM(amount), 0) AS total").
			Where("kind = ?", models.TransactionKindExpense).
			Group("expense_category").
			Order("total DESC").
			Order("expense_category ASC").
			Scan(&categories).Error
	})

	g.Go(func() error {
		since := s.now().UTC().AddDate(0, -monthlyWindow, 0)
		return s.db.WithContext(gctx).Model(&models.Transaction{}).
			Select("date, kind, amount").
			Where("date >= ?", since).
			Scan(&monthly).Error
	})

	if err := g.Wait(); err != nil {
		return nil, wrapInternal(err)
	}

	summary := &Summary{
		StartingBalance:    settings.StartingBalance,
		TotalIncome:        decimal.Zero,
		TotalExpense:       decimal.Zero,
		ExpensesByCategory: make([]CategoryTotal, 0, len(categories)),
		MonthlyTotals:      bucketByMonth(monthly),
	}
	for _, t := range totals {
		switch t.Kind {
		case models.TransactionKindIncome:
			summary.TotalIncome = t.Total.Round(2)
		case models.TransactionKindExpense:
			summary.TotalExpense = t.Total.Round(2)
		}
	}
	for _, c := range categories {
		summary.ExpensesByCategory = append(summary.ExpensesByCategory, CategoryTotal{
			Category: c.ExpenseCategory,
			Total:    c.Total.Round(2),
		})
	}
	summary.Balance = summary.StartingBalance.Add(summary.TotalIncome).Sub(summary.TotalExpense)

	return summary, nil
}

// bucketByMonth sums rows per (UTC year, month, kind) in chronological order.
func bucketByMonth(rows []monthlyRow) []MonthlyTotal {
	type bucket struct {
		year  int
		month int
		kind  models.TransactionKind
	}
	sums := make(map[bucket]decimal.Decimal)
	for _, row := range rows {
		d := row.Date.UTC()
		b := bucket{year: d.Year(), month: int(d.Month()), kind: row.Kind}
		sums[b] = sums[b].Add(row.Amount)
	}

	out := make([]MonthlyTotal, 0, len(sums))
	for b, total := range sums {
		out = append(out, MonthlyTotal{Year: b.year, Month: b.month, Kind: b.kind, Total: total.Round(2)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

type kindStats struct {
	Kind    models.TransactionKind
	Count   int64
	Average decimal.NullDecimal
}

// Statistics implements DashboardServicer. Among equal maximum amounts the
// earliest transaction wins, then the smallest id.
func (s *dashboardService) Statistics(ctx context.Context, r DateRange) (*Statistics, error) {
	var (
		stats          []kindStats
		largestIncome  *models.Transaction
		largestExpense *models.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.scoped(gctx, r).
			Select("kind, COUNT(*) AS count, AVG(amount) AS average").
			Group("kind").
			Scan(&stats).Error
	})

	g.Go(func() error {
		var err error
		largestIncome, err = s.largest(gctx, r, models.TransactionKindIncome)
		return err
	})

	g.Go(func() error {
		var err error
		largestExpense, err = s.largest(gctx, r, models.TransactionKindExpense)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, wrapInternal(err)
	}

	result := &Statistics{
		AverageIncome:  decimal.Zero,
		AverageExpense: decimal.Zero,
		LargestIncome:  largestIncome,
		LargestExpense: largestExpense,
	}
	for _, st := range stats {
		avg := decimal.Zero
		if st.Average.Valid {
			avg = st.Average.Decimal.Round(2)
		}
		switch st.Kind {
		case models.TransactionKindIncome:
			result.IncomeCount = st.Count
			result.AverageIncome = avg
		case models.TransactionKindExpense:
			result.ExpenseCount = st.Count
			result.AverageExpense = avg
		}
		result.TotalTransactions += st.Count
	}

	return result, nil
}

func (s *dashboardService) largest(ctx context.Context, r DateRange, kind models.TransactionKind) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.scoped(ctx, r).
		Preload("Author").
		Where("kind = ?", kind).
		Order("amount DESC").
		Order("date ASC").
		Order("id ASC").
		Limit(1).
		Find(&transaction).Error
	if err != nil {
		return nil, err
	}
	if transaction.ID == "" {
		return nil, nil
	}
	return &transaction, nil
}

func (s *dashboardService) scoped(ctx context.Context, r DateRange) *gorm.DB {
	return applyDateRange(s.db.WithContext(ctx).Model(&models.Transaction{}), r)
}

func wrapInternal(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
