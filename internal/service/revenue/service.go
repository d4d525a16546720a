// Package revenue answers read-side questions about the order ledger.
// Every query goes to the store; nothing is cached between calls.
//
// Calendar boundaries (today, a month, a year, a day bucket) are computed in
// a single reporting location supplied at construction.
package revenue

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"bookshop/internal/domain"
	"bookshop/internal/money"
	orderrepo "bookshop/internal/repository/order"
)

const (
	summaryDays = 7
	summaryTop  = 5
)

type Service struct {
	repo   orderrepo.Aggregates
	loc    *time.Location
	now    func() time.Time
	logger *log.Logger
}

func New(repo orderrepo.Aggregates, loc *time.Location, logger *log.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// Location is the reporting time zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	cents, _, err := s.repo.SumTotals(ctx, orderrepo.Period{})
	if err != nil {
		return decimal.Zero, err
	}
	return money.FromCents(cents), nil
}

func (s *Service) OrderCount(ctx context.Context) (int, error) {
	_, n, err := s.repo.SumTotals(ctx, orderrepo.Period{})
	return n, err
}

// RevenueInRange sums order totals with start <= orderDate < end.
func (s *Service) RevenueInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	if end.Before(start) {
		return decimal.Zero, domain.ValidationError{Field: "end", Message: "must not be before start"}
	}
	if end.Equal(start) {
		return decimal.Zero, nil
	}
	cents, _, err := s.repo.SumTotals(ctx, orderrepo.Period{Start: &start, End: &end})
	if err != nil {
		return decimal.Zero, err
	}
	return money.FromCents(cents), nil
}

func (s *Service) TodayRevenue(ctx context.Context) (decimal.Decimal, error) {
	start := s.startOfDay(s.now())
	return s.RevenueInRange(ctx, start, start.AddDate(0, 0, 1))
}

func (s *Service) MonthRevenue(ctx context.Context, year int, month time.Month) (decimal.Decimal, error) {
	if month < time.January || month > time.December {
		return decimal.Zero, domain.ValidationError{Field: "month", Message: "must be between 1 and 12"}
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	return s.RevenueInRange(ctx, start, start.AddDate(0, 1, 0))
}

func (s *Service) YearRevenue(ctx context.Context, year int) (decimal.Decimal, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	return s.RevenueInRange(ctx, start, start.AddDate(1, 0, 0))
}

// RevenueByDay returns one entry per calendar day for the last n days
// ending today, oldest first. Days without orders are zero.
func (s *Service) RevenueByDay(ctx context.Context, n int) ([]domain.DailyRevenue, error) {
	if n < 0 {
		return nil, domain.ValidationError{Field: "days", Message: "must not be negative"}
	}
	days := make([]domain.DailyRevenue, n)
	if n == 0 {
		return days, nil
	}

	today := s.startOfDay(s.now())
	first := today.AddDate(0, 0, -(n - 1))
	end := today.AddDate(0, 0, 1)

	index := make(map[string]int, n)
	for i := range days {
		d := first.AddDate(0, 0, i)
		days[i] = domain.DailyRevenue{Date: d, Revenue: decimal.Zero}
		index[d.Format(time.DateOnly)] = i
	}

	entries, err := s.repo.Entries(ctx, orderrepo.Period{Start: &first, End: &end})
	if err != nil {
		return nil, err
	}
	cents := make([]int64, n)
	for _, e := range entries {
		i, ok := index[e.OrderDate.In(s.loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		cents[i] += e.TotalCents
		days[i].OrderCount++
	}
	for i := range days {
		days[i].Revenue = money.FromCents(cents[i])
	}
	return days, nil
}

// RevenueByMonth returns twelve entries for January through December.
func (s *Service) RevenueByMonth(ctx context.Context, year int) ([]domain.MonthlyRevenue, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	end := start.AddDate(1, 0, 0)

	entries, err := s.repo.Entries(ctx, orderrepo.Period{Start: &start, End: &end})
	if err != nil {
		return nil, err
	}

	var cents [12]int64
	months := make([]domain.MonthlyRevenue, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	for _, e := range entries {
		i := int(e.OrderDate.In(s.loc).Month()) - 1
		cents[i] += e.TotalCents
		months[i].OrderCount++
	}
	for i := range months {
		months[i].Revenue = money.FromCents(cents[i])
	}
	return months, nil
}

// TopSellingProducts ranks by units sold, then revenue, then product id.
func (s *Service) TopSellingProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	if limit <= 0 {
		return []domain.ProductSales{}, nil
	}
	return s.repo.TopProducts(ctx, limit)
}

// Summary computes the dashboard figures concurrently. Either every figure
// is returned or only the first error.
func (s *Service) Summary(ctx context.Context) (*domain.RevenueSummary, error) {
	now := s.now().In(s.loc)
	var out domain.RevenueSummary

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.TotalRevenue(ctx)
		out.TotalRevenue = v
		return err
	})
	g.Go(func() error {
		v, err := s.TodayRevenue(ctx)
		out.TodayRevenue = v
		return err
	})
	g.Go(func() error {
		v, err := s.MonthRevenue(ctx, now.Year(), now.Month())
		out.MonthRevenue = v
		return err
	})
	g.Go(func() error {
		v, err := s.YearRevenue(ctx, now.Year())
		out.YearRevenue = v
		return err
	})
	g.Go(func() error {
		v, err := s.OrderCount(ctx)
		out.OrderCount = v
		return err
	})
	g.Go(func() error {
		v, err := s.RevenueByDay(ctx, summaryDays)
		out.Daily = v
		return err
	})
	g.Go(func() error {
		v, err := s.RevenueByMonth(ctx, now.Year())
		out.Monthly = v
		return err
	})
	g.Go(func() error {
		v, err := s.TopSellingProducts(ctx, summaryTop)
		out.TopProducts = v
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Printf("revenue: summary error=%v", err)
		return nil, err
	}
	return &out, nil
}

func (s *Service) startOfDay(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}
