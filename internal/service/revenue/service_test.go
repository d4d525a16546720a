package revenue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshop/internal/domain"
	"bookshop/internal/migrate"
	orderrepo "bookshop/internal/repository/order"
)

var fixedNow = time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	svc  *Service
	repo orderrepo.SQL
}

func newFixture(t *testing.T, loc *time.Location) fixture {
	t.Helper()
	repo := orderrepo.NewSQL(migrate.OpenTestDB(t), nil)
	svc := New(repo, loc, nil)
	svc.now = func() time.Time { return fixedNow }
	return fixture{svc: svc, repo: repo}
}

// place stores an order whose total is exactly total and whose single item
// carries the given product, quantity and unit price.
func (f fixture) place(t *testing.T, at time.Time, total string, items ...domain.OrderItem) int64 {
	t.Helper()
	if len(items) == 0 {
		items = []domain.OrderItem{{ProductID: 1, ProductTitle: "Filler", Quantity: 1, Price: dec(total)}}
	}
	id, err := f.repo.Create(context.Background(), domain.Order{
		UserID:          1,
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		CustomerAddress: "x",
		Subtotal:        dec(total),
		Tax:             decimal.Zero,
		TotalAmount:     dec(total),
		OrderDate:       at,
		Items:           items,
	})
	require.NoError(t, err)
	return id
}

func TestTotalsAndCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC)

	total, err := f.svc.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	f.place(t, fixedNow, "10.00")
	f.place(t, fixedNow.AddDate(0, -1, 0), "5.25")

	total, err = f.svc.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "15.25", total.StringFixed(2))

	n, err := f.svc.OrderCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRevenueInRange_HalfOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	f.place(t, start, "1.00")
	f.place(t, end.Add(-time.Millisecond), "2.00")
	f.place(t, end, "4.00")

	got, err := f.svc.RevenueInRange(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, "3.00", got.StringFixed(2))

	next, err := f.svc.RevenueInRange(ctx, end, end.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "4.00", next.StringFixed(2))

	empty, err := f.svc.RevenueInRange(ctx, start, start)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = f.svc.RevenueInRange(ctx, end, start)
	assert.True(t, domain.IsValidation(err))
}

func TestCalendarWrappers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC)

	f.place(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "1.00")
	f.place(t, time.Date(2024, 3, 14, 23, 59, 59, 0, time.UTC), "2.00")
	f.place(t, time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), "4.00")
	f.place(t, time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), "8.00")

	today, err := f.svc.TodayRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.00", today.StringFixed(2))

	march, err := f.svc.MonthRevenue(ctx, 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, "3.00", march.StringFixed(2))

	year, err := f.svc.YearRevenue(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, "7.00", year.StringFixed(2))

	_, err = f.svc.MonthRevenue(ctx, 2024, 13)
	assert.True(t, domain.IsValidation(err))
}

func TestCalendarWrappers_ReportingZone(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("UTC+10", 10*60*60)
	f := newFixture(t, loc)

	// fixedNow is already 2024-03-16 00:00 in UTC+10.
	f.place(t, time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC), "6.00")
	f.place(t, time.Date(2024, 3, 15, 13, 59, 0, 0, time.UTC), "1.00")

	today, err := f.svc.TodayRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "6.00", today.StringFixed(2))

	days, err := f.svc.RevenueByDay(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", days[0].Date.Format(time.DateOnly))
	assert.Equal(t, "1.00", days[0].Revenue.StringFixed(2))
}

func TestRevenueByDay_ZeroFilledOldestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC)

	f.place(t, time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC), "2.00")
	f.place(t, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), "3.00")
	f.place(t, time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC), "1.50")
	f.place(t, time.Date(2024, 3, 8, 23, 0, 0, 0, time.UTC), "99.00")

	days, err := f.svc.RevenueByDay(ctx, 7)
	require.NoError(t, err)
	require.Len(t, days, 7)

	assert.Equal(t, "2024-03-09", days[0].Date.Format(time.DateOnly))
	assert.Equal(t, "2024-03-15", days[6].Date.Format(time.DateOnly))
	assert.Equal(t, "5.00", days[6].Revenue.StringFixed(2))
	assert.Equal(t, 2, days[6].OrderCount)
	assert.Equal(t, "1.50", days[2].Revenue.StringFixed(2))
	for _, i := range []int{0, 1, 3, 4, 5} {
		assert.True(t, days[i].Revenue.IsZero(), "day %d", i)
		assert.Zero(t, days[i].OrderCount)
	}

	none, err := f.svc.RevenueByDay(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRevenueByDay_AlwaysNEntries(t *testing.T) {
	f := newFixture(t, time.UTC)
	for _, n := range []int{1, 7, 31, 400} {
		days, err := f.svc.RevenueByDay(context.Background(), n)
		require.NoError(t, err)
		assert.Len(t, days, n)
	}
}

func TestRevenueByMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC)

	f.place(t, time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC), "1.00")
	f.place(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2.00")
	f.place(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), "3.00")
	f.place(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "50.00")

	months, err := f.svc.RevenueByMonth(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, months, 12)
	assert.Equal(t, 1, months[0].Month)
	assert.Equal(t, 12, months[11].Month)
	assert.Equal(t, "1.00", months[0].Revenue.StringFixed(2))
	assert.Equal(t, "5.00", months[2].Revenue.StringFixed(2))
	assert.Equal(t, 2, months[2].OrderCount)
	assert.True(t, months[1].Revenue.IsZero())
	assert.True(t, months[11].Revenue.IsZero())
}

func TestTopSellingProducts_RevenueTieBreak(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC)

	f.place(t, fixedNow, "250.00",
		domain.OrderItem{ProductID: 1, ProductTitle: "X", Quantity: 10, Price: dec("10.00")},
		domain.OrderItem{ProductID: 2, ProductTitle: "Y", Quantity: 10, Price: dec("15.00")},
	)

	top, err := f.svc.TopSellingProducts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Y", top[0].ProductTitle)
	assert.Equal(t, int64(10), top[0].UnitsSold)
	assert.Equal(t, "150.00", top[0].Revenue.StringFixed(2))

	none, err := f.svc.TopSellingProducts(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteOrderReducesTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC)

	f.place(t, fixedNow, "10.00")
	id := f.place(t, fixedNow, "27.50")

	before, err := f.svc.TotalRevenue(ctx)
	require.NoError(t, err)
	require.NoError(t, f.repo.Delete(ctx, id))
	after, err := f.svc.TotalRevenue(ctx)
	require.NoError(t, err)

	assert.Equal(t, "27.50", before.Sub(after).StringFixed(2))
	items, err := f.repo.ListItems(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC)

	f.place(t, fixedNow, "10.00")
	f.place(t, fixedNow.AddDate(0, -2, 0), "5.00")

	sum, err := f.svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "15.00", sum.TotalRevenue.StringFixed(2))
	assert.Equal(t, "10.00", sum.TodayRevenue.StringFixed(2))
	assert.Equal(t, "10.00", sum.MonthRevenue.StringFixed(2))
	assert.Equal(t, "15.00", sum.YearRevenue.StringFixed(2))
	assert.Equal(t, 2, sum.OrderCount)
	assert.Len(t, sum.Daily, 7)
	assert.Len(t, sum.Monthly, 12)
	assert.Len(t, sum.TopProducts, 1)
}

type brokenAggregates struct {
	orderrepo.Aggregates
}

func (brokenAggregates) SumTotals(context.Context, orderrepo.Period) (int64, int, error) {
	return 0, 0, &domain.PersistenceError{Op: "sum order totals", Err: errors.New("database is locked")}
}

func (brokenAggregates) Entries(context.Context, orderrepo.Period) ([]orderrepo.Entry, error) {
	return nil, nil
}

func (brokenAggregates) TopProducts(context.Context, int) ([]domain.ProductSales, error) {
	return []domain.ProductSales{}, nil
}

func TestSummary_AllOrNothing(t *testing.T) {
	svc := New(brokenAggregates{}, time.UTC, nil)

	sum, err := svc.Summary(context.Background())
	assert.Nil(t, sum)
	var pe *domain.PersistenceError
	assert.ErrorAs(t, err, &pe)
}
