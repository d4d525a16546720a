package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bookshop/internal/domain"
	"bookshop/internal/money"
)

type revenueService interface {
	Summary(ctx context.Context) (*domain.RevenueSummary, error)
	RevenueByDay(ctx context.Context, n int) ([]domain.DailyRevenue, error)
	RevenueByMonth(ctx context.Context, year int) ([]domain.MonthlyRevenue, error)
	RevenueInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	TopSellingProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)
	Location() *time.Location
}

const (
	defaultDays = 7
	maxDays     = 366
	defaultTop  = 5
	maxTop      = 100
)

func (h *handlers) revenueSummary(c *gin.Context) {
	sum, err := h.deps.RevenueSvc.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(*sum))
}

func (h *handlers) revenueDaily(c *gin.Context) {
	days, ok := intQuery(c, "days", defaultDays, 1, maxDays)
	if !ok {
		return
	}
	series, err := h.deps.RevenueSvc.RevenueByDay(c.Request.Context(), days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": toDailyResponse(series)})
}

func (h *handlers) revenueMonthly(c *gin.Context) {
	now := time.Now().In(h.deps.RevenueSvc.Location())
	year, ok := intQuery(c, "year", now.Year(), 1970, 9999)
	if !ok {
		return
	}
	series, err := h.deps.RevenueSvc.RevenueByMonth(c.Request.Context(), year)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "months": toMonthlyResponse(series)})
}

// revenueRange accepts RFC 3339 timestamps or plain dates, which are read
// as midnight in the reporting zone.
func (h *handlers) revenueRange(c *gin.Context) {
	loc := h.deps.RevenueSvc.Location()
	start, err := parseInstant(c.Query("start"), loc)
	if err != nil {
		writeError(c, domain.ValidationError{Field: "start", Message: err.Error()})
		return
	}
	end, err := parseInstant(c.Query("end"), loc)
	if err != nil {
		writeError(c, domain.ValidationError{Field: "end", Message: err.Error()})
		return
	}
	total, err := h.deps.RevenueSvc.RevenueInRange(c.Request.Context(), start, end)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"start": start, "end": end, "revenue": money.Display(total)})
}

func (h *handlers) revenueTop(c *gin.Context) {
	limit, ok := intQuery(c, "limit", defaultTop, 1, maxTop)
	if !ok {
		return
	}
	top, err := h.deps.RevenueSvc.TopSellingProducts(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toSalesResponse(top)})
}

func intQuery(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		writeError(c, domain.ValidationError{Field: name, Message: "must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max)})
		return 0, false
	}
	return n, true
}

func parseInstant(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errMissing
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

var errMissing = errors.New("required")
