package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyRevenue is one calendar day of the revenue series.
type DailyRevenue struct {
	Date       time.Time       `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"orderCount"`
}

// MonthlyRevenue is one calendar month of a year.
type MonthlyRevenue struct {
	Month      int             `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"orderCount"`
}

// ProductSales ranks a product by units sold across all order items.
type ProductSales struct {
	ProductID    int64           `json:"productId"`
	ProductTitle string          `json:"productTitle"`
	UnitsSold    int64           `json:"unitsSold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// RevenueSummary is the admin dashboard view of the ledger.
type RevenueSummary struct {
	TotalRevenue decimal.Decimal  `json:"totalRevenue"`
	TodayRevenue decimal.Decimal  `json:"todayRevenue"`
	MonthRevenue decimal.Decimal  `json:"monthRevenue"`
	YearRevenue  decimal.Decimal  `json:"yearRevenue"`
	OrderCount   int              `json:"orderCount"`
	Daily        []DailyRevenue   `json:"daily"`
	Monthly      []MonthlyRevenue `json:"monthly"`
	TopProducts  []ProductSales   `json:"topProducts"`
}
