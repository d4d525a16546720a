package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookshop/internal/domain"
	"bookshop/internal/money"
	authsvc "bookshop/internal/service/auth"
	cartsvc "bookshop/internal/service/cart"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message, RequestID: c.GetString(requestIDCtxKey)})
}

// writeError maps domain errors onto HTTP statuses and returns the status
// it wrote.
func writeError(c *gin.Context, err error) int {
	resp := ErrorResponse{Message: err.Error(), RequestID: c.GetString(requestIDCtxKey)}
	status := http.StatusInternalServerError

	var ve domain.ValidationError
	switch {
	case errors.As(err, &ve):
		status, resp.Error, resp.Field = http.StatusBadRequest, "invalid_input", ve.Field
	case errors.Is(err, domain.ErrNotFound):
		status, resp.Error = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrEmptyCart):
		status, resp.Error = http.StatusBadRequest, "empty_cart"
	case errors.Is(err, domain.ErrInvalidQuantity):
		status, resp.Error = http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, domain.ErrAlreadyExists):
		status, resp.Error = http.StatusConflict, "already_exists"
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, authsvc.ErrInvalidCredentials),
		errors.Is(err, authsvc.ErrInvalidToken):
		status, resp.Error = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		status, resp.Error = http.StatusForbidden, "forbidden"
	default:
		resp.Error, resp.Message = "internal_error", "internal server error"
	}
	c.JSON(status, resp)
	return status
}

// fail writes err and logs it when it is not a domain error.
func (h *handlers) fail(c *gin.Context, err error) {
	if writeError(c, err) == http.StatusInternalServerError {
		h.logger.Printf("api: request_id=%s route=%s error=%v", c.GetString(requestIDCtxKey), c.FullPath(), err)
	}
}

type productResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Price           string    `json:"price"`
	Category        string    `json:"category"`
	ISBN            string    `json:"isbn,omitempty"`
	Description     string    `json:"description,omitempty"`
	Stock           int       `json:"stock"`
	Image           string    `json:"image,omitempty"`
	Rating          float64   `json:"rating"`
	Pages           int       `json:"pages,omitempty"`
	Language        string    `json:"language,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	PublicationDate string    `json:"publicationDate,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Title:           p.Title,
		Author:          p.Author,
		Price:           money.Display(p.Price),
		Category:        p.Category,
		ISBN:            p.ISBN,
		Description:     p.Description,
		Stock:           p.Stock,
		Image:           p.Image,
		Rating:          p.Rating,
		Pages:           p.Pages,
		Language:        p.Language,
		Publisher:       p.Publisher,
		PublicationDate: p.PublicationDate,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type cartLineResponse struct {
	ProductID int64  `json:"productId"`
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	LineTotal string `json:"lineTotal"`
}

type cartResponse struct {
	Lines     []cartLineResponse `json:"lines"`
	LineCount int                `json:"lineCount"`
	UnitCount int                `json:"unitCount"`
	Subtotal  string             `json:"subtotal"`
	Tax       string             `json:"tax"`
	Total     string             `json:"total"`
}

func toCartResponse(c *cartsvc.Cart) cartResponse {
	lines := c.Lines()
	out := cartResponse{
		Lines:     make([]cartLineResponse, 0, len(lines)),
		LineCount: c.LineCount(),
		UnitCount: c.UnitCount(),
		Subtotal:  money.Display(c.Subtotal()),
		Tax:       money.Display(c.Tax(c.Rate())),
		Total:     money.Display(c.Total()),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, cartLineResponse{
			ProductID: l.ProductID,
			Title:     l.Title,
			Author:    l.Author,
			Image:     l.Image,
			Quantity:  l.Quantity,
			Price:     money.Display(l.Price),
			LineTotal: money.Display(l.LineTotal()),
		})
	}
	return out
}

type orderItemResponse struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"productId"`
	ProductTitle string `json:"productTitle"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
}

type orderResponse struct {
	ID              int64               `json:"id"`
	UserID          int64               `json:"userId"`
	CustomerName    string              `json:"customerName"`
	CustomerEmail   string              `json:"customerEmail"`
	CustomerAddress string              `json:"customerAddress"`
	Subtotal        string              `json:"subtotal"`
	Tax             string              `json:"tax"`
	TotalAmount     string              `json:"totalAmount"`
	OrderDate       time.Time           `json:"orderDate"`
	Status          domain.OrderStatus  `json:"status"`
	Items           []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(o domain.Order) orderResponse {
	out := orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerAddress: o.CustomerAddress,
		Subtotal:        money.Display(o.Subtotal),
		Tax:             money.Display(o.Tax),
		TotalAmount:     money.Display(o.TotalAmount),
		OrderDate:       o.OrderDate,
		Status:          o.Status,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, orderItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ProductTitle: it.ProductTitle,
			Quantity:     it.Quantity,
			Price:        money.Display(it.Price),
		})
	}
	return out
}

type dailyRevenueResponse struct {
	Date       string `json:"date"`
	Revenue    string `json:"revenue"`
	OrderCount int    `json:"orderCount"`
}

type monthlyRevenueResponse struct {
	Month      int    `json:"month"`
	Revenue    string `json:"revenue"`
	OrderCount int    `json:"orderCount"`
}

type productSalesResponse struct {
	ProductID    int64  `json:"productId"`
	ProductTitle string `json:"productTitle"`
	UnitsSold    int64  `json:"unitsSold"`
	Revenue      string `json:"revenue"`
}

type summaryResponse struct {
	TotalRevenue string                   `json:"totalRevenue"`
	TodayRevenue string                   `json:"todayRevenue"`
	MonthRevenue string                   `json:"monthRevenue"`
	YearRevenue  string                   `json:"yearRevenue"`
	OrderCount   int                      `json:"orderCount"`
	Daily        []dailyRevenueResponse   `json:"daily"`
	Monthly      []monthlyRevenueResponse `json:"monthly"`
	TopProducts  []productSalesResponse   `json:"topProducts"`
}

func toDailyResponse(days []domain.DailyRevenue) []dailyRevenueResponse {
	out := make([]dailyRevenueResponse, 0, len(days))
	for _, d := range days {
		out = append(out, dailyRevenueResponse{Date: d.Date.Format(time.DateOnly), Revenue: money.Display(d.Revenue), OrderCount: d.OrderCount})
	}
	return out
}

func toMonthlyResponse(months []domain.MonthlyRevenue) []monthlyRevenueResponse {
	out := make([]monthlyRevenueResponse, 0, len(months))
	for _, m := range months {
		out = append(out, monthlyRevenueResponse{Month: m.Month, Revenue: money.Display(m.Revenue), OrderCount: m.OrderCount})
	}
	return out
}

func toSalesResponse(sales []domain.ProductSales) []productSalesResponse {
	out := make([]productSalesResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, productSalesResponse{ProductID: s.ProductID, ProductTitle: s.ProductTitle, UnitsSold: s.UnitsSold, Revenue: money.Display(s.Revenue)})
	}
	return out
}

func toSummaryResponse(s domain.RevenueSummary) summaryResponse {
	return summaryResponse{
		TotalRevenue: money.Display(s.TotalRevenue),
		TodayRevenue: money.Display(s.TodayRevenue),
		MonthRevenue: money.Display(s.MonthRevenue),
		YearRevenue:  money.Display(s.YearRevenue),
		OrderCount:   s.OrderCount,
		Daily:        toDailyResponse(s.Daily),
		Monthly:      toMonthlyResponse(s.Monthly),
		TopProducts:  toSalesResponse(s.TopProducts),
	}
}
