// Package api holds the JSON request and response shapes of the storefront HTTP API.
package api

import (
	"time"

	"github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type SessionRequest struct {
	Token string `json:"token" validate:"required,jwt"`
}

type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

type CategoryPrices struct {
	Adult  decimal.Decimal `json:"adult"`
	Child  decimal.Decimal `json:"child"`
	Senior decimal.Decimal `json:"senior"`
}

type ShowTime struct {
	Id             string          `json:"id"`
	MovieId        string          `json:"movieId"`
	Date           types.Date      `json:"date"`
	Time           string          `json:"time"`
	DisplayTime    string          `json:"displayTime"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	Prices         CategoryPrices  `json:"prices"`
	ScreenNumber   int             `json:"screenNumber"`
	AvailableSeats int             `json:"availableSeats"`
}

type ShowTimeListResponse struct {
	ShowTimes []ShowTime `json:"showTimes"`
}

type MovieResponse struct {
	Id                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	ImageUrl           string     `json:"imageUrl"`
	Rating             string     `json:"rating"`
	IsCurrentlyRunning bool       `json:"isCurrentlyRunning"`
	ShowTimes          []ShowTime `json:"showTimes"`
}

type Seat struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

type SeatGridResponse struct {
	ShowTimeId  string   `json:"showTimeId"`
	Rows        int      `json:"rows"`
	Cols        int      `json:"cols"`
	Placeholder bool     `json:"placeholder"`
	Seats       [][]Seat `json:"seats"`
}

type SelectedSeat struct {
	Row      *int   `json:"row" validate:"required,min=0"`
	Col      *int   `json:"col" validate:"required,min=0"`
	Category string `json:"category" validate:"required,ticket_category"`
}

type SelectionRequest struct {
	Seats []SelectedSeat `json:"seats" validate:"required,min=1,max=50,dive"`
}

type CartTicket struct {
	Id         string          `json:"id"`
	MovieId    string          `json:"movieId"`
	MovieTitle string          `json:"movieTitle"`
	ShowId     string          `json:"showId"`
	ShowDate   string          `json:"showDate"`
	ShowTime   string          `json:"showTime"`
	SeatLabel  string          `json:"seatLabel"`
	Category   string          `json:"category"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Price      decimal.Decimal `json:"price"`
}

type CartGroup struct {
	MovieTitle  string          `json:"movieTitle"`
	ShowDate    string          `json:"showDate"`
	ShowTime    string          `json:"showTime"`
	DisplayTime string          `json:"displayTime"`
	TicketIds   []string        `json:"ticketIds"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type AppliedPromotion struct {
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
}

type Cart struct {
	Tickets   []CartTicket      `json:"tickets"`
	Groups    []CartGroup       `json:"groups"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Discount  decimal.Decimal   `json:"discount"`
	Total     decimal.Decimal   `json:"total"`
	Promotion *AppliedPromotion `json:"promotion,omitempty"`
}

type CartResponse struct {
	Cart Cart `json:"cart"`
}

type QuantityRequest struct {
	Delta int `json:"delta" validate:"ne=0,min=-100,max=100"`
}

type CategoryRequest struct {
	Category string `json:"category" validate:"required,ticket_category"`
}

type PromotionRequest struct {
	Code string `json:"code" validate:"required,promo_code"`
}

type PromotionValidationResponse struct {
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
}

type CheckoutRequest struct {
	CustomerId int `json:"customerId" validate:"required,min=1"`
}

type CheckoutResponse struct {
	Success   bool   `json:"success"`
	BookingId int    `json:"bookingId,omitempty"`
	Tickets   int    `json:"tickets,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type GetPromotionsParams struct {
	Page     *int    `validate:"omitempty,min=1"`
	PageSize *int    `validate:"omitempty,min=1,max=100"`
	Sort     *string `validate:"omitempty,promotion_sort"`
	Term     *string `validate:"omitempty,max=50"`
}

type Promotion struct {
	Id                 int             `json:"id"`
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Description        string          `json:"description"`
	CreationDate       *time.Time      `json:"creationDate,omitempty"`
	Sent               bool            `json:"sent"`
}

type PromotionListResponse struct {
	Promotions []Promotion `json:"promotions"`
	Metadata   *Metadata   `json:"metadata"`
}

type CreatePromotionRequest struct {
	Code               string          `json:"code" validate:"required,promo_code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage" validate:"min=1,max=100"`
	Description        string          `json:"description" validate:"required,max=500"`
}

type PromotionResponse struct {
	Promotion Promotion `json:"promotion"`
}
