package domain

import "errors"

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrEditConflict       = errors.New("edit conflict")
	ErrInvalidCategory    = errors.New("invalid ticket category")
	ErrTicketNotFound     = errors.New("ticket not found in cart")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrSeatOutOfRange     = errors.New("seat is outside the seat grid")
	ErrSeatUnavailable    = errors.New("seat is not available")
	ErrEmptySelection     = errors.New("no seats selected")
	ErrInvalidSeatGrid    = errors.New("seat grid must be a non-empty rectangular matrix")
	ErrShowTimeNotFound   = errors.New("showtime not found for movie")
	ErrPromotionInvalid   = errors.New("invalid or unavailable promotion code")
	ErrPromotionSent      = errors.New("promotion has already been sent")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress for this cart")
	ErrInvalidBookingID   = errors.New("invalid booking id received from backend")
	ErrDuplicateAttempt   = errors.New("checkout attempt already recorded")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrTokenExpired       = errors.New("authentication token has expired")
)
