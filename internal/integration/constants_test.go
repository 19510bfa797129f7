package integration_test

const (
	// Movie related constants
	TestMovieId    = "7"
	TestMovieTitle = "Arrival"

	// Showtime with a seat grid from the backend
	TestShowTimeId   = "31"
	TestShowDate     = "2025-06-01"
	TestShowTime     = "7:30 PM"
	TestShowBase     = "12.50"
	TestScreenNumber = 2

	// Showtime the backend sends without seats
	TestBareShowTimeId = "32"

	// Auth related constants
	TestCustomerId   = 5
	TestServiceToken = "service-token"

	// Promotion related constants
	TestPromotionCode     = "SPRING10"
	TestPromotionDiscount = "10"
)
