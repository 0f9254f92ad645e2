package reservation

import "time"

// Leg describes one endpoint of a booked flight.
type Leg struct {
	CityName    string `json:"cityName"`
	AirportCode string `json:"airportCode"`
	Timestamp   string `json:"timestamp"`
	Gate        string `json:"gate,omitempty"`
	Terminal    string `json:"terminal,omitempty"`
}

// Details is the free-form booking payload captured when the reservation is
// created. It is stored as a single document and never updated afterwards.
type Details struct {
	FlightNumber    string   `json:"flightNumber"`
	Departure       Leg      `json:"departure"`
	Arrival         Leg      `json:"arrival"`
	PassengerName   string   `json:"passengerName"`
	Seats           []string `json:"seats"`
	TotalPriceInUSD float64  `json:"totalPriceInUSD"`
}

// Reservation is a booking owned by a user. HasCompletedPayment is the only
// mutable field and it flips from false to true at most once.
type Reservation struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	Details             Details   `json:"details"`
	HasCompletedPayment bool      `json:"hasCompletedPayment"`
	CreatedAt           time.Time `json:"createdAt"`
}
