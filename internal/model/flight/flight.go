package flight

// Endpoint describes one side of a flight segment.
type Endpoint struct {
	CityName    string `json:"cityName"`
	AirportCode string `json:"airportCode"`
	AirportName string `json:"airportName,omitempty"`
	Timestamp   string `json:"timestamp"`
	Terminal    string `json:"terminal,omitempty"`
	Gate        string `json:"gate,omitempty"`
}

// Status is a point-in-time snapshot of a single flight.
type Status struct {
	FlightNumber         string   `json:"flightNumber"`
	Departure            Endpoint `json:"departure"`
	Arrival              Endpoint `json:"arrival"`
	TotalDistanceInMiles int      `json:"totalDistanceInMiles"`
}

// Offer is one result row of a flight search.
type Offer struct {
	ID            string   `json:"id"`
	Departure     Endpoint `json:"departure"`
	Arrival       Endpoint `json:"arrival"`
	Airlines      []string `json:"airlines"`
	PriceInUSD    float64  `json:"priceInUSD"`
	NumberOfStops int      `json:"numberOfStops"`
}

// Seat is one selectable seat of a cabin map.
type Seat struct {
	SeatNumber  string  `json:"seatNumber"`
	PriceInUSD  float64 `json:"priceInUSD"`
	IsAvailable bool    `json:"isAvailable"`
}
