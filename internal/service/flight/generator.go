package flight

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/mingxw/aerochat/backend/internal/model/flight"
)

type city struct {
	Name    string
	Code    string
	Airport string
}

var cities = []city{
	{"San Francisco", "SFO", "San Francisco International Airport"},
	{"Los Angeles", "LAX", "Los Angeles International Airport"},
	{"New York", "JFK", "John F. Kennedy International Airport"},
	{"Seattle", "SEA", "Seattle-Tacoma International Airport"},
	{"Chicago", "ORD", "O'Hare International Airport"},
	{"Denver", "DEN", "Denver International Airport"},
	{"Atlanta", "ATL", "Hartsfield-Jackson Atlanta International Airport"},
	{"Miami", "MIA", "Miami International Airport"},
	{"Boston", "BOS", "Boston Logan International Airport"},
	{"Austin", "AUS", "Austin-Bergstrom International Airport"},
	{"Las Vegas", "LAS", "Harry Reid International Airport"},
	{"Honolulu", "HNL", "Daniel K. Inouye International Airport"},
}

type airline struct {
	Name string
	Code string
}

var airlines = []airline{
	{"United Airlines", "UA"},
	{"Delta Air Lines", "DL"},
	{"American Airlines", "AA"},
	{"Alaska Airlines", "AS"},
	{"JetBlue Airways", "B6"},
	{"Southwest Airlines", "WN"},
}

const seatLetters = "ABCDEF"

// Generator produces sample flight data. Outputs are derived from a hash of
// the inputs, so repeated calls with the same arguments return identical
// results and a conversation stays coherent across tool calls.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a generator backed by the wall clock.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// SearchFlights returns a handful of candidate flights between two places.
func (g *Generator) SearchFlights(origin, destination string) []flight.Offer {
	rng := seededRand("search", origin, destination)

	from := resolveCity(origin)
	to := resolveCity(destination)
	day := g.now().AddDate(0, 0, 1)

	offers := make([]flight.Offer, 0, 4)
	for i := 0; i < 4; i++ {
		carrier := airlines[rng.Intn(len(airlines))]
		departAt := time.Date(day.Year(), day.Month(), day.Day(), 6+rng.Intn(14), 5*rng.Intn(12), 0, 0, time.UTC)
		duration := time.Duration(80+rng.Intn(400)) * time.Minute

		stops := 0
		if rng.Intn(3) == 0 {
			stops = 1
		}

		offers = append(offers, flight.Offer{
			ID: fmt.Sprintf("%s%d", carrier.Code, 100+rng.Intn(4900)),
			Departure: flight.Endpoint{
				CityName:    from.Name,
				AirportCode: from.Code,
				Timestamp:   departAt.Format(time.RFC3339),
			},
			Arrival: flight.Endpoint{
				CityName:    to.Name,
				AirportCode: to.Code,
				Timestamp:   departAt.Add(duration).Format(time.RFC3339),
			},
			Airlines:      []string{carrier.Name},
			PriceInUSD:    round2(149 + rng.Float64()*1100),
			NumberOfStops: stops,
		})
	}
	return offers
}

// FlightStatus returns the status snapshot for a flight on the given date.
// The date is expected as YYYY-MM-DD; anything else falls back to today.
func (g *Generator) FlightStatus(flightNumber, date string) flight.Status {
	number := normalizeFlightNumber(flightNumber)
	day := resolveDate(date, g.now())
	rng := seededRand("status", number, day.Format("2006-01-02"))

	fromIdx := rng.Intn(len(cities))
	toIdx := (fromIdx + 1 + rng.Intn(len(cities)-1)) % len(cities)
	from := cities[fromIdx]
	to := cities[toIdx]

	departAt := time.Date(day.Year(), day.Month(), day.Day(), 5+rng.Intn(16), 5*rng.Intn(12), 0, 0, time.UTC)
	duration := time.Duration(75+rng.Intn(420)) * time.Minute

	return flight.Status{
		FlightNumber: number,
		Departure: flight.Endpoint{
			CityName:    from.Name,
			AirportCode: from.Code,
			AirportName: from.Airport,
			Timestamp:   departAt.Format(time.RFC3339),
			Terminal:    fmt.Sprintf("%d", 1+rng.Intn(5)),
			Gate:        fmt.Sprintf("%c%d", 'A'+rune(rng.Intn(5)), 1+rng.Intn(24)),
		},
		Arrival: flight.Endpoint{
			CityName:    to.Name,
			AirportCode: to.Code,
			AirportName: to.Airport,
			Timestamp:   departAt.Add(duration).Format(time.RFC3339),
			Terminal:    fmt.Sprintf("%d", 1+rng.Intn(5)),
			Gate:        fmt.Sprintf("%c%d", 'A'+rune(rng.Intn(5)), 1+rng.Intn(24)),
		},
		TotalDistanceInMiles: 250 + rng.Intn(4800),
	}
}

// SeatMap returns the selectable seats for a flight, five rows of six.
func (g *Generator) SeatMap(flightNumber string) []flight.Seat {
	number := normalizeFlightNumber(flightNumber)
	rng := seededRand("seats", number)

	base := 18 + rng.Float64()*30
	seats := make([]flight.Seat, 0, 30)
	for row := 12; row < 17; row++ {
		for _, letter := range seatLetters {
			seats = append(seats, flight.Seat{
				SeatNumber:  fmt.Sprintf("%d%c", row, letter),
				PriceInUSD:  round2(base + rng.Float64()*25 + seatPremium(letter)),
				IsAvailable: rng.Float64() < 0.65,
			})
		}
	}
	return seats
}

// TotalPrice quotes a reservation total for the chosen seats. The quote only
// depends on the flight number and the set of seats, not their order.
func (g *Generator) TotalPrice(flightNumber string, seats []string) float64 {
	number := normalizeFlightNumber(flightNumber)

	normalized := make([]string, 0, len(seats))
	for _, seat := range seats {
		normalized = append(normalized, strings.ToUpper(strings.TrimSpace(seat)))
	}
	sort.Strings(normalized)

	total := 0.0
	for _, seat := range normalized {
		rng := seededRand("price", number, seat)
		total += 120 + rng.Float64()*680
	}
	return round2(total)
}

func seededRand(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, part := range parts {
		h.Write([]byte(strings.ToUpper(strings.TrimSpace(part))))
		h.Write([]byte{0})
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func resolveCity(input string) city {
	needle := strings.TrimSpace(input)
	for _, c := range cities {
		if strings.EqualFold(c.Code, needle) || strings.EqualFold(c.Name, needle) {
			return c
		}
	}

	code := strings.ToUpper(needle)
	if runes := []rune(code); len(runes) > 3 {
		code = string(runes[:3])
	}
	return city{Name: needle, Code: code, Airport: needle + " Airport"}
}

func resolveDate(raw string, fallback time.Time) time.Time {
	if parsed, err := time.Parse("2006-01-02", strings.TrimSpace(raw)); err == nil {
		return parsed
	}
	return fallback
}

func normalizeFlightNumber(flightNumber string) string {
	return strings.ToUpper(strings.TrimSpace(flightNumber))
}

func seatPremium(letter rune) float64 {
	switch letter {
	case 'A', 'F':
		return 12
	case 'C', 'D':
		return 8
	default:
		return 0
	}
}

func round2(val float64) float64 {
	return math.Round(val*100) / 100
}
