package flight

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func fixedGenerator() *Generator {
	fixed := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	return &Generator{now: func() time.Time { return fixed }}
}

func TestSearchFlightsDeterministic(t *testing.T) {
	g := fixedGenerator()

	first := g.SearchFlights("SFO", "JFK")
	second := g.SearchFlights("sfo", " jfk ")

	if len(first) != 4 {
		t.Fatalf("expected 4 offers, got %d", len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same search returned different offers:\n%v\n%v", first, second)
	}

	for i, offer := range first {
		if offer.Departure.AirportCode != "SFO" || offer.Arrival.AirportCode != "JFK" {
			t.Fatalf("offer %d has wrong route: %s -> %s", i, offer.Departure.AirportCode, offer.Arrival.AirportCode)
		}
		if offer.PriceInUSD < 149 || offer.PriceInUSD > 1249 {
			t.Fatalf("offer %d price out of range: %v", i, offer.PriceInUSD)
		}
		if offer.NumberOfStops != 0 && offer.NumberOfStops != 1 {
			t.Fatalf("offer %d has unexpected stop count %d", i, offer.NumberOfStops)
		}
		if len(offer.Airlines) != 1 || offer.Airlines[0] == "" {
			t.Fatalf("offer %d missing airline: %v", i, offer.Airlines)
		}
		depart, err := time.Parse(time.RFC3339, offer.Departure.Timestamp)
		if err != nil {
			t.Fatalf("offer %d departure timestamp not RFC3339: %v", i, err)
		}
		arrive, err := time.Parse(time.RFC3339, offer.Arrival.Timestamp)
		if err != nil {
			t.Fatalf("offer %d arrival timestamp not RFC3339: %v", i, err)
		}
		if !arrive.After(depart) {
			t.Fatalf("offer %d arrives before it departs", i)
		}
	}
}

func TestSearchFlightsUnknownCity(t *testing.T) {
	g := fixedGenerator()

	offers := g.SearchFlights("Springfield", "Boston")
	if len(offers) != 4 {
		t.Fatalf("expected 4 offers, got %d", len(offers))
	}
	if offers[0].Departure.CityName != "Springfield" {
		t.Fatalf("unexpected departure city %q", offers[0].Departure.CityName)
	}
	if offers[0].Departure.AirportCode != "SPR" {
		t.Fatalf("expected synthesized code SPR, got %q", offers[0].Departure.AirportCode)
	}
	if offers[0].Arrival.AirportCode != "BOS" {
		t.Fatalf("expected BOS, got %q", offers[0].Arrival.AirportCode)
	}
}

func TestFlightStatusDeterministic(t *testing.T) {
	g := fixedGenerator()

	first := g.FlightStatus("UA482", "2026-03-15")
	second := g.FlightStatus(" ua482 ", "2026-03-15")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same flight returned different status:\n%+v\n%+v", first, second)
	}
	if first.FlightNumber != "UA482" {
		t.Fatalf("flight number not normalized: %q", first.FlightNumber)
	}
	if first.Departure.AirportCode == first.Arrival.AirportCode {
		t.Fatalf("departure and arrival are the same airport %q", first.Departure.AirportCode)
	}
	for _, endpoint := range []struct {
		label string
		gate  string
		term  string
		name  string
	}{
		{"departure", first.Departure.Gate, first.Departure.Terminal, first.Departure.AirportName},
		{"arrival", first.Arrival.Gate, first.Arrival.Terminal, first.Arrival.AirportName},
	} {
		if endpoint.gate == "" || endpoint.term == "" || endpoint.name == "" {
			t.Fatalf("%s endpoint incomplete: %+v", endpoint.label, endpoint)
		}
	}
	if first.TotalDistanceInMiles < 250 || first.TotalDistanceInMiles > 5049 {
		t.Fatalf("distance out of range: %d", first.TotalDistanceInMiles)
	}

	otherDay := g.FlightStatus("UA482", "2026-03-16")
	if reflect.DeepEqual(first, otherDay) {
		t.Fatal("status should vary with the date")
	}
}

func TestFlightStatusDateFallback(t *testing.T) {
	g := fixedGenerator()

	fallback := g.FlightStatus("DL117", "not-a-date")
	today := g.FlightStatus("DL117", "2026-03-14")

	if !reflect.DeepEqual(fallback, today) {
		t.Fatalf("invalid date should fall back to today:\n%+v\n%+v", fallback, today)
	}
}

func TestSeatMap(t *testing.T) {
	g := fixedGenerator()

	seats := g.SeatMap("UA482")
	if len(seats) != 30 {
		t.Fatalf("expected 30 seats, got %d", len(seats))
	}

	seen := make(map[string]bool, len(seats))
	for _, seat := range seats {
		if seen[seat.SeatNumber] {
			t.Fatalf("duplicate seat %q", seat.SeatNumber)
		}
		seen[seat.SeatNumber] = true

		if seat.PriceInUSD < 18 || seat.PriceInUSD > 85 {
			t.Fatalf("seat %s price out of range: %v", seat.SeatNumber, seat.PriceInUSD)
		}
	}
	for row := 12; row < 17; row++ {
		for _, letter := range seatLetters {
			number := fmt.Sprintf("%d%c", row, letter)
			if !seen[number] {
				t.Fatalf("missing seat %s", number)
			}
		}
	}

	again := g.SeatMap("ua482")
	if !reflect.DeepEqual(seats, again) {
		t.Fatal("seat map should be stable for a flight")
	}
}

func TestTotalPrice(t *testing.T) {
	g := fixedGenerator()

	quote := g.TotalPrice("UA482", []string{"12A", "14C"})
	reordered := g.TotalPrice("ua482", []string{" 14c ", "12a"})
	if quote != reordered {
		t.Fatalf("quote depends on seat order: %v vs %v", quote, reordered)
	}
	if quote < 240 || quote > 1600 {
		t.Fatalf("two-seat quote out of range: %v", quote)
	}

	single := g.TotalPrice("UA482", []string{"12A"})
	if single >= quote {
		t.Fatalf("adding a seat should raise the quote: %v vs %v", single, quote)
	}

	if empty := g.TotalPrice("UA482", nil); empty != 0 {
		t.Fatalf("no seats should quote 0, got %v", empty)
	}
}
