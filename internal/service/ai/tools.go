package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"

	flightmodel "github.com/mingxw/aerochat/backend/internal/model/flight"
	"github.com/mingxw/aerochat/backend/internal/model/reservation"
	"github.com/mingxw/aerochat/backend/internal/model/session"
	flightservice "github.com/mingxw/aerochat/backend/internal/service/flight"
	"github.com/mingxw/aerochat/backend/internal/store"
)

const maxWeatherPayload = 1 << 20

// Toolbox 持有工具目录的全部依赖：预订存储、示例航班生成器与天气上游。
type Toolbox struct {
	reservations store.ReservationStore
	flights      *flightservice.Generator
	weatherURL   string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewToolbox 创建工具目录。
func NewToolbox(reservations store.ReservationStore, flights *flightservice.Generator, weatherBaseURL string, logger *zap.Logger) *Toolbox {
	return &Toolbox{
		reservations: reservations,
		flights:      flights,
		weatherURL:   weatherBaseURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
	}
}

// Tools 以固定顺序物化全部八个工具。
func (t *Toolbox) Tools() ([]tool.BaseTool, error) {
	weather, err := utils.InferTool("getWeather", "Get the current weather at a location", t.getWeather)
	if err != nil {
		return nil, fmt.Errorf("build getWeather: %w", err)
	}

	status, err := utils.InferTool("displayFlightStatus", "Display the status of a flight", t.displayFlightStatus)
	if err != nil {
		return nil, fmt.Errorf("build displayFlightStatus: %w", err)
	}

	search, err := utils.InferTool("searchFlights", "Search for flights based on the given parameters", t.searchFlights)
	if err != nil {
		return nil, fmt.Errorf("build searchFlights: %w", err)
	}

	seats, err := utils.InferTool("selectSeats", "Select seats for a flight", t.selectSeats)
	if err != nil {
		return nil, fmt.Errorf("build selectSeats: %w", err)
	}

	create, err := utils.InferTool("createReservation", "Display pending reservation details", t.createReservation)
	if err != nil {
		return nil, fmt.Errorf("build createReservation: %w", err)
	}

	authorize, err := utils.InferTool("authorizePayment", "User will enter the credentials to authorize payment, wait for user to respond when they are done", t.authorizePayment)
	if err != nil {
		return nil, fmt.Errorf("build authorizePayment: %w", err)
	}

	verify, err := utils.InferTool("verifyPayment", "Verify payment status", t.verifyPayment)
	if err != nil {
		return nil, fmt.Errorf("build verifyPayment: %w", err)
	}

	boardingPass, err := utils.InferTool("displayBoardingPass", "Display a boarding pass", t.displayBoardingPass)
	if err != nil {
		return nil, fmt.Errorf("build displayBoardingPass: %w", err)
	}

	return []tool.BaseTool{weather, status, search, seats, create, authorize, verify, boardingPass}, nil
}

type weatherInput struct {
	Latitude  float64 `json:"latitude" jsonschema:"description=Latitude coordinate"`
	Longitude float64 `json:"longitude" jsonschema:"description=Longitude coordinate"`
}

// getWeather 直接转发 Open-Meteo 的原始响应，让模型自行解读。
func (t *Toolbox) getWeather(ctx context.Context, in weatherInput) (json.RawMessage, error) {
	url := fmt.Sprintf(
		"%s/v1/forecast?latitude=%v&longitude=%v&current=temperature_2m&hourly=temperature_2m&daily=sunrise,sunset&timezone=auto",
		t.weatherURL, in.Latitude, in.Longitude,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errorResult("unable to fetch weather"), nil
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Warn("weather request failed", zap.Error(err))
		return errorResult("unable to fetch weather"), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWeatherPayload))
	if err != nil || resp.StatusCode != http.StatusOK || !json.Valid(body) {
		t.logger.Warn("weather response unusable", zap.Int("status", resp.StatusCode), zap.Error(err))
		return errorResult("unable to fetch weather"), nil
	}

	return json.RawMessage(body), nil
}

type flightStatusInput struct {
	FlightNumber string `json:"flightNumber" jsonschema:"description=Flight number"`
	Date         string `json:"date" jsonschema:"description=Date of the flight in YYYY-MM-DD format"`
}

func (t *Toolbox) displayFlightStatus(_ context.Context, in flightStatusInput) (flightmodel.Status, error) {
	return t.flights.FlightStatus(in.FlightNumber, in.Date), nil
}

type searchFlightsInput struct {
	Origin      string `json:"origin" jsonschema:"description=Origin airport or city"`
	Destination string `json:"destination" jsonschema:"description=Destination airport or city"`
}

type searchFlightsResult struct {
	Flights []flightmodel.Offer `json:"flights"`
}

func (t *Toolbox) searchFlights(_ context.Context, in searchFlightsInput) (searchFlightsResult, error) {
	return searchFlightsResult{Flights: t.flights.SearchFlights(in.Origin, in.Destination)}, nil
}

type selectSeatsInput struct {
	FlightNumber string `json:"flightNumber" jsonschema:"description=Flight number"`
}

type selectSeatsResult struct {
	Seats []flightmodel.Seat `json:"seats"`
}

func (t *Toolbox) selectSeats(_ context.Context, in selectSeatsInput) (selectSeatsResult, error) {
	return selectSeatsResult{Seats: t.flights.SeatMap(in.FlightNumber)}, nil
}

type createReservationInput struct {
	Seats         []string        `json:"seats" jsonschema:"description=Selected seat numbers"`
	FlightNumber  string          `json:"flightNumber" jsonschema:"description=Flight number"`
	Departure     reservation.Leg `json:"departure" jsonschema:"description=Departure details"`
	Arrival       reservation.Leg `json:"arrival" jsonschema:"description=Arrival details"`
	PassengerName string          `json:"passengerName" jsonschema:"description=Full name of the passenger"`
}

type createReservationResult struct {
	ReservationID   string  `json:"reservationId,omitempty"`
	TotalPriceInUSD float64 `json:"totalPriceInUSD,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// createReservation 在会话用户名下落库一条未支付的预订。匿名会话返回错误结果而不是中断整个流。
func (t *Toolbox) createReservation(ctx context.Context, in createReservationInput) (createReservationResult, error) {
	sess, signedIn := session.FromContext(ctx)
	if !signedIn {
		return createReservationResult{Error: "user is not signed in to perform this action"}, nil
	}

	price := t.flights.TotalPrice(in.FlightNumber, in.Seats)
	r := reservation.Reservation{
		ID:     uuid.NewString(),
		UserID: sess.User.ID,
		Details: reservation.Details{
			FlightNumber:    in.FlightNumber,
			Departure:       in.Departure,
			Arrival:         in.Arrival,
			PassengerName:   in.PassengerName,
			Seats:           in.Seats,
			TotalPriceInUSD: price,
		},
	}

	if err := t.reservations.CreateReservation(ctx, r); err != nil {
		t.logger.Error("failed to create reservation", zap.Error(err))
		return createReservationResult{Error: "unable to create reservation"}, nil
	}

	return createReservationResult{ReservationID: r.ID, TotalPriceInUSD: price}, nil
}

type authorizePaymentInput struct {
	ReservationID string `json:"reservationId" jsonschema:"description=Unique identifier for the reservation"`
}

type authorizePaymentResult struct {
	ReservationID string `json:"reservationId"`
}

// authorizePayment 只回显预订标识；真正的支付完成由用户在对话外操作，随后通过 verifyPayment 查询。
func (t *Toolbox) authorizePayment(_ context.Context, in authorizePaymentInput) (authorizePaymentResult, error) {
	return authorizePaymentResult{ReservationID: in.ReservationID}, nil
}

type verifyPaymentInput struct {
	ReservationID string `json:"reservationId" jsonschema:"description=Unique identifier for the reservation"`
}

type verifyPaymentResult struct {
	HasCompletedPayment bool   `json:"hasCompletedPayment"`
	Error               string `json:"error,omitempty"`
}

func (t *Toolbox) verifyPayment(ctx context.Context, in verifyPaymentInput) (verifyPaymentResult, error) {
	r, err := t.reservations.GetReservationByID(ctx, in.ReservationID)
	if err != nil {
		t.logger.Warn("failed to load reservation for payment check", zap.String("reservationId", in.ReservationID), zap.Error(err))
		return verifyPaymentResult{Error: "unable to verify payment"}, nil
	}
	return verifyPaymentResult{HasCompletedPayment: r.HasCompletedPayment}, nil
}

type boardingPassInput struct {
	ReservationID string               `json:"reservationId" jsonschema:"description=Unique identifier for the reservation"`
	PassengerName string               `json:"passengerName" jsonschema:"description=Name of the passenger"`
	FlightNumber  string               `json:"flightNumber" jsonschema:"description=Flight number"`
	Seat          string               `json:"seat" jsonschema:"description=Seat number"`
	Departure     flightmodel.Endpoint `json:"departure" jsonschema:"description=Departure details"`
	Arrival       flightmodel.Endpoint `json:"arrival" jsonschema:"description=Arrival details"`
}

// displayBoardingPass 回显登机牌数据，由前端负责渲染。
func (t *Toolbox) displayBoardingPass(_ context.Context, in boardingPassInput) (boardingPassInput, error) {
	return in, nil
}

func errorResult(message string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"error": message})
	return data
}
