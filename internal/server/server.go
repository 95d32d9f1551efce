// Package server exposes the inference service over HTTP. It is a thin
// layer: validation, JSON contracts, and status mapping live here; all
// prediction logic is in the predictor package.
package server

import (
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/spendwise/spendcat/internal/insights"
	"github.com/spendwise/spendcat/internal/model"
	"github.com/spendwise/spendcat/internal/predictor"
)

const dateFormat = "2006-01-02"

// Server wires the predictor service into a fiber app.
type Server struct {
	svc *predictor.Service
	log zerolog.Logger
}

// New creates the HTTP server around a predictor service.
func New(svc *predictor.Service, log zerolog.Logger) *Server {
	return &Server{svc: svc, log: log}
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(s.requestLogger)

	app.Get("/", s.handleRoot)
	app.Get("/api/health", s.handleHealth)
	app.Post("/api/predict", s.handlePredict)
	app.Post("/api/predict-batch", s.handlePredictBatch)
	return app
}

// requestLogger tags each request with an ID and logs its outcome.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	id := uuid.NewString()
	c.Set("X-Request-ID", id)
	start := time.Now()

	err := c.Next()

	s.log.Info().
		Str("request_id", id).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("request")
	return err
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Smart Expense Categorizer API",
		"status":  "running",
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if !s.svc.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not_ready",
			"error":  predictor.ErrNotReady.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// transactionRequest is the wire form of one transaction to categorize.
type transactionRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date,omitempty"`
	UserID      string  `json:"user_id,omitempty"`
}

// predictResponse mirrors the single-predict contract: the chosen
// category, its confidence, the full posterior, and an echo of the input.
type predictResponse struct {
	Category      string             `json:"category"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Description   string             `json:"description"`
	Amount        float64            `json:"amount"`
}

// batchRequest is an ordered sequence of transactions. Output order
// matches input order.
type batchRequest struct {
	Transactions []transactionRequest `json:"transactions"`
}

type batchItemResponse struct {
	Description       string  `json:"description"`
	Amount            float64 `json:"amount"`
	PredictedCategory string  `json:"predicted_category,omitempty"`
	Confidence        float64 `json:"confidence,omitempty"`
	UserID            string  `json:"user_id,omitempty"`
	Error             string  `json:"error,omitempty"`
}

type batchResponse struct {
	Predictions       []batchItemResponse `json:"predictions"`
	Insights          insights.Summary    `json:"insights"`
	TotalTransactions int                 `json:"total_transactions"`
}

func (s *Server) handlePredict(c *fiber.Ctx) error {
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	tx, err := req.toTransaction()
	if err != nil {
		return badRequest(c, err.Error())
	}

	p, err := s.svc.Predict(tx)
	if err != nil {
		return predictionError(c, err)
	}

	amount, _ := p.Amount.Float64()
	return c.JSON(predictResponse{
		Category:      p.Category,
		Confidence:    p.Confidence,
		Probabilities: p.Probabilities,
		Description:   p.Description,
		Amount:        amount,
	})
}

func (s *Server) handlePredictBatch(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	txs := make([]model.Transaction, len(req.Transactions))
	parseErrs := make([]error, len(req.Transactions))
	for i, item := range req.Transactions {
		txs[i], parseErrs[i] = item.toTransaction()
	}

	outcomes, err := s.svc.PredictBatch(txs)
	if err != nil {
		return predictionError(c, err)
	}

	resp := batchResponse{
		Predictions:       make([]batchItemResponse, len(outcomes)),
		TotalTransactions: len(outcomes),
	}
	var categorized []insights.Item
	for i, out := range outcomes {
		item := batchItemResponse{
			Description: req.Transactions[i].Description,
			Amount:      req.Transactions[i].Amount,
			UserID:      req.Transactions[i].UserID,
		}
		switch {
		case parseErrs[i] != nil:
			item.Error = parseErrs[i].Error()
		case out.Err != nil:
			item.Error = out.Err.Error()
		default:
			item.PredictedCategory = out.Prediction.Category
			item.Confidence = out.Prediction.Confidence
			categorized = append(categorized, insights.Item{
				Category: out.Prediction.Category,
				Amount:   out.Prediction.Amount,
			})
		}
		resp.Predictions[i] = item
	}
	resp.Insights = insights.Summarize(categorized)

	return c.JSON(resp)
}

// toTransaction validates and converts the wire form. A malformed date or
// a non-finite amount is rejected here, before the predictor sees it.
func (r transactionRequest) toTransaction() (model.Transaction, error) {
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) {
		return model.Transaction{}, predictor.ValidationError{Field: "amount", Reason: "must be a finite number"}
	}

	tx := model.Transaction{
		Description: r.Description,
		Amount:      decimal.NewFromFloat(r.Amount),
		UserID:      r.UserID,
	}
	if r.Date != "" {
		d, err := time.Parse(dateFormat, r.Date)
		if err != nil {
			return model.Transaction{}, predictor.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		tx.Date = &d
	}
	return tx, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// predictionError maps service errors to HTTP statuses: not-ready is 503,
// validation is 400.
func predictionError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	if errors.Is(err, predictor.ErrNotReady) {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
