package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/rates"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"currency": format.Currency,
	"percent":  format.Percent,
}).ParseFS(embeddedFiles, "templates/index.html"))

// RateSource supplies the default interest rate shown on the form.
type RateSource interface {
	FetchCurrentRate(ctx context.Context) rates.RateData
}

type handler struct {
	logger      *zap.Logger
	calculator  *mortgage.Calculator
	rates       RateSource
	limiter     *RateLimiter
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the calculator form and
// the mortgage API. A nil limiter disables rate limiting.
func NewHandler(logger *zap.Logger, rateSource RateSource, limiter *RateLimiter, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		calculator:  mortgage.NewCalculator(logger),
		rates:       rateSource,
		limiter:     limiter,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	// Calculator form
	mux.HandleFunc("/", h.handleIndex)

	// Mortgage calculation API
	mux.Handle("/api/mortgage", h.withRateLimit(http.HandlerFunc(h.handleMortgage)))

	// Current reference rate
	mux.Handle("/api/rate", h.withRateLimit(http.HandlerFunc(h.handleRate)))

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets
	sub, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	return withRequestID(h.withAccessLog(h.withRecovery(mux)))
}

// calculationRequest mirrors mortgage.Inputs but keeps every field optional
// so missing values can be reported per field.
type calculationRequest struct {
	Price    *float64 `json:"price"`
	Deposit  *float64 `json:"deposit"`
	Term     *float64 `json:"term"`
	Interest *float64 `json:"interest"`
}

type validationErrorResponse struct {
	Error            string            `json:"error"`
	ValidationErrors map[string]string `json:"validationErrors"`
}

func (h *handler) handleMortgage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	var req calculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize))
			return
		}
		h.respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	inputs, termErr := req.toInputs()
	results, check := h.calculator.Calculate(inputs)
	if termErr != "" {
		check.Errors[validation.FieldTermYears] = termErr
		check.IsValid = false
	}
	if !check.IsValid {
		h.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			Error:            "Validation failed",
			ValidationErrors: check.Errors,
		})
		return
	}

	h.logger.Info("mortgage calculated",
		zap.String("op", "server.handleMortgage"),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Int("term", inputs.Term),
		zap.Int("years", len(results.YearlyBreakdown)),
	)
	h.writeJSON(w, http.StatusOK, results)
}

// toInputs fills absent fields the way the form does: a missing deposit is
// zero and any other missing number fails validation.
func (req calculationRequest) toInputs() (mortgage.Inputs, string) {
	inputs := mortgage.Inputs{
		Price:    valueOr(req.Price, math.NaN()),
		Deposit:  valueOr(req.Deposit, 0),
		Interest: valueOr(req.Interest, math.NaN()),
	}
	years, msg := termYears(req.Term)
	inputs.Term = years
	return inputs, msg
}

func termYears(term *float64) (int, string) {
	if term == nil {
		return 0, ""
	}
	years, ok := validation.ValidateTermIsWhole(*term)
	if !ok {
		return 0, validation.MsgTermNotWhole
	}
	return years, ""
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func (h *handler) handleRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	h.writeJSON(w, http.StatusOK, h.currentRate(r.Context()))
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// formValues holds the raw form fields so they can be redisplayed.
type formValues struct {
	Price    string
	Deposit  string
	Term     string
	Interest string
}

type pageData struct {
	Form    formValues
	Rate    *rates.RateData
	Errors  map[string]string
	Results *mortgage.FullResults
	Version string
}

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		rate := h.currentRate(r.Context())
		h.renderPage(w, r, http.StatusOK, pageData{
			Form:    formValues{Deposit: "0", Term: "25", Interest: strconv.FormatFloat(rate.Rate, 'f', -1, 64)},
			Rate:    &rate,
			Version: h.version,
		})
	case http.MethodPost:
		h.handleFormSubmit(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := formValues{
		Price:    strings.TrimSpace(r.PostFormValue("price")),
		Deposit:  strings.TrimSpace(r.PostFormValue("deposit")),
		Term:     strings.TrimSpace(r.PostFormValue("term")),
		Interest: strings.TrimSpace(r.PostFormValue("interest")),
	}

	req := calculationRequest{
		Price:    parseFormNumber(form.Price),
		Deposit:  parseFormNumber(form.Deposit),
		Term:     parseFormNumber(form.Term),
		Interest: parseFormNumber(form.Interest),
	}
	if form.Price != "" && req.Price == nil {
		req.Price = nanPtr()
	}
	if form.Deposit != "" && req.Deposit == nil {
		req.Deposit = nanPtr()
	}
	if form.Interest != "" && req.Interest == nil {
		req.Interest = nanPtr()
	}
	if form.Term != "" && req.Term == nil {
		req.Term = nanPtr()
	}

	inputs, termErr := req.toInputs()
	results, check := h.calculator.Calculate(inputs)
	if termErr != "" {
		check.Errors[validation.FieldTermYears] = termErr
		results = nil
	}

	status := http.StatusOK
	if results == nil {
		status = http.StatusUnprocessableEntity
	}
	h.renderPage(w, r, status, pageData{
		Form:    form,
		Errors:  check.Errors,
		Results: results,
		Version: h.version,
	})
}

func parseFormNumber(value string) *float64 {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func nanPtr() *float64 {
	nan := math.NaN()
	return &nan
}

func (h *handler) currentRate(ctx context.Context) rates.RateData {
	if h.rates == nil {
		return rates.Fallback(time.Now())
	}
	return h.rates.FetchCurrentRate(ctx)
}

func (h *handler) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("failed to render page",
			zap.String("op", "server.renderPage"),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write page", zap.String("op", "server.renderPage"), zap.Error(err))
	}
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.logger.Warn("mortgage request rejected",
		zap.String("op", "server.handleMortgage"),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
