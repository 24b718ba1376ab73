package server

import (
	"context"
	"encoding/json"
	"net/http"

	"skyfare/meridian/pkg/itinerary"
	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/payment"
	"skyfare/meridian/pkg/rules"
	"skyfare/meridian/pkg/telemetry/logging"
)

// maxRequestBytes bounds the request body to keep one oversized batch
// from exhausting memory.
const maxRequestBytes = 16 << 20

// Evaluator is the engine surface the server depends on.
type Evaluator interface {
	Evaluate(ctx context.Context, itins []*itinerary.Itinerary, ordered *rules.OrderedTaxes) (*payment.ItinsPayments, error)
}

// evaluateHandler serves POST /evaluate.
type evaluateHandler struct {
	evaluator Evaluator
	logger    *logging.Logger
}

func (h *evaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req EvaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	currency := money.CurrencyCode(req.PaymentCurrency)
	if err := currency.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid payment_currency")
		return
	}
	if len(req.Itineraries) == 0 {
		writeError(w, r, http.StatusBadRequest, "itineraries must not be empty")
		return
	}

	itins := make([]*itinerary.Itinerary, 0, len(req.Itineraries))
	for i := range req.Itineraries {
		itin, err := req.Itineraries[i].toItinerary()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		itin.PaymentCurrency = currency
		itins = append(itins, itin)
	}

	ordered, err := toOrderedTaxes(req.Taxes)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.evaluator.Evaluate(r.Context(), itins, ordered)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "evaluation failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "evaluation failed")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(logging.GetRequestID(r.Context()), itins, out))
}

// healthHandler serves GET /healthz.
func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:     msg,
		RequestID: logging.GetRequestID(r.Context()),
	})
}
