package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"termin/internal/booking/service"
	apperrors "termin/pkg/errors"
	httputil "termin/pkg/http"
	"termin/pkg/logger"
	"termin/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// Slots returns the full booking horizon with taken and past flags.
// Optional from/to query parameters (RFC3339) narrow the window on the
// slot start instant, from inclusive and to exclusive.
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	var from, to *time.Time
	if fromStr := query.Get("from"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			from = &parsed
		} else {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid from parameter, must be RFC3339")); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Slots", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}
	if toStr := query.Get("to"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			to = &parsed
		} else {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid to parameter, must be RFC3339")); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Slots", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	slots, err := h.service.Availability(r.Context(), from, to)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Slots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Code:  apperrors.CodeInvalidInput,
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Book", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid start, must be RFC3339")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Claim(r.Context(), start, req.Details())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/slots", h.Slots)
	router.POST("/api/book", h.Book)
}
