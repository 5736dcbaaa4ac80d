package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wolfman30/survey-assistant/internal/archive"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

const maxBookingsLimit = 200

// BookingLister reads archived booking attempts, newest first.
type BookingLister interface {
	RecentBookings(ctx context.Context, limit int) ([]archive.BookingRecord, error)
}

// BookingsHandler serves the operator booking history.
type BookingsHandler struct {
	lister BookingLister
	logger *logging.Logger
}

func NewBookingsHandler(lister BookingLister, logger *logging.Logger) *BookingsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingsHandler{lister: lister, logger: logger}
}

type bookingsResponse struct {
	Bookings []archive.BookingRecord `json:"bookings"`
}

// List handles GET /admin/bookings?limit=N.
func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxBookingsLimit)
	}

	records, err := h.lister.RecentBookings(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list bookings"})
		return
	}
	if records == nil {
		records = []archive.BookingRecord{}
	}
	writeJSON(w, http.StatusOK, bookingsResponse{Bookings: records})
}
