package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/geo"
)

// GeoHandler proxies reverse geocoding for the helper submission form.
type GeoHandler struct {
	client *geo.Client
	logger *zap.SugaredLogger
}

// NewGeoHandler creates a new geocoding handler
func NewGeoHandler(client *geo.Client, logger *zap.SugaredLogger) *GeoHandler {
	return &GeoHandler{client: client, logger: logger}
}

// Reverse handles GET /api/v1/geo/reverse?lat=&lon=. The response always
// carries an address: lookup failures fall back to the raw coordinates.
func (h *GeoHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err1 != nil || err2 != nil {
		respondError(w, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}

	address := h.client.ReverseGeocode(r.Context(), lat, lon)
	respondJSON(w, http.StatusOK, map[string]string{"address": address})
}
