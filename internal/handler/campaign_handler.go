package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"campaign-engine/internal/model"
	"campaign-engine/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CampaignHandler handles campaign-related HTTP requests.
type CampaignHandler struct {
	campaigns   service.CampaignService
	eligibility service.EligibilityService
	redemption  service.RedemptionService
	logger      zerolog.Logger
}

// NewCampaignHandler creates a new campaign handler.
func NewCampaignHandler(
	campaigns service.CampaignService,
	eligibility service.EligibilityService,
	redemption service.RedemptionService,
	logger zerolog.Logger,
) *CampaignHandler {
	return &CampaignHandler{
		campaigns:   campaigns,
		eligibility: eligibility,
		redemption:  redemption,
		logger:      logger.With().Str("handler", "campaign").Logger(),
	}
}

// Available handles GET and POST /api/campaigns/available requests.
// GET reads the cart from query parameters, POST from the JSON body.
func (h *CampaignHandler) Available(w http.ResponseWriter, r *http.Request) {
	var req model.AvailabilityRequest

	switch r.Method {
	case http.MethodGet:
		parsed, ok := h.cartFromQuery(w, r)
		if !ok {
			return
		}
		req = parsed
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
			return
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidInput, "method not allowed", h.logger)
		return
	}

	results, err := h.eligibility.FindAvailable(r.Context(), req.Cart())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.AvailableCampaignsResponse{AvailableCampaigns: results})
}

// Redeem handles POST /api/campaigns/redeem requests.
func (h *CampaignHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidInput, "method not allowed", h.logger)
		return
	}

	var req model.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.CampaignID == uuid.Nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "campaignId is required", h.logger)
		return
	}

	rec, err := h.redemption.Redeem(r.Context(), req.CampaignID, req.Cart())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// Create handles POST /api/campaigns requests.
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c model.Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	created, err := h.campaigns.Create(r.Context(), &c)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /api/campaigns requests.
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	campaigns, err := h.campaigns.List(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if campaigns == nil {
		campaigns = []model.Campaign{}
	}

	writeJSON(w, http.StatusOK, campaigns)
}

// GetByID handles GET /api/campaigns/{id} requests.
func (h *CampaignHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	c, err := h.campaigns.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeCampaignNotFound, "campaign not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/campaigns/{id} requests.
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	if err := h.campaigns.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Redemptions handles GET /api/campaigns/{id}/redemptions requests.
func (h *CampaignHandler) Redemptions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 50)
	records, err := h.campaigns.Redemptions(r.Context(), id, limit)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if records == nil {
		records = []model.RedemptionRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

// cartFromQuery reads customer_id, subtotal and delivery query parameters.
func (h *CampaignHandler) cartFromQuery(w http.ResponseWriter, r *http.Request) (model.AvailabilityRequest, bool) {
	q := r.URL.Query()

	customerID := q.Get("customer_id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput,
			"customer_id, subtotal and delivery query parameters are required", h.logger)
		return model.AvailabilityRequest{}, false
	}

	subtotal, err := decimal.NewFromString(q.Get("subtotal"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid subtotal", h.logger)
		return model.AvailabilityRequest{}, false
	}
	delivery, err := decimal.NewFromString(q.Get("delivery"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid delivery", h.logger)
		return model.AvailabilityRequest{}, false
	}

	return model.AvailabilityRequest{CustomerID: customerID, Subtotal: subtotal, Delivery: delivery}, true
}

// campaignID extracts the campaign ID segment from /api/campaigns/{id} and
// /api/campaigns/{id}/... paths. Trailing slashes are tolerated.
func (h *CampaignHandler) campaignID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	const prefix = "/api/campaigns/"
	rest := strings.TrimPrefix(strings.TrimSuffix(r.URL.Path, "/"), prefix)
	if segment, _, found := strings.Cut(rest, "/"); found {
		rest = segment
	}
	if rest == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "campaign ID is required", h.logger)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid campaign ID format", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
