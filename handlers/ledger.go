package handlers

import (
	"net/http"

	"gamebank/config"
	"gamebank/ledger"

	"github.com/shopspring/decimal"
)

// LedgerHandler serves the game-play operations: cash movement, property
// purchases, summaries, and the leaderboard.
type LedgerHandler struct {
	config  *config.Config
	service *ledger.Service
}

func NewLedgerHandler(cfg *config.Config, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		config:  cfg,
		service: service,
	}
}

type cashRequest struct {
	TeamID uint            `json:"team_id"`
	Amount decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	FromTeamID uint            `json:"from_team_id"`
	ToTeamID   uint            `json:"to_team_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type propertyRequest struct {
	PropertyName string `json:"property_name"`
	TeamID       uint   `json:"team_id"`
}

func (h *LedgerHandler) AddCash(w http.ResponseWriter, r *http.Request) {
	var req cashRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	team, err := h.service.AddCash(r.Context(), req.TeamID, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, team)
}

func (h *LedgerHandler) RemoveCash(w http.ResponseWriter, r *http.Request) {
	var req cashRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	team, err := h.service.RemoveCash(r.Context(), req.TeamID, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, team)
}

func (h *LedgerHandler) TransferCash(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.TransferCash(r.Context(), req.FromTeamID, req.ToTeamID, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, result)
}

func (h *LedgerHandler) PurchaseProperty(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.PurchaseProperty(r.Context(), req.PropertyName, req.TeamID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, result)
}

func (h *LedgerHandler) RemovePropertyFromTeam(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.RemovePropertyFromTeam(r.Context(), req.PropertyName, req.TeamID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, result)
}

func (h *LedgerHandler) TeamSummary(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseTeamID(r.URL.Query().Get("team_id"))
	if err != nil {
		respondError(w, err)
		return
	}

	summary, err := h.service.TeamSummary(r.Context(), teamID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, summary)
}

func (h *LedgerHandler) AvailableProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.service.AvailableProperties(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, properties)
}

func (h *LedgerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Leaderboard(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, rows)
}
