package handlers

import (
	"net/http"

	"gamebank/config"
	"gamebank/ledger"
	"gamebank/middleware"

	log "github.com/sirupsen/logrus"
)

// AdminHandler serves the banker-only operations: catalog seeding, team
// edits and removal, and the full reset.
type AdminHandler struct {
	config  *config.Config
	service *ledger.Service
}

func NewAdminHandler(cfg *config.Config, service *ledger.Service) *AdminHandler {
	return &AdminHandler{
		config:  cfg,
		service: service,
	}
}

type editTeamRequest struct {
	TeamID uint `json:"team_id"`
	ledger.TeamEdit
}

type teamIDRequest struct {
	TeamID uint `json:"team_id"`
}

func (h *AdminHandler) AddPropertiesBulk(w http.ResponseWriter, r *http.Request) {
	properties, err := h.service.AddPropertiesBulk(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, properties)
}

func (h *AdminHandler) EditTeam(w http.ResponseWriter, r *http.Request) {
	var req editTeamRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.TeamID == 0 {
		respondValidation(w, "team_id is required")
		return
	}

	team, err := h.service.EditTeam(r.Context(), req.TeamID, req.TeamEdit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, team)
}

func (h *AdminHandler) RemoveTeam(w http.ResponseWriter, r *http.Request) {
	var req teamIDRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.TeamID == 0 {
		respondValidation(w, "team_id is required")
		return
	}

	if err := h.service.RemoveTeam(r.Context(), req.TeamID); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, map[string]interface{}{"removed": true, "team_id": req.TeamID})
}

func (h *AdminHandler) ResetAllTables(w http.ResponseWriter, r *http.Request) {
	banker := middleware.GetBankerFromContext(r.Context())
	if banker != nil {
		log.WithField("banker", banker.Username).Warn("Resetting all tables")
	}

	if err := h.service.ResetAllTables(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, map[string]interface{}{"reset": true})
}
