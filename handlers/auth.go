package handlers

import (
	"net/http"

	"gamebank/config"
	"gamebank/ledger"
	"gamebank/middleware"
	"gamebank/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	config *config.Config
	db     *gorm.DB
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		db:     db,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	var banker models.Banker
	if err := h.db.WithContext(r.Context()).Where("username = ?", req.Username).First(&banker).Error; err != nil {
		respondError(w, ledger.Validationf("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(banker.PasswordHash), []byte(req.Password)); err != nil {
		respondError(w, ledger.Validationf("invalid credentials"))
		return
	}

	token, err := middleware.GenerateToken(&banker, h.config.JWTExpiration)
	if err != nil {
		respondError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.JWTExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respondData(w, loginResponse{Token: token, Username: banker.Username})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondData(w, map[string]interface{}{"logged_out": true})
}
