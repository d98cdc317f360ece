package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vendorlens/diligence-api/internal/audit"
	apperrors "github.com/vendorlens/diligence-api/internal/errors"
	"github.com/vendorlens/diligence-api/internal/middleware"
	"github.com/vendorlens/diligence-api/internal/model"
	"github.com/vendorlens/diligence-api/internal/repository"
	"github.com/vendorlens/diligence-api/internal/token"
	"github.com/vendorlens/diligence-api/internal/util"
)

type AuthHandler struct {
	accountRepo repository.AccountRepository
	issuer      *token.Issuer
}

func NewAuthHandler(accountRepo repository.AccountRepository, issuer *token.Issuer) *AuthHandler {
	return &AuthHandler{
		accountRepo: accountRepo,
		issuer:      issuer,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	APIKey       string `json:"api_key"`
}

// POST /register
// Creates an account from username/password, or re-issues tokens for an
// existing account when a Refresh-Token header stands in for credentials.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Username == "" || req.Password == "" {
		refresh := r.Header.Get(middleware.RefreshTokenHeader)
		if refresh == "" {
			writeError(w, apperrors.ValidationError("Missing username or password"))
			return
		}
		h.reissueFromRefresh(w, r, refresh)
		return
	}

	ctx := r.Context()

	existing, err := h.accountRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		log.Error().Err(err).Msg("register: account lookup failed")
		writeError(w, apperrors.Database(err))
		return
	}
	if existing != nil {
		writeError(w, apperrors.AlreadyExists("Username"))
		return
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("register: password hashing failed")
		writeError(w, apperrors.Internal("Failed to create account"))
		return
	}

	apiKey, err := util.GenerateAPIKey()
	if err != nil {
		log.Error().Err(err).Msg("register: api key generation failed")
		writeError(w, apperrors.Internal("Failed to create account"))
		return
	}

	account, err := h.accountRepo.Create(ctx, model.CreateAccountParams{
		Username:     req.Username,
		PasswordHash: passwordHash,
		APIKey:       apiKey,
	})
	if err != nil {
		log.Error().Err(err).Msg("register: account creation failed")
		writeError(w, apperrors.Database(err))
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventRegister, Username: account.Username})

	h.respondWithTokens(w, account)
}

// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Username == "" || req.Password == "" {
		writeError(w, apperrors.ValidationError("Missing username or password"))
		return
	}

	account, err := h.accountRepo.FindActiveByUsername(r.Context(), req.Username)
	if err != nil {
		log.Error().Err(err).Msg("login: account lookup failed")
		writeError(w, apperrors.Database(err))
		return
	}

	if account == nil || !util.CheckPasswordHash(req.Password, account.PasswordHash) {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure, Username: req.Username})
		writeError(w, apperrors.InvalidCredentials())
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, Username: account.Username})

	h.respondWithTokens(w, account)
}

func (h *AuthHandler) reissueFromRefresh(w http.ResponseWriter, r *http.Request, refresh string) {
	claims, err := h.issuer.Verify(refresh)
	if errors.Is(err, token.ErrExpired) {
		writeError(w, apperrors.RefreshTokenExpired())
		return
	}
	if err != nil {
		writeError(w, apperrors.RefreshTokenInvalid("Invalid refresh token"))
		return
	}
	if claims.Kind != token.KindRefresh {
		writeError(w, apperrors.RefreshTokenInvalid("Invalid refresh token type"))
		return
	}

	account, err := h.accountRepo.FindActiveByUsername(r.Context(), claims.Username)
	if err != nil {
		log.Error().Err(err).Msg("register: account lookup failed")
		writeError(w, apperrors.Database(err))
		return
	}
	if account == nil {
		writeError(w, apperrors.InvalidCredentials())
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventTokenRefresh, Username: account.Username})

	h.respondWithTokens(w, account)
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, account *model.Account) {
	pair, err := h.issuer.IssuePair(account.Username)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue token pair")
		writeError(w, apperrors.Internal("Failed to issue tokens"))
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		APIKey:       account.APIKey,
	})
}
