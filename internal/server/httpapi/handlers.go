// Package httpapi exposes the matchmaking engine over HTTP. Handlers decode
// JSON, call the engine and translate its error kinds onto status codes;
// they hold no domain logic of their own.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/LondonVandervort/PrivacyDating/internal/logging"
	"github.com/LondonVandervort/PrivacyDating/internal/server/auth"
	"github.com/LondonVandervort/PrivacyDating/internal/server/chat"
	"github.com/LondonVandervort/PrivacyDating/internal/server/engine"
	"github.com/LondonVandervort/PrivacyDating/internal/server/matching"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	engine   *engine.Engine
	logger   logging.Logger
	secret   []byte
	tokenTTL time.Duration
}

func NewHandler(e *engine.Engine, logger logging.Logger, secret []byte, tokenTTL time.Duration) *Handler {
	return &Handler{engine: e, logger: logger, secret: secret, tokenTTL: tokenTTL}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) json(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) error(w http.ResponseWriter, status int, message string) {
	h.json(w, status, ErrorResponse{Error: message})
}

// handleEngineError maps the engine's error kinds onto HTTP status codes.
func (h *Handler) handleEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrAlreadyRegistered),
		errors.Is(err, common.ErrAlreadyProcessed):
		h.error(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrNotRegistered),
		errors.Is(err, common.ErrNotFound):
		h.error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrInvalidAttribute),
		errors.Is(err, common.ErrSelfMatch),
		errors.Is(err, common.ErrInvalidRevealProof),
		errors.Is(err, common.ErrRoomInactive):
		h.error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrAccessDenied):
		h.error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, common.ErrTargetUnavailable):
		h.error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error(r.Context(), "internal error", "error", err)
		h.error(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

type TokenRequest struct {
	Principal string `json:"principal"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// IssueToken mints a Bearer token for a principal. Identity verification
// happens upstream of this service; the endpoint only binds the verified
// principal to a signed token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Principal == "" {
		h.error(w, http.StatusBadRequest, "principal is required")
		return
	}

	token, err := auth.GenerateToken(req.Principal, false, h.secret, h.tokenTTL)
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, TokenResponse{Token: token})
}

type RegisterRequest struct {
	Age         uint8  `json:"age"`
	Location    uint8  `json:"location"`
	Interests   uint8  `json:"interests"`
	Personality uint8  `json:"personality"`
	Bio         string `json:"bio"`
}

type RegisterResponse struct {
	UserID uint64 `json:"user_id"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.engine.Register(r.Context(), PrincipalFromContext(r.Context()),
		req.Age, req.Location, req.Interests, req.Personality, req.Bio)
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, RegisterResponse{UserID: p.UserID})
}

func (h *Handler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.engine.GetPublicProfile(r.Context(), chi.URLParam(r, "principal"))
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, p)
}

type UpdateBioRequest struct {
	Bio string `json:"bio"`
}

func (h *Handler) UpdateBio(w http.ResponseWriter, r *http.Request) {
	var req UpdateBioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.UpdateBio(r.Context(), PrincipalFromContext(r.Context()), req.Bio); err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type LookingRequest struct {
	Looking bool `json:"looking"`
}

func (h *Handler) SetLookingForMatch(w http.ResponseWriter, r *http.Request) {
	var req LookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.SetLookingForMatch(r.Context(), PrincipalFromContext(r.Context()), req.Looking); err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type PreferencesRequest struct {
	MinAge            uint8 `json:"min_age"`
	MaxAge            uint8 `json:"max_age"`
	PreferredLocation uint8 `json:"preferred_location"`
}

func (h *Handler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.engine.SetPreferences(r.Context(), PrincipalFromContext(r.Context()),
		req.MinAge, req.MaxAge, req.PreferredLocation)
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type PreferencesResponse struct {
	MinAge            string    `json:"min_age"`
	MaxAge            string    `json:"max_age"`
	PreferredLocation string    `json:"preferred_location"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Preferences returns the caller's stored preference handles. The owner
// holds decrypt grants on them, so they can be taken to the co-processor for
// decryption out of band.
func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.engine.GetPreferences(r.Context(), PrincipalFromContext(r.Context()))
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}

	h.json(w, http.StatusOK, PreferencesResponse{
		MinAge:            string(prefs.MinAge),
		MaxAge:            string(prefs.MaxAge),
		PreferredLocation: string(prefs.PreferredLocation),
		UpdatedAt:         prefs.UpdatedAt,
	})
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Deactivate(r.Context(), PrincipalFromContext(r.Context())); err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.AdminDeactivate(r.Context(), chi.URLParam(r, "principal")); err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type MatchRequestBody struct {
	Target           string `json:"target"`
	EncryptedMessage []byte `json:"encrypted_message,omitempty"`
}

type MatchResponse struct {
	ID               uint64    `json:"id"`
	Requester        string    `json:"requester"`
	Target           string    `json:"target"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	IsAccepted       bool      `json:"is_accepted"`
	IsRevealed       bool      `json:"is_revealed"`
	PublicScore      *uint8    `json:"public_score,omitempty"`
	EncryptedMessage []byte    `json:"encrypted_message,omitempty"`
}

func toMatchResponse(m *matching.MatchRequest) MatchResponse {
	resp := MatchResponse{
		ID:               m.ID,
		Requester:        m.Requester,
		Target:           m.Target,
		Status:           string(m.Status),
		CreatedAt:        m.CreatedAt,
		IsAccepted:       m.IsAccepted,
		IsRevealed:       m.IsRevealed,
		EncryptedMessage: m.EncryptedMessage,
	}
	if m.IsRevealed {
		score := m.PublicScore
		resp.PublicScore = &score
	}
	return resp
}

func (h *Handler) RequestMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.engine.RequestMatch(r.Context(), PrincipalFromContext(r.Context()),
		req.Target, req.EncryptedMessage)
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, toMatchResponse(m))
}

func (h *Handler) matchID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "matchID"), 10, 64)
}

func (h *Handler) MyMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.engine.GetMyMatches(r.Context(), PrincipalFromContext(r.Context()))
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}

	out := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchResponse(m))
	}
	h.json(w, http.StatusOK, out)
}

func (h *Handler) MatchDetails(w http.ResponseWriter, r *http.Request) {
	id, err := h.matchID(r)
	if err != nil {
		h.error(w, http.StatusBadRequest, "invalid match id")
		return
	}

	m, err := h.engine.GetMatchDetails(r.Context(), PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, toMatchResponse(m))
}

func (h *Handler) AcceptMatch(w http.ResponseWriter, r *http.Request) {
	id, err := h.matchID(r)
	if err != nil {
		h.error(w, http.StatusBadRequest, "invalid match id")
		return
	}

	if err := h.engine.AcceptMatch(r.Context(), PrincipalFromContext(r.Context()), id); err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RejectMatch(w http.ResponseWriter, r *http.Request) {
	id, err := h.matchID(r)
	if err != nil {
		h.error(w, http.StatusBadRequest, "invalid match id")
		return
	}

	if err := h.engine.RejectMatch(r.Context(), PrincipalFromContext(r.Context()), id); err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type RoomResponse struct {
	ID        string    `json:"id"`
	UserA     string    `json:"user_a"`
	UserB     string    `json:"user_b"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

func (h *Handler) MyChats(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.engine.GetUserChats(r.Context(), PrincipalFromContext(r.Context()))
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}

	out := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, RoomResponse{
			ID:        room.ID,
			UserA:     room.UserA,
			UserB:     room.UserB,
			CreatedAt: room.CreatedAt,
			IsActive:  room.IsActive,
		})
	}
	h.json(w, http.StatusOK, out)
}

type SendMessageRequest struct {
	Blob []byte `json:"blob"`
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.engine.SendMessage(r.Context(), PrincipalFromContext(r.Context()),
		chi.URLParam(r, "roomID"), req.Blob)
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type MessagesResponse struct {
	Messages []chat.Message `json:"messages"`
	Total    int            `json:"total"`
}

func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	msgs, total, err := h.engine.GetMessages(r.Context(), PrincipalFromContext(r.Context()),
		chi.URLParam(r, "roomID"), offset, limit)
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, MessagesResponse{Messages: msgs, Total: total})
}

func (h *Handler) PlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.GetPlatformStats(r.Context())
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, stats)
}

type RevealCallbackRequest struct {
	MatchID uint64 `json:"match_id"`
	Value   uint8  `json:"value"`
	Proof   []byte `json:"proof"`
}

// RevealCallback accepts a co-processor decryption result delivered over
// HTTP. The in-process mock normally delivers through its channel; this
// route exists for an external co-processor deployment.
func (h *Handler) RevealCallback(w http.ResponseWriter, r *http.Request) {
	var req RevealCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.OnRevealed(r.Context(), req.MatchID, req.Value, req.Proof); err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
