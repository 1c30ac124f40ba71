// Package api is the local control surface: a small HTTP API the UI drives
// to start and stop turns, manage the profile and voice, and read history.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
	"github.com/everhighit/coach-client/internal/identity"
	"github.com/everhighit/coach-client/internal/ws"
	"github.com/everhighit/coach-client/usecase"
)

// Handler carries the route dependencies.
type Handler struct {
	controller *usecase.TurnController
	prefs      repositories.VoicePreferences
	history    repositories.TurnRepository // may be nil
	identity   *identity.Client            // may be nil
	hub        *ws.Hub
	logger     *zap.Logger
}

// NewHandler builds the API handler.
func NewHandler(controller *usecase.TurnController, prefs repositories.VoicePreferences, history repositories.TurnRepository, idClient *identity.Client, hub *ws.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		controller: controller,
		prefs:      prefs,
		history:    history,
		identity:   idClient,
		hub:        hub,
		logger:     logger,
	}
}

// InitRoutes registers all routes on the echo instance.
func (h *Handler) InitRoutes(e *echo.Echo) {
	e.GET("/health", h.health)

	v1 := e.Group("/api/v1")

	v1.POST("/auth/signin", h.signIn)
	v1.POST("/auth/mfa/enroll", h.enrollMFA)
	v1.POST("/auth/mfa/verify", h.verifyMFA)

	v1.POST("/profile", h.setProfile)
	v1.GET("/profile", h.getProfile)
	v1.POST("/profile/resolve", h.resolveProfile)

	v1.GET("/settings/voice", h.getVoice)
	v1.PUT("/settings/voice", h.setVoice)

	v1.POST("/turn/start", h.startTurn)
	v1.POST("/turn/stop", h.stopTurn)
	v1.POST("/turn/replay", h.replayClip)
	v1.GET("/turn/last", h.lastTurn)

	v1.POST("/lesson/start", h.startLesson)
	v1.POST("/lesson/finish", h.finishLesson)

	v1.GET("/history", h.listHistory)

	e.GET("/ws", h.hub.Serve)
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "coach-client",
	})
}

func (h *Handler) signIn(c echo.Context) error {
	if h.identity == nil {
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error:   "identity_unavailable",
			Message: "No identity service is configured",
		})
	}

	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	tokens, err := h.identity.SignIn(c.Request().Context(), req.Email, req.Password)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, tokens)
	case errors.Is(err, identity.ErrMFARequired):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "mfa_required",
			Message: "Complete multi-factor verification to sign in",
		})
	default:
		h.logger.Warn("Sign-in failed", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "sign_in_failed",
			Message: "Invalid credentials",
		})
	}
}

func (h *Handler) enrollMFA(c echo.Context) error {
	if h.identity == nil {
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error:   "identity_unavailable",
			Message: "No identity service is configured",
		})
	}

	var req MFAEnrollRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	enrollment, err := h.identity.EnrollMFA(c.Request().Context(), req.AccessToken)
	if err != nil {
		h.logger.Warn("MFA enrollment failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "mfa_enroll_failed",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, enrollment)
}

func (h *Handler) verifyMFA(c echo.Context) error {
	if h.identity == nil {
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error:   "identity_unavailable",
			Message: "No identity service is configured",
		})
	}

	var req MFAVerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	ctx := c.Request().Context()
	challengeID, err := h.identity.ChallengeMFA(ctx, req.AccessToken, req.FactorID)
	if err != nil {
		h.logger.Warn("MFA challenge failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "mfa_challenge_failed",
			Message: err.Error(),
		})
	}

	tokens, err := h.identity.VerifyMFA(ctx, req.AccessToken, req.FactorID, challengeID, req.Code)
	if err != nil {
		var apiErr *identity.APIError
		if errors.As(err, &apiErr) && apiErr.Code == identity.CodeInvalidCode {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_code",
				Message: "The one-time code was not accepted",
			})
		}
		h.logger.Warn("MFA verification failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "mfa_verify_failed",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, tokens)
}

// resolveProfile loads the signed-in user's profile from the identity
// service and installs it on the controller.
func (h *Handler) resolveProfile(c echo.Context) error {
	if h.identity == nil {
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error:   "identity_unavailable",
			Message: "No identity service is configured",
		})
	}

	var req ResolveProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	session, err := identity.ParseSession(req.AccessToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: err.Error(),
		})
	}
	if !session.Valid() {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "session_expired",
			Message: "Sign in again to continue",
		})
	}

	profile, err := h.identity.Profile(c.Request().Context(), req.AccessToken, session.UserID)
	if err != nil {
		h.logger.Warn("Profile lookup failed",
			zap.String("user_id", session.UserID),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "profile_lookup_failed",
			Message: err.Error(),
		})
	}
	if err := h.controller.SetProfile(profile); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_profile",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) setProfile(c echo.Context) error {
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	profile := &entities.Profile{
		UserID:         req.UserID,
		NativeLanguage: req.NativeLanguage,
		TargetLanguage: req.TargetLanguage,
		DisplayName:    req.DisplayName,
	}
	if err := h.controller.SetProfile(profile); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_profile",
			Message: err.Error(),
		})
	}

	h.logger.Info("Profile set",
		zap.String("user_id", profile.UserID),
		zap.String("native", profile.NativeLanguage),
		zap.String("target", profile.TargetLanguage))

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) getProfile(c echo.Context) error {
	profile := h.controller.Profile()
	if profile == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "no_profile",
			Message: "Profile has not been set",
		})
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) getVoice(c echo.Context) error {
	voice, _ := h.prefs.Voice()
	return c.JSON(http.StatusOK, VoiceResponse{
		Voice:  voice,
		Voices: entities.Voices,
	})
}

func (h *Handler) setVoice(c echo.Context) error {
	var req VoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if err := h.prefs.SetVoice(req.Voice); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_voice",
			Message: err.Error(),
		})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) startTurn(c echo.Context) error {
	err := h.controller.StartTurn()
	switch {
	case err == nil:
		return c.NoContent(http.StatusAccepted)
	case errors.Is(err, domain.ErrNoProfile):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_profile",
			Message: "Set a profile before starting a turn",
		})
	case errors.Is(err, domain.ErrBusy):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "busy",
			Message: "A turn is already in progress",
		})
	default:
		var perm *domain.PermissionError
		if errors.As(err, &perm) {
			return c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "microphone_unavailable",
				Message: perm.Error(),
			})
		}
		h.logger.Error("Failed to start turn", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to start turn",
		})
	}
}

func (h *Handler) stopTurn(c echo.Context) error {
	h.controller.StopTurn()
	return c.NoContent(http.StatusAccepted)
}

func (h *Handler) replayClip(c echo.Context) error {
	var req ReplayRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	h.controller.Replay(c.Request().Context(), req.Label)
	return c.NoContent(http.StatusAccepted)
}

func (h *Handler) lastTurn(c echo.Context) error {
	turn := h.controller.LastResult()
	if turn == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "no_turn",
			Message: "No turn has completed yet",
		})
	}
	return c.JSON(http.StatusOK, NewTurnResponse(turn))
}

func (h *Handler) startLesson(c echo.Context) error {
	var req LessonStartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	state, err := h.controller.StartLesson(c.Request().Context(), req.Topic)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, state)
	case errors.Is(err, domain.ErrNoProfile):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_profile",
			Message: "Set a profile before starting a lesson",
		})
	case errors.Is(err, domain.ErrBusy):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "busy",
			Message: "A turn is already in progress",
		})
	case errors.Is(err, domain.ErrNoLessons):
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error:   "lessons_unavailable",
			Message: "No lesson service is configured",
		})
	default:
		h.logger.Error("Failed to start lesson", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "lesson_start_failed",
			Message: err.Error(),
		})
	}
}

func (h *Handler) finishLesson(c echo.Context) error {
	if err := h.controller.FinishLesson(c.Request().Context()); err != nil {
		h.logger.Warn("Failed to finish lesson", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "lesson_finish_failed",
			Message: err.Error(),
		})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listHistory(c echo.Context) error {
	if h.history == nil {
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error:   "history_unavailable",
			Message: "No history store is configured",
		})
	}
	profile := h.controller.Profile()
	if profile == nil {
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_profile",
			Message: "Set a profile before reading history",
		})
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	turns, err := h.history.ListRecent(c.Request().Context(), profile.UserID, limit)
	if err != nil {
		h.logger.Error("Failed to list history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to read history",
		})
	}

	out := make([]TurnResponse, 0, len(turns))
	for _, turn := range turns {
		out = append(out, NewTurnResponse(turn))
	}
	return c.JSON(http.StatusOK, out)
}
