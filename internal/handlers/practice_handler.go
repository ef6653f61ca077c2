// internal/handlers/practice_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"hanzi_keep/internal/model"
	"hanzi_keep/internal/service"
	"hanzi_keep/internal/webutil"
)

type PracticeHandler struct {
	service service.PracticeService
	logger  *slog.Logger
}

func NewPracticeHandler(s service.PracticeService, logger *slog.Logger) *PracticeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PracticeHandler{
		service: s,
		logger:  logger,
	}
}

// PostSession は練習セッションを開始するためのハンドラ
func (h *PracticeHandler) PostSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostSession"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	var req model.StartSessionRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	resp, err := h.service.StartSession(r.Context(), tenantID, &req)
	if err != nil {
		logger.Error("Error starting session in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Session started", slog.String("session_id", resp.SessionID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, resp)
}

// PostAnswer は現在の問題へ回答を送信するためのハンドラ
func (h *PracticeHandler) PostAnswer(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostAnswer"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	sessionID, ok := parseURLParamUUID(w, r, logger, "session_id")
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), tenantID, sessionID, req.Answer)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// PostAdvance は次の問題へ進むためのハンドラ
func (h *PracticeHandler) PostAdvance(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostAdvance"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	sessionID, ok := parseURLParamUUID(w, r, logger, "session_id")
	if !ok {
		return
	}

	resp, err := h.service.Advance(r.Context(), tenantID, sessionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// GetSession はセッションの現在状態を取得するためのハンドラ。
// 時間制セッションの満了検知に使う。
func (h *PracticeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetSession"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	sessionID, ok := parseURLParamUUID(w, r, logger, "session_id")
	if !ok {
		return
	}

	resp, err := h.service.GetSessionState(r.Context(), tenantID, sessionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// DeleteSession はセッションを中断するためのハンドラ
func (h *PracticeHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteSession"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	sessionID, ok := parseURLParamUUID(w, r, logger, "session_id")
	if !ok {
		return
	}

	if err := h.service.CancelSession(r.Context(), tenantID, sessionID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostMixed はミックスセッションを開始（再開始）するためのハンドラ
func (h *PracticeHandler) PostMixed(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostMixed"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	resp, err := h.service.StartMixed(r.Context(), tenantID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusCreated, resp)
}

// GetMixed はミックスセッションの現在状態を取得するためのハンドラ
func (h *PracticeHandler) GetMixed(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMixed"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	resp, err := h.service.GetMixedState(r.Context(), tenantID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// PostMixedComplete は現在モードの完了を通知するためのハンドラ
func (h *PracticeHandler) PostMixedComplete(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostMixedComplete"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	resp, err := h.service.CompleteMixedMode(r.Context(), tenantID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// PostMixedAdvance はクールダウンを待たず次のモードへ進むためのハンドラ
func (h *PracticeHandler) PostMixedAdvance(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostMixedAdvance"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	resp, err := h.service.AdvanceMixed(r.Context(), tenantID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}
