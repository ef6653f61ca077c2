// internal/handlers/progress_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"hanzi_keep/internal/model"
	"hanzi_keep/internal/service"
	"hanzi_keep/internal/webutil"
)

type ProgressHandler struct {
	service service.ProgressService
	logger  *slog.Logger
}

func NewProgressHandler(s service.ProgressService, logger *slog.Logger) *ProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		service: s,
		logger:  logger,
	}
}

// GetDueSummary は復習期限を迎えた単語の数を単語帳ごとに取得するためのハンドラ
func (h *ProgressHandler) GetDueSummary(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetDueSummary"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	summaries, err := h.service.GetDueSummary(r.Context(), tenantID)
	if err != nil {
		logger.Error("Error getting due summary in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if summaries == nil {
		summaries = []model.DueSetSummary{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, summaries)
}

// GetMastery は習熟度の分布を取得するためのハンドラ
func (h *ProgressHandler) GetMastery(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMastery"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	dist, err := h.service.GetMasteryDistribution(r.Context(), tenantID)
	if err != nil {
		logger.Error("Error getting mastery distribution in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, dist)
}

// GetRecords は直近のセッション履歴を取得するためのハンドラ
func (h *ProgressHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetRecords"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	records, err := h.service.GetRecentRecords(r.Context(), tenantID)
	if err != nil {
		logger.Error("Error getting records in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if records == nil {
		records = []*model.SessionRecord{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, records)
}

// PostReview は単語1件の復習結果を記録するためのハンドラ
func (h *ProgressHandler) PostReview(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostReview"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	setID, ok := parseURLParamUUID(w, r, logger, "set_id")
	if !ok {
		return
	}
	itemID, ok := parseURLParamUUID(w, r, logger, "item_id")
	if !ok {
		return
	}

	var req model.SubmitReviewRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	item, err := h.service.SubmitReview(r.Context(), tenantID, setID, itemID, *req.IsCorrect)
	if err != nil {
		logger.Error("Error submitting review in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Review submitted", slog.String("item_id", itemID.String()), slog.Int("srs_level", item.SrsLevel))
	webutil.RespondWithJSON(w, http.StatusOK, item)
}
