// internal/handlers/set_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"hanzi_keep/internal/middleware"
	"hanzi_keep/internal/model"
	"hanzi_keep/internal/service"
	"hanzi_keep/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type SetHandler struct {
	service service.SetService
	logger  *slog.Logger
}

func NewSetHandler(s service.SetService, logger *slog.Logger) *SetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SetHandler{
		service: s,
		logger:  logger,
	}
}

// requireTenant は認証済みテナントIDを取り出します。失敗時はレスポンス済み。
func requireTenant(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	tenantID, err := middleware.GetTenantIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return uuid.Nil, false
	}
	return tenantID, true
}

// parseURLParamUUID はURLパラメータをUUIDとして取り出します。失敗時はレスポンス済み。
func parseURLParamUUID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid ID format in URL", slog.String("param", name), slog.String("value", raw))
		appErr := model.NewAppError("INVALID_URL_PARAM", name+"の形式が正しくありません。", name, model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate はJSONボディのデコードとバリデーションを行います。失敗時はレスポンス済み。
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst interface{}) bool {
	if err := webutil.DecodeJSONBody(r, dst); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return false
	}

	if err := webutil.Validator.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed", slog.Any("errors", validationErrors.Error()))
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
		} else {
			logger.Error("Unexpected error during validation", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
		}
		return false
	}
	return true
}

// PostSet は新しい単語帳を作成するためのハンドラ
func (h *SetHandler) PostSet(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostSet"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	var req model.PostSetRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	set, err := h.service.CreateSet(r.Context(), tenantID, &req)
	if err != nil {
		logger.Error("Error creating set in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Set created successfully", slog.String("set_id", set.SetID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, set)
}

// GetSets は単語帳の一覧を取得するためのハンドラ
func (h *SetHandler) GetSets(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetSets"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	sets, err := h.service.ListSets(r.Context(), tenantID)
	if err != nil {
		logger.Error("Error listing sets in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if sets == nil {
		sets = []*model.VocabSet{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, sets)
}

// GetSet は特定の単語帳を取得するためのハンドラ
func (h *SetHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetSet"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	setID, ok := parseURLParamUUID(w, r, logger, "set_id")
	if !ok {
		return
	}

	set, err := h.service.GetSet(r.Context(), tenantID, setID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, set)
}

// PatchSet は単語帳の属性を部分更新するためのハンドラ
func (h *SetHandler) PatchSet(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchSet"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	setID, ok := parseURLParamUUID(w, r, logger, "set_id")
	if !ok {
		return
	}

	var req model.PatchSetRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	set, err := h.service.PatchSet(r.Context(), tenantID, setID, &req)
	if err != nil {
		logger.Error("Error patching set in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, set)
}

// DeleteSet は単語帳を削除するためのハンドラ
func (h *SetHandler) DeleteSet(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteSet"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	setID, ok := parseURLParamUUID(w, r, logger, "set_id")
	if !ok {
		return
	}

	if err := h.service.DeleteSet(r.Context(), tenantID, setID); err != nil {
		logger.Error("Error deleting set in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Set deleted successfully", slog.String("set_id", setID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// PostItem は単語帳へ単語を追加するためのハンドラ
func (h *SetHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostItem"))

	tenantID, ok := requireTenant(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	setID, ok := parseURLParamUUID(w, r, logger, "set_id")
	if !ok {
		return
	}

	var req model.PostItemRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	item, err := h.service.AddItem(r.Context(), tenantID, setID, &req)
	if err != nil {
		logger.Error("Error adding item in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Item added successfully", slog.String("item_id", item.ItemID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, item)
}

// PatchItem は単語の属性を部分更新するためのハンドラ
func (h *SetHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchItem"))

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

	var req model.PatchItemRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	item, err := h.service.PatchItem(r.Context(), tenantID, setID, itemID, &req)
	if err != nil {
		logger.Error("Error patching item in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, item)
}

// DeleteItem は単語を削除するためのハンドラ
func (h *SetHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteItem"))

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

	if err := h.service.DeleteItem(r.Context(), tenantID, setID, itemID); err != nil {
		logger.Error("Error deleting item in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
