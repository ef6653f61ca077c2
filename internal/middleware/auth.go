// internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"

	"hanzi_keep/internal/model"
	"hanzi_keep/internal/webutil"

	"github.com/google/uuid"
)

// TenantAuthenticator はテナントIDの実在検証を行うインターフェース
type TenantAuthenticator interface {
	AuthenticateTenant(ctx context.Context, tenantID uuid.UUID) error
}

// TenantAuthMiddleware は X-Tenant-ID ヘッダーを検証し、認証済みテナントIDを
// コンテキストへ設定するミドルウェアです。身元確認（ログイン等）は外部の
// 協調コンポーネントの責務で、ここではテナントの実在確認のみを行う。
func TenantAuthMiddleware(authenticator TenantAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			tenantIDStr := r.Header.Get("X-Tenant-ID")
			if tenantIDStr == "" {
				logger.Warn("Tenant auth failed: X-Tenant-ID header missing")
				appErr := model.NewAppError("UNAUTHORIZED", "X-Tenant-IDヘッダーが必要です。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}

			tenantID, err := uuid.Parse(tenantIDStr)
			if err != nil {
				logger.Warn("Tenant auth failed: Invalid X-Tenant-ID format", "tenant_id", tenantIDStr)
				appErr := model.NewAppError("UNAUTHORIZED", "X-Tenant-IDの形式が正しくありません。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}

			if err := authenticator.AuthenticateTenant(r.Context(), tenantID); err != nil {
				logger.Warn("Tenant auth failed: Tenant not found", "tenant_id", tenantID, "error", err)
				appErr := model.NewAppError("UNAUTHORIZED", "テナントが見つかりません。", "", model.ErrTenantNotFound)
				webutil.HandleError(w, logger, appErr)
				return
			}

			ctx := context.WithValue(r.Context(), model.TenantIDKey, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenantIDFromContext はコンテキストから認証済みテナントIDを取得します
func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, error) {
	value, ok := ctx.Value(model.TenantIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからテナント情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return value, nil
}
