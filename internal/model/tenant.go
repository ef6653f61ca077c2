// internal/model/tenant.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant は学習者アカウントを表します
type Tenant struct {
	TenantID  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	Name      string         `gorm:"not null;uniqueIndex" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // 論理削除用
}

func (Tenant) TableName() string {
	return "tenants"
}

// コンテキストキー
type contextKey string

// TenantIDKey は認証済みテナントIDをコンテキストへ格納するキー
const TenantIDKey contextKey = "tenant_id"

// テナント作成リクエストDTO
type PostTenantRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}
