package merchants

import (
	"time"

	"github.com/google/uuid"

	"github.com/davenolan/littleshop-backend/pkg/db/models"
)

// MerchantDTO exposes merchant data in API responses.
type MerchantDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateMerchantInput holds creation-time data for a new merchant.
type CreateMerchantInput struct {
	Name string
}

// UpdateMerchantInput captures the allowed merchant fields for mutation.
type UpdateMerchantInput struct {
	Name string
}

// FromModel maps the persisted merchant into a DTO.
func FromModel(m *models.Merchant) *MerchantDTO {
	if m == nil {
		return nil
	}
	return &MerchantDTO{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a merchant slice into DTOs, preserving order.
func FromModels(rows []models.Merchant) []MerchantDTO {
	out := make([]MerchantDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
