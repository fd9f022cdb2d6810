package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davenolan/littleshop-backend/pkg/db/models"
)

// ItemDTO exposes catalog item data in API responses.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MerchantID  uuid.UUID       `json:"merchant_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateItemInput holds creation-time data for a new item.
type CreateItemInput struct {
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	MerchantID  uuid.UUID
}

// UpdateItemInput captures optional mutation values for an item.
type UpdateItemInput struct {
	Name        *string
	Description *string
	UnitPrice   *decimal.Decimal
	MerchantID  *uuid.UUID
}

// FromModel maps the persisted item into a DTO.
func FromModel(item *models.Item) *ItemDTO {
	if item == nil {
		return nil
	}
	return &ItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		UnitPrice:   item.UnitPrice,
		MerchantID:  item.MerchantID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// FromModels maps an item slice into DTOs, preserving order.
func FromModels(rows []models.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
