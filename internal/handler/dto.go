package handler

import (
	"github.com/msomdec/inventory/internal/domain"
)

// ItemDTO is the JSON representation of an item.
type ItemDTO struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func toItemDTO(it domain.Item) ItemDTO {
	return ItemDTO{ID: it.ID, Name: it.Name, Price: it.Price, Quantity: it.Quantity}
}

func toItemDTOs(items []domain.Item) []ItemDTO {
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos
}

// ItemRequest is the body of create and update requests.
type ItemRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// RestockRequest is the body of a restock request.
type RestockRequest struct {
	Count int `json:"count"`
}

// SummaryDTO is the JSON representation of an inventory summary.
type SummaryDTO struct {
	Items      int     `json:"items"`
	Units      int     `json:"units"`
	TotalValue float64 `json:"totalValue"`
}

// TokenRequest is the body of a token request.
type TokenRequest struct {
	Password string `json:"password"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}
