package model

import "time"

// SaleStatusResponse is the API response DTO for GET /api/sale/status.
// All timestamps are RFC 3339 UTC.
type SaleStatusResponse struct {
	Status         string    `json:"status"` // upcoming | active | ended
	StartsAt       time.Time `json:"startsAt"`
	EndsAt         time.Time `json:"endsAt"`
	RemainingStock int64     `json:"remainingStock"`
	TotalStock     int       `json:"totalStock"`
	ProductName    string    `json:"productName"`
	ProductPrice   float64   `json:"productPrice"`
	ServerTime     time.Time `json:"serverTime"`
}

// PurchaseRequest is the DTO for POST /api/sale/purchase
type PurchaseRequest struct {
	UserID string `json:"userId" validate:"required,notblank,max=255"`
}

// PurchaseSuccessResponse is returned when a purchase commits.
type PurchaseSuccessResponse struct {
	Success     bool   `json:"success"` // always true
	Message     string `json:"message"`
	PurchasedAt string `json:"purchasedAt"`
}

// PurchaseFailureResponse is returned for every rejected purchase attempt.
// PurchasedAt carries the original purchase instant when the reason is
// already_purchased and is omitted otherwise.
type PurchaseFailureResponse struct {
	Success     bool   `json:"success"` // always false
	Reason      string `json:"reason"`  // invalid_user_id | sale_not_active | already_purchased | out_of_stock
	Message     string `json:"message"`
	PurchasedAt string `json:"purchasedAt,omitempty"`
}

// UserStatusResponse is the API response DTO for GET /api/sale/purchase/:userId
type UserStatusResponse struct {
	HasPurchased bool   `json:"hasPurchased"`
	PurchasedAt  string `json:"purchasedAt,omitempty"`
}
