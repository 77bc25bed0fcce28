package models

import "github.com/shopspring/decimal"

// Indumentaria is a stock row of workshop equipment/apparel.
type Indumentaria struct {
	ID       string          `json:"id"`
	TallerID string          `json:"taller_id"`
	Articulo string          `json:"articulo"`
	Talle    string          `json:"talle"`
	Precio   decimal.Decimal `json:"precio"`
	Stock    int             `json:"stock"`
}
