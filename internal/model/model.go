// Package model defines domain entities shared by the client and the inventory service.
package model

import "time"

// Medicine is a single inventory record owned by the server.
type Medicine struct {
	ID         int64     `json:"id"`         // server-assigned
	Name       string    `json:"name"`       // non-empty
	Quantity   int       `json:"quantity"`   // >= 0 once validated
	ExpiryDate Date      `json:"expiryDate"` // calendar date, YYYY-MM-DD on the wire
	AddedDate  time.Time `json:"addedDate"`  // server-assigned
	UserID     int64     `json:"userId"`     // owner scope, not an auth principal
}

// MedicineInput is the write body for create and update requests.
type MedicineInput struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	ExpiryDate Date   `json:"expiryDate"`
	UserID     int64  `json:"userId"`
}

// Input returns the writable fields of m.
func (m Medicine) Input() MedicineInput {
	return MedicineInput{Name: m.Name, Quantity: m.Quantity, ExpiryDate: m.ExpiryDate, UserID: m.UserID}
}
