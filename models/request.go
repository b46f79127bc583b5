package models

import "time"

// Request status values. The literal strings (including the inconsistent
// capitalization of "Test Started" / "Test completed") are part of the
// stored-data contract and must not be normalized.
const (
	StatusPending       = "Pending"
	StatusAccepted      = "Accepted"
	StatusTestStarted   = "Test Started"
	StatusRejected      = "Rejected"
	StatusTestCompleted = "Test completed"
)

// BookingRequest is one offer to one collector. Each candidate in a
// dispatch run gets its own record; Rejected is terminal per record.
type BookingRequest struct {
	ID            string    `json:"id" bson:"id"`
	UserID        string    `json:"userId" bson:"userId"`
	TestIDs       []string  `json:"testids" bson:"testids"`
	Quantities    []int     `json:"quantities" bson:"quantities"`
	CollectorID   string    `json:"collectorId" bson:"collectorId"`
	Status        string    `json:"status" bson:"status"`
	PaymentMethod string    `json:"paymentMethod" bson:"paymentMethod"`
	TotalAmount   float64   `json:"totalAmount" bson:"totalAmount"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}
