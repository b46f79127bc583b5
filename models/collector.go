package models

import "time"

// GeoPoint is a GeoJSON point: coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// Collector verification states.
const (
	VerificationPending  = "Pending"
	VerificationAccepted = "Accepted"
	VerificationRejected = "Rejected"
)

type Collector struct {
	ID                 string    `json:"id" bson:"id"`
	FullName           string    `json:"fullName" bson:"fullName"`
	CompanyName        string    `json:"companyName,omitempty" bson:"companyName,omitempty"`
	PhoneNumber        string    `json:"phoneNumber" bson:"phoneNumber"`
	Email              string    `json:"email" bson:"email"`
	Address            string    `json:"address,omitempty" bson:"address,omitempty"`
	Password           string    `json:"-" bson:"password"`
	Gender             string    `json:"gender,omitempty" bson:"gender,omitempty"`
	SelectedTests      []string  `json:"selectedTests" bson:"selectedTests"`
	YearOfExperience   int       `json:"yearOfExperience,omitempty" bson:"yearOfExperience,omitempty"`
	ProfileImage       string    `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	Certificates       []string  `json:"certificates,omitempty" bson:"certificates,omitempty"`
	Location           *GeoPoint `json:"location,omitempty" bson:"location,omitempty"`
	Note               string    `json:"note,omitempty" bson:"note,omitempty"`
	IsOnline           bool      `json:"isOnline" bson:"isOnline"`
	IsWorking          bool      `json:"isWorking" bson:"isWorking"`
	TestRunning        string    `json:"testRunning,omitempty" bson:"testRunning,omitempty"`
	VerificationStatus string    `json:"verificationStatus" bson:"verificationStatus"`
	FCMToken           string    `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updatedAt"`
}
