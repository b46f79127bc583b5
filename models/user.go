package models

import "time"

type User struct {
	ID                 string    `json:"id" bson:"id"`
	Name               string    `json:"name,omitempty" bson:"name,omitempty"`
	Email              string    `json:"email,omitempty" bson:"email,omitempty"`
	Number             string    `json:"number" bson:"number"`
	AlternateNumber    string    `json:"alternateNumber,omitempty" bson:"alternateNumber,omitempty"`
	Note               string    `json:"note,omitempty" bson:"note,omitempty"`
	ProfileImage       string    `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	IsBooked           bool      `json:"isBooked" bson:"isBooked"`
	FCMToken           string    `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	NotificationStatus bool      `json:"notificationStatus" bson:"notificationStatus"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Admin struct {
	ID       string `json:"id" bson:"id"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"-" bson:"password"`
}
