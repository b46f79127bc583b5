package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"labhive/db"
	"labhive/dispatch"
	"labhive/models"
	"labhive/rdx"
	"labhive/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

const otpTTL = 10 * time.Minute

// SignupUser starts phone-based registration: an OTP is pushed to the
// device and its bcrypt hash parked in Redis until verification.
func SignupUser(gw dispatch.NotificationGateway) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var body struct {
			Number   string `json:"number"`
			FCMToken string `json:"fcmToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Number == "" || body.FCMToken == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Number and FCM token are required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		count, err := db.UserCollection.CountDocuments(ctx, bson.M{"number": body.Number})
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if count > 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "User already registered!")
			return
		}

		otp := utils.GenerateRandomDigitString(6)
		hashed, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if err := rdx.SetWithExpiry("otp:"+body.Number, string(hashed), otpTTL); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store OTP")
			return
		}
		// stash the device token so verification can attach it to the user
		_ = rdx.SetWithExpiry("otp:fcm:"+body.Number, body.FCMToken, otpTTL)

		if err := gw.Send(ctx, body.FCMToken, "Verification OTP", otp); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send OTP")
			return
		}

		utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "OTP sent successfully!"})
	}
}

// VerifyOTP completes registration: on a matching OTP the user record is
// created and a JWT issued.
func VerifyOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Number string `json:"number"`
		OTP    string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Number == "" || body.OTP == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Number and OTP are required")
		return
	}

	hashed, err := rdx.RdxGet("otp:" + body.Number)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Expired or Invalid OTP!")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(body.OTP)) != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid OTP!")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := db.UserCollection.CountDocuments(ctx, bson.M{"number": body.Number})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "User already registered!")
		return
	}

	fcmToken, _ := rdx.RdxGet("otp:fcm:" + body.Number)

	now := time.Now()
	user := models.User{
		ID:                 utils.GetUUID(),
		Number:             body.Number,
		FCMToken:           fcmToken,
		NotificationStatus: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := db.UserCollection.InsertOne(ctx, user); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	token, err := generateToken(user.ID, "user")
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	rdx.RdxDel("otp:" + body.Number)
	rdx.RdxDel("otp:fcm:" + body.Number)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "User Registration Successful!",
		"token":   token,
		"data":    user,
	})
}
