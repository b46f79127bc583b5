package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"labhive/db"
	"labhive/models"
	"labhive/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

type collectorSignupPayload struct {
	FullName         string   `json:"fullName"`
	CompanyName      string   `json:"companyName"`
	PhoneNumber      string   `json:"phoneNumber"`
	Email            string   `json:"email"`
	Address          string   `json:"address"`
	Password         string   `json:"password"`
	Gender           string   `json:"gender"`
	SelectedTests    []string `json:"selectedTests"`
	YearOfExperience int      `json:"yearOfExperience"`
	FCMToken         string   `json:"fcmToken"`
}

// SignupCollector registers a collector account. Verification starts
// Pending; an admin flips it before the collector appears in dispatch.
func SignupCollector(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var p collectorSignupPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if p.Email == "" || p.Password == "" || p.FullName == "" || len(p.SelectedTests) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := db.CollectorCollection.CountDocuments(ctx, bson.M{"email": p.Email})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Collector already registered!")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	now := time.Now()
	collector := models.Collector{
		ID:                 utils.GetUUID(),
		FullName:           p.FullName,
		CompanyName:        p.CompanyName,
		PhoneNumber:        p.PhoneNumber,
		Email:              p.Email,
		Address:            p.Address,
		Password:           string(hashed),
		Gender:             p.Gender,
		SelectedTests:      p.SelectedTests,
		YearOfExperience:   p.YearOfExperience,
		FCMToken:           p.FCMToken,
		VerificationStatus: models.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := db.CollectorCollection.InsertOne(ctx, collector); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	token, err := generateToken(collector.ID, "collector")
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message":   "Collector Registration Successful!",
		"token":     token,
		"collector": collector,
	})
}

// LoginCollector authenticates by email and password.
func LoginCollector(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var collector models.Collector
	if err := db.CollectorCollection.FindOne(ctx, bson.M{"email": body.Email}).Decode(&collector); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(collector.Password), []byte(body.Password)) != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := generateToken(collector.ID, "collector")
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":   "Login successful",
		"token":     token,
		"collector": collector,
	})
}

// LoginAdmin authenticates an admin account.
func LoginAdmin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var admin models.Admin
	if err := db.AdminCollection.FindOne(ctx, bson.M{"email": body.Email}).Decode(&admin); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(body.Password)) != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := generateToken(admin.ID, "admin")
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Login successful",
		"token":   token,
	})
}
