package collectors

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

func GetCollector(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	collectorID := ps.ByName("collectorId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var collector models.Collector
	if err := db.CollectorCollection.FindOne(ctx, bson.M{"id": collectorID}).Decode(&collector); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "Collector not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "collector": collector})
}

// UpdateCollector applies partial profile edits.
func UpdateCollector(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	collectorID := ps.ByName("collectorId")

	var body struct {
		FullName         string   `json:"fullName"`
		CompanyName      string   `json:"companyName"`
		PhoneNumber      string   `json:"phoneNumber"`
		Address          string   `json:"address"`
		Gender           string   `json:"gender"`
		SelectedTests    []string `json:"selectedTests"`
		YearOfExperience int      `json:"yearOfExperience"`
		Note             string   `json:"note"`
		FCMToken         string   `json:"fcmToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": "Invalid payload"})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if body.FullName != "" {
		set["fullName"] = body.FullName
	}
	if body.CompanyName != "" {
		set["companyName"] = body.CompanyName
	}
	if body.PhoneNumber != "" {
		set["phoneNumber"] = body.PhoneNumber
	}
	if body.Address != "" {
		set["address"] = body.Address
	}
	if body.Gender != "" {
		set["gender"] = body.Gender
	}
	if len(body.SelectedTests) > 0 {
		set["selectedTests"] = body.SelectedTests
	}
	if body.YearOfExperience > 0 {
		set["yearOfExperience"] = body.YearOfExperience
	}
	if body.Note != "" {
		set["note"] = body.Note
	}
	if body.FCMToken != "" {
		set["fcmToken"] = body.FCMToken
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.CollectorCollection.FindOneAndUpdate(ctx,
		bson.M{"id": collectorID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Collector
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "Collector not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":   true,
		"message":   "Collector updated successfully",
		"collector": updated,
	})
}

func DeleteCollector(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	collectorID := ps.ByName("collectorId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.CollectorCollection.DeleteOne(ctx, bson.M{"id": collectorID})
	if err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"error": "An error occurred while deleting the collector"})
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"error": "Collector not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Collector deleted successfully"})
}

// UpdateLocation stores the collector's position as a GeoJSON point so
// the 2dsphere index can serve nearby lookups.
func UpdateLocation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	collectorID := ps.ByName("collectorId")

	var body struct {
		Longitude float64 `json:"longitude"`
		Latitude  float64 `json:"latitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": "Invalid payload"})
		return
	}
	if body.Longitude < -180 || body.Longitude > 180 || body.Latitude < -90 || body.Latitude > 90 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": "Invalid coordinates"})
		return
	}

	loc := models.GeoPoint{
		Type:        "Point",
		Coordinates: []float64{body.Longitude, body.Latitude},
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.CollectorCollection.FindOneAndUpdate(ctx,
		bson.M{"id": collectorID},
		bson.M{"$set": bson.M{"location": loc, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Collector
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "Collector not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "collector": updated})
}

// UpdateOnlineStatus flips availability. Offline collectors are never
// offered work.
func UpdateOnlineStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	collectorID := ps.ByName("collectorId")

	var body struct {
		IsOnline bool `json:"isOnline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": "Invalid payload"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.CollectorCollection.FindOneAndUpdate(ctx,
		bson.M{"id": collectorID},
		bson.M{"$set": bson.M{"isOnline": body.IsOnline, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Collector
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "Collector not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "collector": updated})
}
