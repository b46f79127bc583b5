package users

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"labhive/db"
	"labhive/filemgr"
	"labhive/models"
	"labhive/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"id": userID}).Decode(&user); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "User not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "user": user})
}

// UpdateUser applies partial profile edits; empty fields keep their
// current value.
func UpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")

	var body struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Number          string `json:"number"`
		AlternateNumber string `json:"alternateNumber"`
		Note            string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": "Invalid payload"})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if body.Name != "" {
		set["name"] = body.Name
	}
	if body.Email != "" {
		set["email"] = body.Email
	}
	if body.Number != "" {
		set["number"] = body.Number
	}
	if body.AlternateNumber != "" {
		set["alternateNumber"] = body.AlternateNumber
	}
	if body.Note != "" {
		set["note"] = body.Note
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.User
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "User not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "User updated successfully",
		"user":    updated,
	})
}

func DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.UserCollection.DeleteOne(ctx, bson.M{"id": userID})
	if err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"error": "An error occurred while deleting the user"})
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"error": "User not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "User deleted successfully"})
}

// UpdateNotificationStatus toggles whether the user wants pushes.
func UpdateNotificationStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")

	var body struct {
		NotificationStatus bool `json:"notificationStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": "Invalid payload"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"id": userID},
		bson.M{"$set": bson.M{"notificationStatus": body.NotificationStatus, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.User
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "User not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "user": updated})
}

// UploadProfileImage stores a profile picture and records its path.
func UploadProfileImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "Unable to parse form"})
		return
	}
	file, header, err := r.FormFile("profileImage")
	if err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "No image uploaded"})
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}

	path, err := filemgr.SaveImageWithThumb(file, header)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"message": "Error during upload"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"id": userID},
		bson.M{"$set": bson.M{"profileImage": path, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.User
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"message": "User not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Image uploaded successfully",
		"user":    updated,
	})
}
