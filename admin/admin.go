package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"labhive/db"
	"labhive/models"
	"labhive/push"
	"labhive/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VerifyCollector sets a collector's verification status. Only accepted
// collectors are offered work.
func VerifyCollector(gw *push.Gateway) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		collectorID := ps.ByName("collectorId")

		var body struct {
			VerificationStatus string `json:"verificationStatus"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		switch body.VerificationStatus {
		case models.VerificationAccepted, models.VerificationRejected, models.VerificationPending:
		default:
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid verification status")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		res := db.CollectorCollection.FindOneAndUpdate(ctx,
			bson.M{"id": collectorID},
			bson.M{"$set": bson.M{"verificationStatus": body.VerificationStatus, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		var updated models.Collector
		if err := res.Decode(&updated); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "Collector not found")
			return
		}

		if updated.FCMToken != "" {
			msg := "Your account verification is " + body.VerificationStatus
			if body.VerificationStatus == models.VerificationAccepted {
				msg = "Your account has been verified. You can now receive requests."
			}
			// best effort; verification stands even if the push fails
			_ = gw.Send(ctx, updated.FCMToken, "Account Verification", msg)
		}

		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success":   true,
			"message":   "Verification status updated",
			"collector": updated,
		})
	}
}

// ListUsers returns all registered users, newest first.
func ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.UserCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "users": users})
}

// ListCollectors returns all collectors, optionally filtered by
// ?verificationStatus=.
func ListCollectors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if status := r.URL.Query().Get("verificationStatus"); status != "" {
		filter["verificationStatus"] = status
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.CollectorCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch collectors")
		return
	}
	defer cursor.Close(ctx)

	collectors := []models.Collector{}
	if err := cursor.All(ctx, &collectors); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch collectors")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "collectors": collectors})
}

// BroadcastNotification pushes an announcement to a recipient group.
func BroadcastNotification(b *push.Broadcaster) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var body struct {
			Group string `json:"group"`
			Title string `json:"title"`
			Body  string `json:"body"`
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" || body.Body == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Title and body are required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		group := push.RecipientGroup(body.Group)
		if err := b.Broadcast(ctx, group, body.Title, body.Body, body.Token); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Notification sent"})
	}
}
