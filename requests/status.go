package requests

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"labhive/db"
	"labhive/dispatch"
	"labhive/models"
	"labhive/mq"
	"labhive/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// allowedTransitions encodes the request state machine. Rejected and
// "Test completed" have no outgoing edges.
var allowedTransitions = map[string]map[string]bool{
	models.StatusPending: {
		models.StatusAccepted: true,
		models.StatusRejected: true,
	},
	models.StatusAccepted: {
		models.StatusTestStarted: true,
	},
	models.StatusTestStarted: {
		models.StatusTestCompleted: true,
	},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to string) bool {
	return allowedTransitions[from][to]
}

// transitionFilter pins the update to the status the transition was
// checked against, so a concurrent writer cannot slip an illegal edge in
// between the read and the write.
func transitionFilter(requestID, from string) bson.M {
	return bson.M{"id": requestID, "status": from}
}

// UpdateRequestStatus is the collector-facing workflow: it owns every
// transition after the engine has created the Pending record.
func UpdateRequestStatus(gw dispatch.NotificationGateway) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requestID := ps.ByName("requestId")

		var body struct {
			NewStatus string `json:"newStatus"`
			FCMToken  string `json:"fcmToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewStatus == "" {
			utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": "Missing required data"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var existing models.BookingRequest
		if err := db.RequestsCollection.FindOne(ctx, bson.M{"id": requestID}).Decode(&existing); err != nil {
			utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "Request not found"})
			return
		}

		if !CanTransition(existing.Status, body.NewStatus) {
			utils.RespondWithJSON(w, http.StatusConflict, utils.M{
				"success": false,
				"message": "Invalid status transition from " + existing.Status + " to " + body.NewStatus,
			})
			return
		}

		res := db.RequestsCollection.FindOneAndUpdate(ctx,
			transitionFilter(requestID, existing.Status),
			bson.M{"$set": bson.M{"status": body.NewStatus, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		var updated models.BookingRequest
		if err := res.Decode(&updated); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// a concurrent transition won the race since our read
				utils.RespondWithJSON(w, http.StatusConflict, utils.M{
					"success": false,
					"message": "Request status changed concurrently, please retry",
				})
				return
			}
			utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "message": "Error updating request status"})
			return
		}

		applySideEffects(ctx, gw, &updated, body.FCMToken)

		mq.Emit(ctx, mq.RequestEvent{
			RequestID:   updated.ID,
			UserID:      updated.UserID,
			CollectorID: updated.CollectorID,
			Status:      updated.Status,
		})

		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success":        true,
			"message":        "Request status updated successfully",
			"updatedRequest": updated,
		})
	}
}

// applySideEffects mirrors each transition onto the user and collector
// records and notifies the requester where the workflow calls for it.
// Notification failures here are logged, not surfaced: the transition is
// already committed.
func applySideEffects(ctx context.Context, gw dispatch.NotificationGateway, req *models.BookingRequest, fcmToken string) {
	switch req.Status {
	case models.StatusAccepted:
		_, err := db.UserCollection.UpdateOne(ctx,
			bson.M{"id": req.UserID},
			bson.M{"$set": bson.M{"isBooked": true, "updatedAt": time.Now()}},
		)
		if err != nil {
			log.Printf("mark user %s booked: %v", req.UserID, err)
		}
		_, err = db.CollectorCollection.UpdateOne(ctx,
			bson.M{"id": req.CollectorID},
			bson.M{"$set": bson.M{"isWorking": true, "testRunning": req.ID, "updatedAt": time.Now()}},
		)
		if err != nil {
			log.Printf("mark collector %s working: %v", req.CollectorID, err)
		}

	case models.StatusTestStarted:
		notifyRequester(ctx, gw, req.UserID, fcmToken, "Test Started", "Your test has been started!")

	case models.StatusTestCompleted:
		_, err := db.CollectorCollection.UpdateOne(ctx,
			bson.M{"id": req.CollectorID},
			bson.M{
				"$set":   bson.M{"isWorking": false, "updatedAt": time.Now()},
				"$unset": bson.M{"testRunning": ""},
			},
		)
		if err != nil {
			log.Printf("clear collector %s working flag: %v", req.CollectorID, err)
		}
		notifyRequester(ctx, gw, req.UserID, fcmToken, "Test Completed", "Your test has been completed successfully!")
	}
}

func notifyRequester(ctx context.Context, gw dispatch.NotificationGateway, userID, token, title, body string) {
	if token == "" {
		var user models.User
		if err := db.UserCollection.FindOne(ctx, bson.M{"id": userID}).Decode(&user); err == nil {
			token = user.FCMToken
		}
	}
	if token == "" {
		return
	}
	if err := gw.Send(ctx, token, title, body); err != nil {
		log.Printf("notify user %s: %v", userID, err)
	}
}
