package requests

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

// CheckRequestStatus is the poll endpoint: a request snapshot by id.
func CheckRequestStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := ps.ByName("requestId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req models.BookingRequest
	if err := db.RequestsCollection.FindOne(ctx, bson.M{"id": requestID}).Decode(&req); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "Request not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "request": req})
}

func findByStatus(w http.ResponseWriter, r *http.Request, status, key string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.RequestsCollection.Find(ctx, bson.M{"status": status})
	if err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "message": "Failed to fetch requests"})
		return
	}
	defer cur.Close(ctx)

	reqs := []models.BookingRequest{}
	for cur.Next(ctx) {
		var req models.BookingRequest
		if err := cur.Decode(&req); err != nil {
			continue
		}
		reqs = append(reqs, req)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, key: reqs})
}

func FindPendingRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	findByStatus(w, r, models.StatusPending, "pendingRequests")
}

func FindAcceptedRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	findByStatus(w, r, models.StatusAccepted, "acceptedRequests")
}

func FindRejectedRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	findByStatus(w, r, models.StatusRejected, "rejectedRequests")
}

// GetAllRequests returns every request joined with test, user, and
// collector display names.
func GetAllRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cur, err := db.RequestsCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "message": "Failed to fetch all requests"})
		return
	}
	defer cur.Close(ctx)

	var reqs []models.BookingRequest
	testIDSet := map[string]bool{}
	userIDSet := map[string]bool{}
	collectorIDSet := map[string]bool{}
	for cur.Next(ctx) {
		var req models.BookingRequest
		if err := cur.Decode(&req); err != nil {
			continue
		}
		reqs = append(reqs, req)
		for _, id := range req.TestIDs {
			testIDSet[id] = true
		}
		userIDSet[req.UserID] = true
		collectorIDSet[req.CollectorID] = true
	}

	testNames := lookupNames(ctx, "tests", testIDSet)
	userNames := lookupNames(ctx, "users", userIDSet)
	collectorNames := lookupNames(ctx, "collectors", collectorIDSet)

	type requestWithDetails struct {
		models.BookingRequest
		TestNames     []string `json:"testNames"`
		UserName      string   `json:"userName"`
		CollectorName string   `json:"collectorName"`
	}

	details := make([]requestWithDetails, 0, len(reqs))
	for _, req := range reqs {
		names := make([]string, 0, len(req.TestIDs))
		for _, id := range req.TestIDs {
			names = append(names, testNames[id])
		}
		details = append(details, requestWithDetails{
			BookingRequest: req,
			TestNames:      names,
			UserName:       userNames[req.UserID],
			CollectorName:  collectorNames[req.CollectorID],
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "requestsWithDetails": details})
}

// lookupNames batch-resolves ids to display names for one collection.
func lookupNames(ctx context.Context, collection string, idSet map[string]bool) map[string]string {
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	var coll = db.TestsCollection
	var nameField string
	switch collection {
	case "tests":
		nameField = "testName"
	case "users":
		coll = db.UserCollection
		nameField = "name"
	case "collectors":
		coll = db.CollectorCollection
		nameField = "fullName"
	}

	cur, err := coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return names
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		id, _ := doc["id"].(string)
		name, _ := doc[nameField].(string)
		names[id] = name
	}
	return names
}

// UpdatePaymentMethod changes the payment method on an existing request.
func UpdatePaymentMethod(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := ps.ByName("requestId")

	var body struct {
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PaymentMethod == "" {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": "Missing payment method"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.RequestsCollection.FindOneAndUpdate(ctx,
		bson.M{"id": requestID},
		bson.M{"$set": bson.M{"paymentMethod": body.PaymentMethod, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.BookingRequest
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "Request not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Payment method updated successfully",
		"request": updated,
	})
}

// DeleteRequest removes a request record. Administrative operation; it is
// not coordinated with a dispatch run that may still reference the id.
func DeleteRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := ps.ByName("requestId")
	if requestID == "" {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": "Request ID is missing"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.RequestsCollection.DeleteOne(ctx, bson.M{"id": requestID})
	if err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "message": "Error deleting request"})
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "Request not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Request deleted successfully"})
}
