package collectors

import (
	"context"
	"net/http"
	"time"

	"labhive/db"
	"labhive/models"
	"labhive/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetRequestCounts returns the collector's request tally broken down by
// status, for the dashboard header.
func GetRequestCounts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	collectorID := ps.ByName("collectorId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{"collectorId": collectorID}},
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}
	cursor, err := db.RequestsCollection.Aggregate(ctx, pipeline)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "message": "Failed to count requests"})
		return
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "message": "Failed to count requests"})
		return
	}

	counts := utils.M{
		"total":                    int64(0),
		models.StatusPending:       int64(0),
		models.StatusAccepted:      int64(0),
		models.StatusRejected:      int64(0),
		models.StatusTestStarted:   int64(0),
		models.StatusTestCompleted: int64(0),
	}
	var total int64
	for _, row := range rows {
		counts[row.Status] = row.Count
		total += row.Count
	}
	counts["total"] = total

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "counts": counts})
}

// GetRecentRequests returns the collector's five newest requests.
func GetRecentRequests(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	collectorID := ps.ByName("collectorId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(5)
	cursor, err := db.RequestsCollection.Find(ctx, bson.M{"collectorId": collectorID}, opts)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "message": "Failed to fetch requests"})
		return
	}
	defer cursor.Close(ctx)

	requests := []models.BookingRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "message": "Failed to fetch requests"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "requests": requests})
}
