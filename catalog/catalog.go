package catalog

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

// CreateTest adds a lab test to the catalog.
func CreateTest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		TestName string  `json:"testName"`
		Price    float64 `json:"price"`
		TestCode string  `json:"testCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TestName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Test name is required")
		return
	}
	if body.Price <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Price must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := db.TestsCollection.CountDocuments(ctx, bson.M{"testName": body.TestName})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Test already exists")
		return
	}

	test := models.LabTest{
		ID:       utils.GetUUID(),
		TestName: body.TestName,
		Price:    body.Price,
		TestCode: body.TestCode,
	}
	if _, err := db.TestsCollection.InsertOne(ctx, test); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success": true,
		"message": "Test created successfully",
		"test":    test,
	})
}

// UpdateTest changes a test's name, price, or code.
func UpdateTest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	testID := ps.ByName("testId")

	var body struct {
		TestName string  `json:"testName"`
		Price    float64 `json:"price"`
		TestCode string  `json:"testCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	set := bson.M{}
	if body.TestName != "" {
		set["testName"] = body.TestName
	}
	if body.Price > 0 {
		set["price"] = body.Price
	}
	if body.TestCode != "" {
		set["testCode"] = body.TestCode
	}
	if len(set) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.TestsCollection.FindOneAndUpdate(ctx,
		bson.M{"id": testID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.LabTest
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Test not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Test updated successfully",
		"test":    updated,
	})
}

// DeleteTest removes a test from the catalog. Existing requests keep
// their snapshotted totals, so past bookings are unaffected.
func DeleteTest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	testID := ps.ByName("testId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.TestsCollection.DeleteOne(ctx, bson.M{"id": testID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "An error occurred while deleting the test")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Test not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Test deleted successfully"})
}

// ListTests returns the full catalog, sorted by name.
func ListTests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.TestsCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"testName": 1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch tests")
		return
	}
	defer cursor.Close(ctx)

	tests := []models.LabTest{}
	if err := cursor.All(ctx, &tests); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch tests")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "tests": tests})
}
