package dispatch

import (
	"context"
	"time"

	"labhive/db"
	"labhive/models"

	"go.mongodb.org/mongo-driver/bson"
)

// MongoDirectory answers proximity queries with a $geoNear aggregation
// over the collectors 2dsphere index. $geoNear output is already sorted
// by ascending distance.
type MongoDirectory struct{}

func (MongoDirectory) FindNearby(ctx context.Context, pt Point, radiusMeters float64, testIDs []string) ([]Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{
			"$geoNear": bson.M{
				"near": bson.M{
					"type":        "Point",
					"coordinates": []float64{pt.Longitude, pt.Latitude},
				},
				"distanceField": "distance",
				"spherical":     true,
				"maxDistance":   radiusMeters,
				"query": bson.M{
					"isOnline":      true,
					"isWorking":     false,
					"selectedTests": bson.M{"$all": testIDs},
				},
			},
		},
	}

	cur, err := db.CollectorCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var candidates []Candidate
	for cur.Next(ctx) {
		var c Candidate
		if err := cur.Decode(&c); err != nil {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, cur.Err()
}

// MongoRequestStore persists booking requests in the requests collection.
type MongoRequestStore struct{}

func (MongoRequestStore) Create(ctx context.Context, req *models.BookingRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.RequestsCollection.InsertOne(ctx, req)
	return err
}

func (MongoRequestStore) Get(ctx context.Context, id string) (*models.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var req models.BookingRequest
	if err := db.RequestsCollection.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// MongoPriceBook batch-fetches current catalog prices.
type MongoPriceBook struct{}

func (MongoPriceBook) Prices(ctx context.Context, testIDs []string) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := db.TestsCollection.Find(ctx, bson.M{"id": bson.M{"$in": testIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	prices := make(map[string]float64)
	for cur.Next(ctx) {
		var t models.LabTest
		if err := cur.Decode(&t); err != nil {
			continue
		}
		prices[t.ID] = t.Price
	}
	return prices, cur.Err()
}
