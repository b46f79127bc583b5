package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection      *mongo.Collection
	CollectorCollection *mongo.Collection
	AdminCollection     *mongo.Collection
	TestsCollection     *mongo.Collection
	RequestsCollection  *mongo.Collection
	Client              *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "labdb"
	}

	UserCollection = Client.Database(dbName).Collection("users")
	CollectorCollection = Client.Database(dbName).Collection("collectors")
	AdminCollection = Client.Database(dbName).Collection("admins")
	TestsCollection = Client.Database(dbName).Collection("tests")
	RequestsCollection = Client.Database(dbName).Collection("requests")

	ensureIndexes()
}

// ensureIndexes creates the 2dsphere index the collector proximity query
// depends on. Safe to run on every start.
func ensureIndexes() {
	_, err := CollectorCollection.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	if err != nil {
		log.Printf("Failed to create 2dsphere index on collectors: %v", err)
	}
}
