package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// shared connection (private to members of this package)
var client *mongo.Client

// collection names, referenced by the environment when wiring the models
const (
	CollectionUsers        = "users"
	CollectionQuestions    = "questions"
	CollectionAnswers      = "answers"
	CollectionTags         = "tags"
	CollectionInteractions = "interactions"
)

// OpenConnection to the database
func OpenConnection() error {
	var err error

	conStr := fmt.Sprintf("mongodb://%s:%s@%s:%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASS"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"))

	client, err = mongo.NewClient(options.Client().ApplyURI(conStr))
	if err != nil {
		return err
	}

	// every caller will create its own context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds
	err = client.Connect(ctx)
	if err != nil {
		return err
	}

	// make sure a connection has actually been made
	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		return err
	}

	return ensureIndexes()
}

// CloseConnection closes the connection to the DB (when client is shut-down)
func CloseConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()                // abort after 10 seconds
	return client.Disconnect(ctx) // pass a possible error
}

// GetConnection returns a reference to the shared connection
func GetConnection() *mongo.Client {
	return client
}

// ensureIndexes creates the unique keys the models rely on.
// tags are upserted by their normalized name, users by their external
// identity - both must be guarded in the DB, not just in code
func ensureIndexes() error {

	db := client.Database(os.Getenv("DB_NAME"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	unique := options.Index().SetUnique(true)

	_, err := db.Collection(CollectionTags).Indexes().CreateOne(ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "nameKey", Value: 1}},
			Options: unique,
		})
	if err != nil {
		return err
	}

	_, err = db.Collection(CollectionUsers).Indexes().CreateOne(ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "externalID", Value: 1}},
			Options: unique,
		})
	if err != nil {
		return err
	}

	// interactions are looked up by content and action (vote lockstep)
	_, err = db.Collection(CollectionInteractions).Indexes().CreateOne(ctx,
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "question", Value: 1},
				{Key: "action", Value: 1},
			},
		})

	return err
}
