package models

import (
	"context"
	"time"

	"dev-overflow/helpers"
	"dev-overflow/lookups"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Interaction is one append-only record of a user action against content.
// It is an activity ledger only - vote state lives in the content documents.
type Interaction struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id"`
	UserID     primitive.ObjectID   `json:"userID" bson:"user"`
	Action     string               `json:"action" bson:"action"` // lookups.Action*
	QuestionID primitive.ObjectID   `json:"questionID,omitempty" bson:"question,omitempty"`
	AnswerID   primitive.ObjectID   `json:"answerID,omitempty" bson:"answer,omitempty"`
	Tags       []primitive.ObjectID `json:"tags,omitempty" bson:"tags,omitempty"` // topic snapshot at action time
	CreatedTS  time.Time            `json:"createdTS" bson:"createdTS"`
}

// InteractionModel provides the logics to the data type
type InteractionModel struct {
	Collection *mongo.Collection
	// short-term view dedupe in front of the mongo existence check
	RedisClient *redis.Client
}

// Record appends one interaction
func (m InteractionModel) Record(interaction *Interaction) error {

	interaction.ID = primitive.NewObjectID()
	interaction.CreatedTS = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	_, err := m.Collection.InsertOne(ctx, interaction)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// Retract removes the record(s) of a given action against a content item.
// Votes must hold exactly one record while the vote stands; the vote model
// calls Record/Retract in lockstep with its state transitions.
func (m InteractionModel) Retract(contentType string, contentOID primitive.ObjectID, action string) error {

	var filter bson.D

	switch contentType {
	case lookups.ContentQuestion:
		filter = bson.D{
			{Key: "question", Value: contentOID},
			{Key: "action", Value: action},
		}
	case lookups.ContentAnswer:
		filter = bson.D{
			{Key: "answer", Value: contentOID},
			{Key: "action", Value: action},
		}
	default:
		return ErrInvalidContentType
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	_, err := m.Collection.DeleteMany(ctx, filter)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// DeleteForQuestion purges every interaction referencing a question.
// Answer interactions carry the question ref too, so the cascade catches them.
func (m InteractionModel) DeleteForQuestion(questionOID primitive.ObjectID) error {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	_, err := m.Collection.DeleteMany(ctx, bson.D{{Key: "question", Value: questionOID}})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// DeleteForAnswer purges every interaction referencing an answer
func (m InteractionModel) DeleteForAnswer(answerOID primitive.ObjectID) error {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	_, err := m.Collection.DeleteMany(ctx, bson.D{{Key: "answer", Value: answerOID}})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// HasViewed reports whether a view interaction already exists for the pair.
// A redis key with a day's TTL short-circuits the check for repeated hits;
// the interactions collection remains the source of truth.
func (m InteractionModel) HasViewed(userOID primitive.ObjectID, questionOID primitive.ObjectID) (bool, error) {

	if m.RedisClient != nil {
		var rctx = context.Background()
		key := "view_" + questionOID.Hex() + "_" + userOID.Hex()

		// SetNX returns false if the key already existed
		fresh, err := m.RedisClient.SetNX(rctx, key, 1, 24*time.Hour).Result()
		if err == nil && !fresh {
			return true, nil
		}
		// cache miss or cache error - fall through to the DB
	}

	filter := bson.D{
		{Key: "user", Value: userOID},
		{Key: "action", Value: lookups.ActionView},
		{Key: "question", Value: questionOID},
	}

	data := struct {
		ID primitive.ObjectID `bson:"_id"`
	}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err := m.Collection.FindOne(ctx, filter).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		// treat errors as a "yes" - caller should not evaluate the result in case of an error
		return true, helpers.WrapError(err, helpers.FuncName())
	}

	return true, nil
}

// TagsForUser collects the distinct tags of all interactions of a user.
// This is the substrate of the recommended-questions feed.
func (m InteractionModel) TagsForUser(userOID primitive.ObjectID) ([]primitive.ObjectID, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	values, err := m.Collection.Distinct(ctx, "tags", bson.D{{Key: "user", Value: userOID}})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var tagIDs []primitive.ObjectID
	for _, v := range values {
		if oid, ok := v.(primitive.ObjectID); ok {
			tagIDs = append(tagIDs, oid)
		}
	}

	return tagIDs, nil
}
