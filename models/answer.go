package models

import (
	"context"
	"strings"
	"time"

	"dev-overflow/apperror"
	"dev-overflow/helpers"
	"dev-overflow/lookups"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// reputation deltas for content lifecycle
const (
	repGiveAnswer   = int32(10)
	repDeleteAnswer = int32(-10)
)

// Answer is the "interface" used for client communication
type Answer struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id"`
	QuestionID primitive.ObjectID   `json:"questionID" bson:"question"`
	AuthorID   primitive.ObjectID   `json:"authorID" bson:"author"`
	AuthorName string               `json:"authorName" bson:"-"`
	Content    string               `json:"content" bson:"content"`
	UpVotes    []primitive.ObjectID `json:"-" bson:"upVotes"`
	DownVotes  []primitive.ObjectID `json:"-" bson:"downVotes"`
	CreatedTS  time.Time            `json:"createdTS" bson:"createdTS"`
	// counts derived for the client, the raw voter lists stay server-side
	UpVoteCount   int32 `json:"upVotes" bson:"-"`
	DownVoteCount int32 `json:"downVotes" bson:"-"`
}

// AnswerModel provides the logic to the interface and access to the database
type AnswerModel struct {
	Collection *mongo.Collection
	// parent documents, to link and validate
	Questions *mongo.Collection
	// functions of other models, injected to avoid an import cycle
	GetUserNameOID     func(userOID primitive.ObjectID) (string, error)
	AddReputation      func(userOID primitive.ObjectID, delta int32) error
	RecordInteraction  func(interaction *Interaction) error
	DeleteInteractions func(answerOID primitive.ObjectID) error
}

// Validate checks given values (immutable)
func (m AnswerModel) Validate(answer Answer) (*Answer, error) {

	cleaned := answer

	cleaned.Content = strings.TrimSpace(cleaned.Content)
	if cleaned.Content == "" {
		return nil, ErrAnswerEmpty
	}

	return &cleaned, nil
}

// CreateAnswer adds an answer to an existing question.
// The parent's answers array is updated first - a vanished question makes
// the whole operation a no-op instead of leaving an orphan.
func (m AnswerModel) CreateAnswer(answer *Answer) (string, error) {

	// Validate called by controller

	answer.ID = primitive.NewObjectID()
	answer.UpVotes = []primitive.ObjectID{}
	answer.DownVotes = []primitive.ObjectID{}
	answer.CreatedTS = time.Now()

	filter := bson.D{{Key: "_id", Value: answer.QuestionID}}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "answers", Value: answer.ID}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	result, err := m.Questions.UpdateOne(ctx, filter, update)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}
	if result.MatchedCount == 0 {
		return "", apperror.ErrNoData // question might have been deleted
	}

	_, err = m.Collection.InsertOne(ctx, answer)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	// snapshot the question's tags into the interaction (feed signal)
	tagOIDs, _ := m.questionTags(answer.QuestionID)

	err = m.RecordInteraction(&Interaction{
		UserID:     answer.AuthorID,
		Action:     lookups.ActionAnswer,
		QuestionID: answer.QuestionID,
		AnswerID:   answer.ID,
		Tags:       tagOIDs,
	})
	if err != nil {
		return "", err
	}

	err = m.AddReputation(answer.AuthorID, repGiveAnswer)
	if err != nil {
		return "", err
	}

	return answer.ID.Hex(), nil
}

// DeleteAnswer removes an answer, unlinks it from its question and takes
// back the author's reputation award. Author-only.
func (m AnswerModel) DeleteAnswer(answerID string, userID string) error {

	answerOID, err := primitive.ObjectIDFromHex(answerID)
	if err != nil {
		return apperror.ErrNoData
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidUser
	}

	var answer Answer

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": answerOID}).Decode(&answer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperror.ErrNoData
		}
		return helpers.WrapError(err, helpers.FuncName())
	}

	if answer.AuthorID != userOID {
		return apperror.ErrDenied
	}

	_, err = m.Collection.DeleteOne(ctx, bson.M{"_id": answerOID})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	// unlink from parent (parent may already be gone - that's fine)
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "answers", Value: answerOID}}}}
	_, err = m.Questions.UpdateOne(ctx, bson.M{"_id": answer.QuestionID}, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	err = m.DeleteInteractions(answerOID)
	if err != nil {
		return err
	}

	return m.AddReputation(answer.AuthorID, repDeleteAnswer)
}

// ListAnswers returns a question's answers
func (m AnswerModel) ListAnswers(questionID string, filter string, page int64, pageSize int64) ([]Answer, bool, error) {

	questionOID, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return nil, false, apperror.ErrNoData
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	skip := (page - 1) * pageSize
	if skip < 0 {
		skip = 0
	}

	query := bson.D{{Key: "question", Value: questionOID}}

	// upvote sorts work on the array size, which needs an aggregation;
	// a simple find with an in-memory size sort would break the paging
	var sort bson.D
	switch filter {
	case "highestUpvotes":
		sort = bson.D{{Key: "upVoteCount", Value: -1}}
	case "lowestUpvotes":
		sort = bson.D{{Key: "upVoteCount", Value: 1}}
	case "old":
		sort = bson.D{{Key: "createdTS", Value: 1}}
	default: // recent
		sort = bson.D{{Key: "createdTS", Value: -1}}
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: query}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "upVoteCount", Value: bson.D{
				{Key: "$size", Value: bson.D{
					{Key: "$ifNull", Value: bson.A{"$upVotes", bson.A{}}},
				}},
			}},
		}}},
		bson.D{{Key: "$sort", Value: sort}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: pageSize}},
	}

	opts := options.Aggregate().SetMaxTime(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Collection.Aggregate(ctx, pipeline, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var answers []Answer
	err = cursor.All(ctx, &answers)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if answers == nil {
		return nil, false, apperror.ErrNoData
	}

	total, err := m.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}
	isNext := total > skip+int64(len(answers))

	// add look-ups and derived counts
	for i := range answers {
		answers[i].AuthorName, _ = m.GetUserNameOID(answers[i].AuthorID)
		answers[i].UpVoteCount = int32(len(answers[i].UpVotes))
		answers[i].DownVoteCount = int32(len(answers[i].DownVotes))
		answers[i].UpVotes = nil
		answers[i].DownVotes = nil
	}

	return answers, isNext, nil
}

// UserVote reports the caller's current vote on an answer (-1/0/1)
func (m AnswerModel) UserVote(answerID string, userID string) (int32, error) {
	return userVote(m.Collection, answerID, userID)
}

// DeleteForQuestion removes all answers of a question (cascade),
// injected into the question model
func (m AnswerModel) DeleteForQuestion(questionOID primitive.ObjectID) error {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	_, err := m.Collection.DeleteMany(ctx, bson.M{"question": questionOID})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// reads just the tag refs of a question for interaction snapshots
func (m AnswerModel) questionTags(questionOID primitive.ObjectID) ([]primitive.ObjectID, error) {

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "tags", Value: 1},
	}

	data := struct {
		Tags []primitive.ObjectID `bson:"tags"`
	}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err := m.Questions.FindOne(ctx, bson.M{"_id": questionOID}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return data.Tags, nil
}
