package environment

import (
	"os"

	"dev-overflow/analytics"
	"dev-overflow/client"
	"dev-overflow/database"
	"dev-overflow/models"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// Environment is used for dependency-injection (package de-coupling)
type Environment struct {
	Tracker          *analytics.Tracker
	Requests         *client.Registry
	Guard            client.Guard
	UserModel        models.UserModel
	QuestionModel    models.QuestionModel
	AnswerModel      models.AnswerModel
	TagModel         models.TagModel
	VoteModel        models.VoteModel
	InteractionModel models.InteractionModel
}

// newEnv operates as the constructor to initialize the collection references (private)
func newEnv(mongoClient *mongo.Client, redisClient *redis.Client) *Environment {
	env := &Environment{}

	db := mongoClient.Database(os.Getenv("DB_NAME"))

	questions := db.Collection(database.CollectionQuestions)
	answers := db.Collection(database.CollectionAnswers)

	// request registry (view refresh suppression) and action guard
	env.Requests = new(client.Registry)
	env.Requests.Initialize()
	env.Guard.Initialize()

	// prepare analytics gathering (question views)
	// always create the object so no further checking is needed in the models
	env.Tracker = new(analytics.Tracker)
	env.Tracker.SetConnections(database.GetInfluxConnection(),
		map[string]*mongo.Collection{
			database.CollectionQuestions: questions,
		})

	env.UserModel.Client = mongoClient
	env.UserModel.Collection = db.Collection(database.CollectionUsers)
	env.UserModel.Questions = questions
	env.UserModel.Answers = answers
	env.UserModel.Guard = env.Guard

	// inject user model functions to the analytics tracker after its initialization
	env.Tracker.GetUserName = env.UserModel.GetUserName

	env.InteractionModel.Collection = db.Collection(database.CollectionInteractions)
	env.InteractionModel.RedisClient = redisClient

	env.TagModel.Collection = db.Collection(database.CollectionTags)

	env.AnswerModel.Collection = answers
	env.AnswerModel.Questions = questions
	env.AnswerModel.GetUserNameOID = env.UserModel.GetUserNameOID
	env.AnswerModel.AddReputation = env.UserModel.AddReputation
	env.AnswerModel.RecordInteraction = env.InteractionModel.Record
	env.AnswerModel.DeleteInteractions = env.InteractionModel.DeleteForAnswer

	env.QuestionModel.Client = mongoClient
	env.QuestionModel.Collection = questions
	env.QuestionModel.Requests = env.Requests
	env.QuestionModel.GetUserNameOID = env.UserModel.GetUserNameOID
	env.QuestionModel.AddReputation = env.UserModel.AddReputation
	env.QuestionModel.UpsertTag = env.TagModel.Upsert
	env.QuestionModel.PullQuestionTag = env.TagModel.PullQuestion
	env.QuestionModel.GetTagNames = env.TagModel.GetNames
	env.QuestionModel.RecordInteraction = env.InteractionModel.Record
	env.QuestionModel.DeleteInteractions = env.InteractionModel.DeleteForQuestion
	env.QuestionModel.DeleteAnswers = env.AnswerModel.DeleteForQuestion
	env.QuestionModel.HasViewed = env.InteractionModel.HasViewed
	env.QuestionModel.TagsForUser = env.InteractionModel.TagsForUser
	env.QuestionModel.SaveVisitor = env.Tracker.SaveVisitor

	env.VoteModel.Questions = questions
	env.VoteModel.Answers = answers
	env.VoteModel.Guard = env.Guard
	env.VoteModel.AddReputation = env.UserModel.AddReputation
	env.VoteModel.RecordInteraction = env.InteractionModel.Record
	env.VoteModel.RetractInteraction = env.InteractionModel.Retract

	return env
}

// Env is the singleton registry
var Env *Environment

// InitializeModels injects the database connections to the models
// (do not confuse with package init)
func InitializeModels() {
	Env = newEnv(database.GetConnection(), database.GetRedisConnection())
}
