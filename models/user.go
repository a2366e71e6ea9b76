package models

import (
	"context"
	"time"

	"dev-overflow/apperror"
	"dev-overflow/client"
	"dev-overflow/helpers"
	"dev-overflow/lookups"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// User is the "interface" used for client communication.
// Accounts are created on the first authenticated action; the identity
// provider is external, so there is no password here.
type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id"`
	ExternalID   string               `json:"externalID" bson:"externalID"` // id at the identity provider
	UserName     string               `json:"userName" bson:"userName"`
	FullName     string               `json:"fullName" bson:"fullName,omitempty"`
	EMailAddress string               `json:"eMail" bson:"eMail,omitempty"`
	Picture      string               `json:"picture" bson:"picture,omitempty"`
	About        string               `json:"about" bson:"about,omitempty"`
	Location     string               `json:"location" bson:"location,omitempty"`
	Reputation   int32                `json:"reputation" bson:"reputation"` // running total, may go negative
	Saved        []primitive.ObjectID `json:"saved" bson:"saved"`
	JoinedTS     time.Time            `json:"joinedTS" bson:"joinedTS"`
	LastSeenTS   time.Time            `json:"lastSeenTS" bson:"lastSeenTS,omitempty"`
}

// ExternalProfile is what the identity provider asserts about a user
type ExternalProfile struct {
	ExternalID   string `json:"externalID" binding:"required"`
	UserName     string `json:"userName" binding:"required"`
	FullName     string `json:"fullName"`
	EMailAddress string `json:"eMail"`
	Picture      string `json:"picture"`
}

// UserListItem is the reduced/simplified model used for the community page
type UserListItem struct {
	ID         primitive.ObjectID `json:"id"`
	UserName   string             `json:"userName"`
	FullName   string             `json:"fullName"`
	Picture    string             `json:"picture"`
	Reputation int32              `json:"reputation"`
	JoinedTS   time.Time          `json:"joinedTS"`
}

// UserStats aggregates the profile statistics the badges derive from
type UserStats struct {
	QuestionCount   int64       `json:"questionCount"`
	AnswerCount     int64       `json:"answerCount"`
	QuestionUpvotes int64       `json:"questionUpvotes"`
	AnswerUpvotes   int64       `json:"answerUpvotes"`
	TotalViews      int64       `json:"totalViews"`
	Badges          BadgeCounts `json:"badges"`
}

// UserModel provides the logic to the interface and access to the database
type UserModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	// content collections, read-only here (badge aggregation)
	Questions *mongo.Collection
	Answers   *mongo.Collection
	Guard     client.Guard
}

// GetOrCreateByExternalID resolves an asserted external identity to the
// internal user record, creating it on first sight with reputation 0
// and an empty saved set
func (m UserModel) GetOrCreateByExternalID(profile ExternalProfile) (*User, error) {

	filter := bson.D{{Key: "externalID", Value: profile.ExternalID}}

	fields := bson.D{
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "externalID", Value: profile.ExternalID},
			{Key: "userName", Value: profile.UserName},
			{Key: "fullName", Value: profile.FullName},
			{Key: "eMail", Value: profile.EMailAddress},
			{Key: "picture", Value: profile.Picture},
			{Key: "reputation", Value: int32(0)},
			{Key: "saved", Value: bson.A{}},
			{Key: "joinedTS", Value: time.Now()},
		}},
		{Key: "$set", Value: bson.D{{Key: "lastSeenTS", Value: time.Now()}}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	var user User
	err := m.Collection.FindOneAndUpdate(ctx, filter, fields, opts).Decode(&user)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &user, nil
}

// GetUserByID reads a user's account data
func (m UserModel) GetUserByID(ID string) (*User, error) {

	var user User

	id, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return nil, ErrInvalidUser
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		// pass any other error
		return nil, err
	}

	return &user, nil
}

// GetUserName returns the user name from an ID (reduced version, without profile data)
func (m UserModel) GetUserName(ID string) (string, error) {

	id, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return "", ErrInvalidUser
	}

	return m.GetUserNameOID(id)
}

// GetUserNameOID is the ObjectID variant, injected into the content models
func (m UserModel) GetUserNameOID(userOID primitive.ObjectID) (string, error) {

	data := struct {
		UserName string `bson:"userName"`
	}{}

	fields := bson.D{
		{Key: "_id", Value: 0}, // _id always comes unless explicitly excluded
		{Key: "userName", Value: 1}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err := m.Collection.FindOne(ctx, bson.M{"_id": userOID}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", ErrInvalidUser
		}
		// pass any other error
		return "", err
	}

	return data.UserName, nil
}

// AddReputation adjusts a user's reputation by a delta (may go negative).
// The running total is incrementally adjusted, never recomputed from history.
func (m UserModel) AddReputation(userOID primitive.ObjectID, delta int32) error {

	if delta == 0 {
		return nil
	}

	filter := bson.D{{Key: "_id", Value: userOID}}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "reputation", Value: delta}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.MatchedCount == 0 {
		return ErrInvalidUser
	}

	return nil
}

// SetLastSeen saves timestamp of the latest authenticated action
func (m UserModel) SetLastSeen(userOID primitive.ObjectID) {
	// no error is returned since this function is not essential

	filter := bson.D{{Key: "_id", Value: userOID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "lastSeenTS", Value: time.Now()}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	// just fire & forget
	_, _ = m.Collection.UpdateOne(ctx, filter, update)
}

// ToggleSave adds or removes a question from the user's saved set.
// Membership is re-derived from the stored document, so a stale client
// cannot flip the toggle the wrong way.
func (m UserModel) ToggleSave(userID string, questionID string) (bool, error) {

	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, ErrInvalidUser
	}
	questionOID, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return false, apperror.ErrNoData
	}

	// suppress double-submission of the same toggle
	key := userID + "_save_" + questionID
	if !m.Guard.Begin(key) {
		return false, apperror.ErrRecordChanged
	}
	defer m.Guard.End(key)

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "saved", Value: 1},
	}

	data := struct {
		Saved []primitive.ObjectID `bson:"saved"`
	}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": userOID}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, ErrInvalidUser
		}
		return false, helpers.WrapError(err, helpers.FuncName())
	}

	var update bson.D
	saved := !contains(data.Saved, questionOID)
	if saved {
		update = bson.D{{Key: "$addToSet", Value: bson.D{{Key: "saved", Value: questionOID}}}}
	} else {
		update = bson.D{{Key: "$pull", Value: bson.D{{Key: "saved", Value: questionOID}}}}
	}

	_, err = m.Collection.UpdateOne(ctx, bson.M{"_id": userOID}, update)
	if err != nil {
		return false, helpers.WrapError(err, helpers.FuncName())
	}

	return saved, nil
}

// GetSavedIDs returns the ids of a user's saved questions
func (m UserModel) GetSavedIDs(userID string) ([]primitive.ObjectID, error) {

	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidUser
	}

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "saved", Value: 1},
	}

	data := struct {
		Saved []primitive.ObjectID `bson:"saved"`
	}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": userOID}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return data.Saved, nil
}

// SearchUsers lists or searches members (community page)
func (m UserModel) SearchUsers(searchTerm string, filter string, page int64, pageSize int64) ([]UserListItem, bool, error) {

	if pageSize <= 0 {
		pageSize = 20
	}
	skip := (page - 1) * pageSize
	if skip < 0 {
		skip = 0
	}

	query := bson.D{}
	if searchTerm != "" {
		pattern := primitive.Regex{Pattern: regexEscape(searchTerm), Options: "i"}
		query = bson.D{
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "userName", Value: pattern}},
				bson.D{{Key: "fullName", Value: pattern}},
			}},
		}
	}

	var sort bson.D
	switch filter {
	case "new_users":
		sort = bson.D{{Key: "joinedTS", Value: -1}}
	case "old_users":
		sort = bson.D{{Key: "joinedTS", Value: 1}}
	default: // top_contributors
		sort = bson.D{{Key: "reputation", Value: -1}}
	}

	opts := options.Find().SetSkip(skip).SetLimit(pageSize).SetSort(sort)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var users []User
	err = cursor.All(ctx, &users)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if users == nil {
		return nil, false, apperror.ErrNoData
	}

	total, err := m.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}
	isNext := total > skip+int64(len(users))

	// copy data to reduced list-struct
	var userList []UserListItem
	var item UserListItem

	for _, u := range users {
		item.ID = u.ID
		item.UserName = u.UserName
		item.FullName = u.FullName
		item.Picture = u.Picture
		item.Reputation = u.Reputation
		item.JoinedTS = u.JoinedTS

		userList = append(userList, item)
	}

	return userList, isNext, nil
}

// GetUserStats aggregates the profile statistics and derives the badges.
// Badges are recomputed on every read - they are a pure function of the
// content statistics, nothing is stored.
func (m UserModel) GetUserStats(userID string) (*UserStats, error) {

	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidUser
	}

	stats := new(UserStats)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	stats.QuestionCount, err = m.Questions.CountDocuments(ctx, bson.D{{Key: "author", Value: userOID}})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	stats.AnswerCount, err = m.Answers.CountDocuments(ctx, bson.D{{Key: "author", Value: userOID}})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	stats.QuestionUpvotes, stats.TotalViews, err = m.questionTotals(userOID)
	if err != nil {
		return nil, err
	}

	stats.AnswerUpvotes, err = m.answerUpvotes(userOID)
	if err != nil {
		return nil, err
	}

	stats.Badges = ComputeBadges([]BadgeCriterion{
		{Kind: lookups.BCquestionCount, Count: stats.QuestionCount},
		{Kind: lookups.BCanswerCount, Count: stats.AnswerCount},
		{Kind: lookups.BCquestionUpvotes, Count: stats.QuestionUpvotes},
		{Kind: lookups.BCanswerUpvotes, Count: stats.AnswerUpvotes},
		{Kind: lookups.BCtotalViews, Count: stats.TotalViews},
	})

	return stats, nil
}

// sum of received question upvotes and views for an author
func (m UserModel) questionTotals(userOID primitive.ObjectID) (upvotes int64, views int64, err error) {

	matchStage := bson.D{{Key: "$match", Value: bson.D{{Key: "author", Value: userOID}}}}

	groupStage := bson.D{
		{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "upvotes", Value: bson.D{
				{Key: "$sum", Value: bson.D{
					{Key: "$size", Value: bson.D{
						{Key: "$ifNull", Value: bson.A{"$upVotes", bson.A{}}},
					}},
				}},
			}},
			{Key: "views", Value: bson.D{
				{Key: "$sum", Value: "$views"},
			}},
		}},
	}

	opts := options.Aggregate().SetMaxTime(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Questions.Aggregate(ctx, mongo.Pipeline{matchStage, groupStage}, opts)
	if err != nil {
		return 0, 0, helpers.WrapError(err, helpers.FuncName())
	}

	var rows []bson.M
	err = cursor.All(ctx, &rows)
	if err != nil {
		return 0, 0, helpers.WrapError(err, helpers.FuncName())
	}

	// no content yet is not an error
	if len(rows) == 0 {
		return 0, 0, nil
	}

	return toInt64(rows[0]["upvotes"]), toInt64(rows[0]["views"]), nil
}

// sum of received answer upvotes for an author
func (m UserModel) answerUpvotes(userOID primitive.ObjectID) (int64, error) {

	matchStage := bson.D{{Key: "$match", Value: bson.D{{Key: "author", Value: userOID}}}}

	groupStage := bson.D{
		{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "upvotes", Value: bson.D{
				{Key: "$sum", Value: bson.D{
					{Key: "$size", Value: bson.D{
						{Key: "$ifNull", Value: bson.A{"$upVotes", bson.A{}}},
					}},
				}},
			}},
		}},
	}

	opts := options.Aggregate().SetMaxTime(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Answers.Aggregate(ctx, mongo.Pipeline{matchStage, groupStage}, opts)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	var rows []bson.M
	err = cursor.All(ctx, &rows)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	if len(rows) == 0 {
		return 0, nil
	}

	return toInt64(rows[0]["upvotes"]), nil
}

// aggregation sums come back as int32 or int64 depending on the values
func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
