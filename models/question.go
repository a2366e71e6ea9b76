package models

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"dev-overflow/apperror"
	"dev-overflow/client"
	"dev-overflow/helpers"
	"dev-overflow/lookups"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// reputation deltas for content lifecycle
const (
	repAskQuestion    = int32(5)
	repDeleteQuestion = int32(-5)
)

// title bounds, enforced on create and edit
const (
	titleMinLength = 5
	titleMaxLength = 130
)

// tag count bounds per question
const (
	tagMinCount = 1
	tagMaxCount = 3
)

// Question is the "interface" used for client communication
type Question struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id"`
	Title      string               `json:"title" bson:"title"`
	Content    string               `json:"content" bson:"content"`
	AuthorID   primitive.ObjectID   `json:"authorID" bson:"author"`
	AuthorName string               `json:"authorName" bson:"-"`
	TagIDs     []primitive.ObjectID `json:"tagIDs" bson:"tags"`
	TagNames   []string             `json:"tagNames" bson:"-"` // resolved names, creation order
	UpVotes    []primitive.ObjectID `json:"-" bson:"upVotes"`
	DownVotes  []primitive.ObjectID `json:"-" bson:"downVotes"`
	Answers    []primitive.ObjectID `json:"-" bson:"answers"`
	Views      int64                `json:"views" bson:"views"`
	CreatedTS  time.Time            `json:"createdTS" bson:"createdTS"`
	ModifiedTS time.Time            `json:"modifiedTS,omitempty" bson:"modifiedTS,omitempty"`
	// counts derived for the client, the raw voter lists stay server-side
	UpVoteCount   int32 `json:"upVotes" bson:"-"`
	DownVoteCount int32 `json:"downVotes" bson:"-"`
	AnswerCount   int32 `json:"answerCount" bson:"-"`
}

// QuestionListItem is the reduced/simplified model used for listings
type QuestionListItem struct {
	ID            primitive.ObjectID `json:"id"`
	Title         string             `json:"title"`
	AuthorID      primitive.ObjectID `json:"authorID"`
	AuthorName    string             `json:"authorName"`
	TagNames      []string           `json:"tagNames"`
	UpVoteCount   int32              `json:"upVotes"`
	DownVoteCount int32              `json:"downVotes"`
	AnswerCount   int32              `json:"answerCount"`
	Views         int64              `json:"views"`
	CreatedTS     time.Time          `json:"createdTS"`
}

// QuestionSearch is passed as the search params
type QuestionSearch struct {
	SearchTerm string
	Filter     string // newest | frequent | unanswered
	Page       int64
	PageSize   int64
}

// TagInput carries the raw tag names sent with a new question
type QuestionInput struct {
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content" binding:"required"`
	TagNames []string `json:"tagNames" binding:"required"`
}

// QuestionModel provides the logic to the interface and access to the database
type QuestionModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	// view refresh suppression
	Requests *client.Registry
	// functions of other models, injected to avoid an import cycle
	GetUserNameOID     func(userOID primitive.ObjectID) (string, error)
	AddReputation      func(userOID primitive.ObjectID, delta int32) error
	UpsertTag          func(name string, questionOID primitive.ObjectID) (primitive.ObjectID, error)
	PullQuestionTag    func(questionOID primitive.ObjectID) error
	GetTagNames        func(tagIDs []primitive.ObjectID) ([]string, error)
	RecordInteraction  func(interaction *Interaction) error
	DeleteInteractions func(questionOID primitive.ObjectID) error
	DeleteAnswers      func(questionOID primitive.ObjectID) error
	HasViewed          func(userOID primitive.ObjectID, questionOID primitive.ObjectID) (bool, error)
	TagsForUser        func(userOID primitive.ObjectID) ([]primitive.ObjectID, error)
	SaveVisitor        func(questionID string, userID string)
}

// Validate checks given values and normalizes strings (immutable)
func (m QuestionModel) Validate(input QuestionInput) (*QuestionInput, error) {

	cleaned := input

	cleaned.Title = strings.TrimSpace(cleaned.Title)
	// characters, not bytes
	if n := utf8.RuneCountInString(cleaned.Title); n < titleMinLength || n > titleMaxLength {
		return nil, ErrTitleLength
	}

	cleaned.Content = strings.TrimSpace(cleaned.Content)
	if cleaned.Content == "" {
		return nil, ErrContentMissing
	}

	if len(cleaned.TagNames) < tagMinCount || len(cleaned.TagNames) > tagMaxCount {
		return nil, ErrTagCount
	}
	for i, name := range cleaned.TagNames {
		cleaned.TagNames[i] = strings.TrimSpace(name)
		if cleaned.TagNames[i] == "" {
			return nil, ErrTagNameMissing
		}
	}

	return &cleaned, nil
}

// CreateQuestion adds a new question - validated by controller.
// Side-effects happen after the insert: tag upserts, the ask_question
// interaction (with a tag snapshot) and the author's reputation award.
func (m QuestionModel) CreateQuestion(input *QuestionInput, authorID string) (string, error) {

	authorOID, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return "", ErrInvalidUser
	}

	question := Question{
		ID:        primitive.NewObjectID(),
		Title:     input.Title,
		Content:   input.Content,
		AuthorID:  authorOID,
		TagIDs:    []primitive.ObjectID{},
		UpVotes:   []primitive.ObjectID{},
		DownVotes: []primitive.ObjectID{},
		Answers:   []primitive.ObjectID{},
		Views:     0,
		CreatedTS: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	_, err = m.Collection.InsertOne(ctx, question)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	// resolve or create the tags, then link them to the question
	var tagOIDs []primitive.ObjectID
	for _, name := range input.TagNames {
		tagOID, err := m.UpsertTag(name, question.ID)
		if err != nil {
			return "", err
		}
		tagOIDs = append(tagOIDs, tagOID)
	}

	update := bson.D{{Key: "$push", Value: bson.D{
		{Key: "tags", Value: bson.D{{Key: "$each", Value: tagOIDs}}},
	}}}

	_, err = m.Collection.UpdateOne(ctx, bson.M{"_id": question.ID}, update)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	err = m.RecordInteraction(&Interaction{
		UserID:     authorOID,
		Action:     lookups.ActionAskQuestion,
		QuestionID: question.ID,
		Tags:       tagOIDs,
	})
	if err != nil {
		return "", err
	}

	err = m.AddReputation(authorOID, repAskQuestion)
	if err != nil {
		return "", err
	}

	return question.ID.Hex(), nil
}

// EditQuestion changes title and content; tags are immutable after creation.
// Only the author may edit, edits never touch votes, views or reputation.
func (m QuestionModel) EditQuestion(questionID string, userID string, title string, content string) error {

	questionOID, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return apperror.ErrNoData
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidUser
	}

	title = strings.TrimSpace(title)
	if n := utf8.RuneCountInString(title); n < titleMinLength || n > titleMaxLength {
		return ErrTitleLength
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrContentMissing
	}

	authorOID, err := m.getAuthor(questionOID)
	if err != nil {
		return err
	}
	if authorOID != userOID {
		return apperror.ErrDenied
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: title},
		{Key: "content", Value: content},
		{Key: "modifiedTS", Value: time.Now()},
	}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	_, err = m.Collection.UpdateOne(ctx, bson.M{"_id": questionOID}, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// DeleteQuestion removes a question and cascades over its dependents.
// Order matters: the question goes first so no new answers or votes can
// attach while the dependents are cleaned up.
func (m QuestionModel) DeleteQuestion(questionID string, userID string) error {

	questionOID, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return apperror.ErrNoData
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidUser
	}

	authorOID, err := m.getAuthor(questionOID)
	if err != nil {
		return err
	}
	if authorOID != userOID {
		return apperror.ErrDenied
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	result, err := m.Collection.DeleteOne(ctx, bson.M{"_id": questionOID})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if result.DeletedCount == 0 {
		return apperror.ErrNoData
	}

	// answers carry the question reference, so their interactions are
	// covered by the question-scoped interaction delete below
	err = m.DeleteAnswers(questionOID)
	if err != nil {
		return err
	}

	err = m.DeleteInteractions(questionOID)
	if err != nil {
		return err
	}

	err = m.PullQuestionTag(questionOID)
	if err != nil {
		return err
	}

	return m.AddReputation(authorOID, repDeleteQuestion)
}

// IncrementView counts a view and records the once-per-user view interaction.
// Repeated page loads within the refresh window are suppressed per client.
func (m QuestionModel) IncrementView(questionID string, userID string, clientIP string) error {

	questionOID, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return apperror.ErrNoData
	}

	// browser refreshs don't count
	if !m.Requests.Continue(clientIP, questionID) {
		return nil
	}

	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	result, err := m.Collection.UpdateOne(ctx, bson.M{"_id": questionOID}, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if result.MatchedCount == 0 {
		return apperror.ErrNoData
	}

	m.SaveVisitor(questionID, userID)

	// anonymous views bump the counter but leave no interaction
	if userID == "" {
		return nil
	}

	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidUser
	}

	viewed, err := m.HasViewed(userOID, questionOID)
	if err != nil {
		return err
	}
	if viewed {
		return nil
	}

	return m.RecordInteraction(&Interaction{
		UserID:     userOID,
		Action:     lookups.ActionView,
		QuestionID: questionOID,
	})
}

// SearchQuestions lists or searches questions (home page)
func (m QuestionModel) SearchQuestions(searchSpecs *QuestionSearch) ([]QuestionListItem, bool, error) {

	pageSize := searchSpecs.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	skip := (searchSpecs.Page - 1) * pageSize
	if skip < 0 {
		skip = 0
	}

	filter := bson.D{}
	if searchSpecs.SearchTerm != "" {
		pattern := primitive.Regex{Pattern: regexEscape(searchSpecs.SearchTerm), Options: "i"}
		filter = bson.D{
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "title", Value: pattern}},
				bson.D{{Key: "content", Value: pattern}},
			}},
		}
	}

	sort := bson.D{{Key: "createdTS", Value: -1}}
	switch searchSpecs.Filter {
	case "frequent":
		sort = bson.D{{Key: "views", Value: -1}}
	case "unanswered":
		filter = append(filter, bson.E{Key: "answers", Value: bson.D{{Key: "$size", Value: 0}}})
	}

	opts := options.Find().SetSkip(skip).SetLimit(pageSize).SetSort(sort)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if questions == nil {
		return nil, false, apperror.ErrNoData
	}

	total, err := m.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}
	isNext := total > skip+int64(len(questions))

	list, err := m.toList(questions)
	if err != nil {
		return nil, false, err
	}

	return list, isNext, nil
}

// GetQuestion returns one question with resolved author and tag names
func (m QuestionModel) GetQuestion(questionID string) (*Question, error) {

	questionOID, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return nil, apperror.ErrNoData
	}

	data := Question{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": questionOID}).Decode(&data)
	if err != nil {
		return nil, apperror.ErrNoData
	}

	// add look-ups
	data.AuthorName, err = m.GetUserNameOID(data.AuthorID)
	if err != nil {
		return nil, err
	}
	data.TagNames, err = m.GetTagNames(data.TagIDs)
	if err != nil {
		return nil, err
	}

	data.UpVoteCount = int32(len(data.UpVotes))
	data.DownVoteCount = int32(len(data.DownVotes))
	data.AnswerCount = int32(len(data.Answers))

	return &data, nil
}

// UserVote reports the caller's current vote on a question (-1/0/1).
// The client renders button state from this, it never tracks votes itself.
func (m QuestionModel) UserVote(questionID string, userID string) (int32, error) {
	return userVote(m.Collection, questionID, userID)
}

// ListHot returns the most viewed questions (sidebar)
func (m QuestionModel) ListHot() ([]QuestionListItem, error) {

	sort := bson.D{{Key: "views", Value: -1}}
	opts := options.Find().SetLimit(5).SetSort(sort)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if questions == nil {
		return nil, apperror.ErrNoData
	}

	return m.toList(questions)
}

// ListRecommended builds the personal feed from the tags of the user's past
// interactions, excluding the user's own questions. A user without history
// falls back to the newest questions.
func (m QuestionModel) ListRecommended(userID string, page int64, pageSize int64) ([]QuestionListItem, bool, error) {

	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false, ErrInvalidUser
	}

	tagOIDs, err := m.TagsForUser(userOID)
	if err != nil {
		return nil, false, err
	}

	if len(tagOIDs) == 0 {
		list, isNext, err := m.SearchQuestions(&QuestionSearch{Filter: "newest", Page: page, PageSize: pageSize})
		return list, isNext, err
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	skip := (page - 1) * pageSize
	if skip < 0 {
		skip = 0
	}

	filter := bson.D{
		{Key: "tags", Value: bson.D{{Key: "$in", Value: tagOIDs}}},
		{Key: "author", Value: bson.D{{Key: "$ne", Value: userOID}}},
	}

	sort := bson.D{{Key: "createdTS", Value: -1}}
	opts := options.Find().SetSkip(skip).SetLimit(pageSize).SetSort(sort)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	if questions == nil {
		return nil, false, apperror.ErrNoData
	}

	total, err := m.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}
	isNext := total > skip+int64(len(questions))

	list, err := m.toList(questions)
	if err != nil {
		return nil, false, err
	}

	return list, isNext, nil
}

// ListByIDs returns the questions for a set of ids (saved collection),
// newest first; ids that no longer resolve are silently skipped
func (m QuestionModel) ListByIDs(questionOIDs []primitive.ObjectID) ([]QuestionListItem, error) {

	if len(questionOIDs) == 0 {
		return nil, apperror.ErrNoData
	}

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: questionOIDs}}}}
	opts := options.Find().SetSort(bson.D{{Key: "createdTS", Value: -1}})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if questions == nil {
		return nil, apperror.ErrNoData
	}

	return m.toList(questions)
}

// ListByTag returns a tag's questions (tag detail page)
func (m QuestionModel) ListByTag(tagID string, page int64, pageSize int64) ([]QuestionListItem, bool, error) {

	tagOID, err := primitive.ObjectIDFromHex(tagID)
	if err != nil {
		return nil, false, apperror.ErrNoData
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	skip := (page - 1) * pageSize
	if skip < 0 {
		skip = 0
	}

	filter := bson.D{{Key: "tags", Value: tagOID}}
	opts := options.Find().SetSkip(skip).SetLimit(pageSize).SetSort(bson.D{{Key: "createdTS", Value: -1}})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	if questions == nil {
		return nil, false, apperror.ErrNoData
	}

	total, err := m.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}
	isNext := total > skip+int64(len(questions))

	list, err := m.toList(questions)
	if err != nil {
		return nil, false, err
	}

	return list, isNext, nil
}

// reads just the author for permission checks
func (m QuestionModel) getAuthor(questionOID primitive.ObjectID) (primitive.ObjectID, error) {

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "author", Value: 1},
	}

	data := struct {
		AuthorID primitive.ObjectID `bson:"author"`
	}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err := m.Collection.FindOne(ctx, bson.M{"_id": questionOID}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, apperror.ErrNoData
		}
		return primitive.NilObjectID, helpers.WrapError(err, helpers.FuncName())
	}

	return data.AuthorID, nil
}

// copy data to reduced list-struct, resolving names
func (m QuestionModel) toList(questions []Question) ([]QuestionListItem, error) {

	var list []QuestionListItem
	var item QuestionListItem

	for _, q := range questions {
		item.ID = q.ID
		item.Title = q.Title
		item.AuthorID = q.AuthorID
		item.AuthorName, _ = m.GetUserNameOID(q.AuthorID)
		item.TagNames, _ = m.GetTagNames(q.TagIDs)
		item.UpVoteCount = int32(len(q.UpVotes))
		item.DownVoteCount = int32(len(q.DownVotes))
		item.AnswerCount = int32(len(q.Answers))
		item.Views = q.Views
		item.CreatedTS = q.CreatedTS

		list = append(list, item)
	}

	return list, nil
}
