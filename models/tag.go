package models

import (
	"context"
	"strings"
	"time"

	"dev-overflow/apperror"
	"dev-overflow/helpers"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Tag is the "interface" used for client communication.
// Tags are created lazily on first use and never deleted, only pruned of
// dangling question references.
type Tag struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id"`
	Name      string               `json:"name" bson:"name"`  // display spelling of the first use
	NameKey   string               `json:"-" bson:"nameKey"`  // normalized, unique index in DB
	Questions []primitive.ObjectID `json:"-" bson:"questions"`
	CreatedTS time.Time            `json:"createdTS" bson:"createdTS"`
}

// TagListItem is the reduced/simplified model used for listings
type TagListItem struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	QuestionCount int32              `json:"questionCount"`
}

// TagModel provides the logic to the interface and access to the database
type TagModel struct {
	Collection *mongo.Collection
}

// TagKey normalizes a tag name for the unique upsert key.
// "React" and "react" must resolve to the same tag; the displayed spelling
// stays the one of the first use.
func TagKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Upsert resolves a tag by its normalized name, creating it if needed, and
// registers the question in the tag's backreference set.
// The unique index on nameKey makes this safe against concurrent creates
// (no regex matching involved).
func (m TagModel) Upsert(name string, questionOID primitive.ObjectID) (primitive.ObjectID, error) {

	key := TagKey(name)
	if key == "" {
		return primitive.NilObjectID, ErrTagNameMissing
	}

	filter := bson.D{{Key: "nameKey", Value: key}}

	fields := bson.D{
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "name", Value: strings.TrimSpace(name)},
			{Key: "nameKey", Value: key},
			{Key: "createdTS", Value: time.Now()},
		}},
		{Key: "$addToSet", Value: bson.D{{Key: "questions", Value: questionOID}}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	var tag Tag
	err := m.Collection.FindOneAndUpdate(ctx, filter, fields, opts).Decode(&tag)
	if err != nil {
		return primitive.NilObjectID, helpers.WrapError(err, helpers.FuncName())
	}

	return tag.ID, nil
}

// PullQuestion removes a question id from every tag's backreference set
// (part of the question delete cascade)
func (m TagModel) PullQuestion(questionOID primitive.ObjectID) error {

	filter := bson.D{{Key: "questions", Value: questionOID}}
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "questions", Value: questionOID}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	_, err := m.Collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// GetTag returns one tag (used as header of the tag's question page)
func (m TagModel) GetTag(tagID string) (*Tag, error) {

	id, err := primitive.ObjectIDFromHex(tagID)
	if err != nil {
		return nil, apperror.ErrNoData
	}

	var tag Tag

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &tag, nil
}

// GetNames resolves the display names of the given tag ids (in input order)
func (m TagModel) GetNames(tagIDs []primitive.ObjectID) ([]string, error) {

	if len(tagIDs) == 0 {
		return nil, nil
	}

	fields := bson.D{
		{Key: "name", Value: 1},
	}

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: tagIDs}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Collection.Find(ctx, filter, options.Find().SetProjection(fields))
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var tags []Tag
	err = cursor.All(ctx, &tags)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// restore the order of the question's tag list
	names := make([]string, 0, len(tagIDs))
	for _, id := range tagIDs {
		for _, t := range tags {
			if t.ID == id {
				names = append(names, t.Name)
				break
			}
		}
	}

	return names, nil
}

// SearchTags lists or searches tags
func (m TagModel) SearchTags(searchTerm string, filter string, page int64, pageSize int64) ([]TagListItem, bool, error) {

	if pageSize <= 0 {
		pageSize = 20
	}
	skip := (page - 1) * pageSize
	if skip < 0 {
		skip = 0
	}

	query := bson.D{}
	if searchTerm != "" {
		query = bson.D{
			{Key: "name", Value: primitive.Regex{Pattern: regexEscape(searchTerm), Options: "i"}},
		}
	}

	sort := bson.D{}
	switch filter {
	case "popular":
		sort = bson.D{{Key: "questions", Value: -1}}
	case "recent":
		sort = bson.D{{Key: "createdTS", Value: -1}}
	case "name":
		sort = bson.D{{Key: "nameKey", Value: 1}}
	case "old":
		sort = bson.D{{Key: "createdTS", Value: 1}}
	default:
		sort = bson.D{{Key: "nameKey", Value: 1}}
	}

	opts := options.Find().SetSkip(skip).SetLimit(pageSize).SetSort(sort)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var tags []Tag
	err = cursor.All(ctx, &tags)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if tags == nil {
		return nil, false, apperror.ErrNoData
	}

	total, err := m.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}
	isNext := total > skip+int64(len(tags))

	// copy data to reduced list-struct
	var tagList []TagListItem
	var item TagListItem

	for _, t := range tags {
		item.ID = t.ID
		item.Name = t.Name
		item.QuestionCount = int32(len(t.Questions))

		tagList = append(tagList, item)
	}

	return tagList, isNext, nil
}

// PopularTags returns the most used tags (right sidebar)
func (m TagModel) PopularTags() ([]TagListItem, error) {

	// count the backreferences in the DB rather than loading the arrays
	projectStage := bson.D{
		{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "questionCount", Value: bson.D{
				{Key: "$size", Value: bson.D{
					{Key: "$ifNull", Value: bson.A{"$questions", bson.A{}}},
				}},
			}},
		}},
	}
	sortStage := bson.D{{Key: "$sort", Value: bson.D{{Key: "questionCount", Value: -1}}}}
	limitStage := bson.D{{Key: "$limit", Value: 5}}

	opts := options.Aggregate().SetMaxTime(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	cursor, err := m.Collection.Aggregate(ctx, mongo.Pipeline{
		projectStage,
		sortStage,
		limitStage}, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var rows []bson.M
	err = cursor.All(ctx, &rows)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var tagList []TagListItem
	var item TagListItem

	for _, r := range rows {
		item.ID = r["_id"].(primitive.ObjectID)
		item.Name, _ = r["name"].(string)
		item.QuestionCount = r["questionCount"].(int32)

		tagList = append(tagList, item)
	}

	return tagList, nil
}
