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

// vote (action) type
const (
	VoteUp      int32 = 1
	VoteDown    int32 = -1
	VoteNeutral int32 = 0 // revoked or not voted
)

// reputation steps per vote, voter and author side. an upvote adds the
// step, a downvote subtracts it, a retraction restores it and a switch
// moves by twice the step (opposite effect removed plus new one applied)
const (
	repVoterStep  = int32(2)
	repAuthorStep = int32(10)
)

// Vote is the request payload of a vote action
type Vote struct {
	ContentType string `json:"contentType" binding:"required"` // lookups.ContentQuestion | ContentAnswer
	ContentID   string `json:"contentID" binding:"required"`
	Direction   int32  `json:"direction"` // VoteUp | VoteDown
}

// VoteResult is the authoritative state returned after a vote action.
// Clients render from this - they never compute vote state themselves.
type VoteResult struct {
	UpVotes   int32 `json:"upVotes"`
	DownVotes int32 `json:"downVotes"`
	UserVote  int32 `json:"userVote"` // the caller's vote after the action
}

// voteOutcome is the pure transition plan derived from the stored state
type voteOutcome struct {
	addTo           string // field receiving the voter, "" if none
	pullFrom        string // field losing the voter, "" if none
	voterDelta      int32
	authorDelta     int32
	record          bool // append a new vote interaction
	retract         bool // remove the interaction of the same direction
	retractOpposite bool // remove the interaction of the opposite direction
	userVote        int32
}

// transition derives what a vote in the given direction does, based on the
// voter's membership in the stored voter sets. The same direction again is
// a toggle (retract), the opposite direction is a switch.
func transition(direction int32, hasUp bool, hasDown bool) voteOutcome {

	if direction == VoteUp {
		switch {
		case hasUp: // toggle off
			return voteOutcome{
				pullFrom:   "upVotes",
				voterDelta: -repVoterStep, authorDelta: -repAuthorStep,
				retract:  true,
				userVote: VoteNeutral,
			}
		case hasDown: // switch down -> up
			return voteOutcome{
				addTo: "upVotes", pullFrom: "downVotes",
				voterDelta: 2 * repVoterStep, authorDelta: 2 * repAuthorStep,
				record: true, retractOpposite: true,
				userVote: VoteUp,
			}
		default: // fresh upvote
			return voteOutcome{
				addTo:      "upVotes",
				voterDelta: repVoterStep, authorDelta: repAuthorStep,
				record:   true,
				userVote: VoteUp,
			}
		}
	}

	// downvote, the negative mirror
	switch {
	case hasDown: // toggle off restores what the downvote cost
		return voteOutcome{
			pullFrom:   "downVotes",
			voterDelta: repVoterStep, authorDelta: repAuthorStep,
			retract:  true,
			userVote: VoteNeutral,
		}
	case hasUp: // switch up -> down
		return voteOutcome{
			addTo: "downVotes", pullFrom: "upVotes",
			voterDelta: -2 * repVoterStep, authorDelta: -2 * repAuthorStep,
			record: true, retractOpposite: true,
			userVote: VoteDown,
		}
	default: // fresh downvote
		return voteOutcome{
			addTo:      "downVotes",
			voterDelta: -repVoterStep, authorDelta: -repAuthorStep,
			record:   true,
			userVote: VoteDown,
		}
	}
}

// VoteModel provides the logics to the data type
type VoteModel struct {
	Questions *mongo.Collection
	Answers   *mongo.Collection
	Guard     client.Guard
	// functions of other models, injected to avoid an import cycle
	AddReputation      func(userOID primitive.ObjectID, delta int32) error
	RecordInteraction  func(interaction *Interaction) error
	RetractInteraction func(contentType string, contentOID primitive.ObjectID, action string) error
}

// voteDoc is the slice of a content document the vote logic works on
type voteDoc struct {
	AuthorID   primitive.ObjectID   `bson:"author"`
	UpVotes    []primitive.ObjectID `bson:"upVotes"`
	DownVotes  []primitive.ObjectID `bson:"downVotes"`
	Tags       []primitive.ObjectID `bson:"tags"`     // questions only
	QuestionID primitive.ObjectID   `bson:"question"` // answers only
}

// CastVote applies one vote action against a question or an answer.
// The stored voter sets decide the transition; whatever the client believes
// the current vote to be is ignored. A duplicate in-flight vote on the same
// content by the same user is a no-op that returns the current state.
func (v VoteModel) CastVote(vote Vote, userID string) (*VoteResult, error) {

	if vote.Direction != VoteUp && vote.Direction != VoteDown {
		return nil, ErrInvalidVote
	}

	collection, err := v.collection(vote.ContentType)
	if err != nil {
		return nil, err
	}

	contentOID, err := primitive.ObjectIDFromHex(vote.ContentID)
	if err != nil {
		return nil, apperror.ErrNoData
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidUser
	}

	key := userID + "_vote_" + vote.ContentID
	if !v.Guard.Begin(key) {
		// second click while the first is still running - report current state
		return v.currentState(collection, contentOID, userOID)
	}
	defer v.Guard.End(key)

	doc, err := v.readDoc(collection, contentOID)
	if err != nil {
		return nil, err
	}

	// authorship does not matter here: voting on own content simply lands
	// both deltas on the same account
	outcome := transition(vote.Direction, contains(doc.UpVotes, userOID), contains(doc.DownVotes, userOID))

	// apply both set changes in one update so up and down membership
	// can never overlap
	fields := bson.D{}
	if outcome.addTo != "" {
		fields = append(fields, bson.E{Key: "$addToSet", Value: bson.D{{Key: outcome.addTo, Value: userOID}}})
	}
	if outcome.pullFrom != "" {
		fields = append(fields, bson.E{Key: "$pull", Value: bson.D{{Key: outcome.pullFrom, Value: userOID}}})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	var updated voteDoc
	err = collection.FindOneAndUpdate(ctx, bson.M{"_id": contentOID}, fields, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// keep the interaction ledger in lockstep with the vote state
	err = v.syncInteractions(vote, contentOID, userOID, doc, outcome)
	if err != nil {
		return nil, err
	}

	err = v.AddReputation(userOID, outcome.voterDelta)
	if err != nil {
		return nil, err
	}
	err = v.AddReputation(doc.AuthorID, outcome.authorDelta)
	if err != nil {
		return nil, err
	}

	result := new(VoteResult)
	result.UpVotes = int32(len(updated.UpVotes))
	result.DownVotes = int32(len(updated.DownVotes))
	result.UserVote = outcome.userVote

	return result, nil
}

func (v VoteModel) collection(contentType string) (*mongo.Collection, error) {
	switch contentType {
	case lookups.ContentQuestion:
		return v.Questions, nil
	case lookups.ContentAnswer:
		return v.Answers, nil
	default:
		return nil, ErrInvalidContentType
	}
}

func (v VoteModel) readDoc(collection *mongo.Collection, contentOID primitive.ObjectID) (*voteDoc, error) {

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "author", Value: 1},
		{Key: "upVotes", Value: 1},
		{Key: "downVotes", Value: 1},
		{Key: "tags", Value: 1},
		{Key: "question", Value: 1},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	var doc voteDoc
	err := collection.FindOne(ctx, bson.M{"_id": contentOID}, options.FindOne().SetProjection(fields)).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &doc, nil
}

func (v VoteModel) syncInteractions(vote Vote, contentOID primitive.ObjectID, userOID primitive.ObjectID, doc *voteDoc, outcome voteOutcome) error {

	up := vote.Direction == VoteUp

	if outcome.retract {
		err := v.RetractInteraction(vote.ContentType, contentOID, lookups.VoteAction(vote.ContentType, up))
		if err != nil {
			return err
		}
	}
	if outcome.retractOpposite {
		err := v.RetractInteraction(vote.ContentType, contentOID, lookups.VoteAction(vote.ContentType, !up))
		if err != nil {
			return err
		}
	}
	if outcome.record {
		interaction := &Interaction{
			UserID: userOID,
			Action: lookups.VoteAction(vote.ContentType, up),
		}
		if vote.ContentType == lookups.ContentQuestion {
			interaction.QuestionID = contentOID
			interaction.Tags = doc.Tags
		} else {
			interaction.QuestionID = doc.QuestionID
			interaction.AnswerID = contentOID
		}
		return v.RecordInteraction(interaction)
	}

	return nil
}

// currentState reads the counts and the user's vote without changing anything
func (v VoteModel) currentState(collection *mongo.Collection, contentOID primitive.ObjectID, userOID primitive.ObjectID) (*VoteResult, error) {

	doc, err := v.readDoc(collection, contentOID)
	if err != nil {
		return nil, err
	}

	result := new(VoteResult)
	result.UpVotes = int32(len(doc.UpVotes))
	result.DownVotes = int32(len(doc.DownVotes))
	switch {
	case contains(doc.UpVotes, userOID):
		result.UserVote = VoteUp
	case contains(doc.DownVotes, userOID):
		result.UserVote = VoteDown
	default:
		result.UserVote = VoteNeutral
	}

	return result, nil
}

// userVote reports a user's vote on a content item; shared by the
// question and answer models for their detail endpoints
func userVote(collection *mongo.Collection, contentID string, userID string) (int32, error) {

	contentOID, err := primitive.ObjectIDFromHex(contentID)
	if err != nil {
		return VoteNeutral, apperror.ErrNoData
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return VoteNeutral, ErrInvalidUser
	}

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "upVotes", Value: 1},
		{Key: "downVotes", Value: 1},
	}

	data := struct {
		UpVotes   []primitive.ObjectID `bson:"upVotes"`
		DownVotes []primitive.ObjectID `bson:"downVotes"`
	}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // abort after 10 seconds

	err = collection.FindOne(ctx, bson.M{"_id": contentOID}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return VoteNeutral, apperror.ErrNoData
		}
		return VoteNeutral, helpers.WrapError(err, helpers.FuncName())
	}

	switch {
	case contains(data.UpVotes, userOID):
		return VoteUp, nil
	case contains(data.DownVotes, userOID):
		return VoteDown, nil
	default:
		return VoteNeutral, nil
	}
}
