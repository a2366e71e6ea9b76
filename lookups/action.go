package lookups

// interaction action kinds, stored as strings in the interactions collection
// (readable in the DB and stable across re-deployments, unlike iota values)

const (
	ActionAskQuestion      = "ask_question"
	ActionAnswer           = "answer"
	ActionUpvoteQuestion   = "upvote_question"
	ActionDownvoteQuestion = "downvote_question"
	ActionUpvoteAnswer     = "upvote_answer"
	ActionDownvoteAnswer   = "downvote_answer"
	ActionView             = "view"
)

// content types referenced by votes and interactions
const (
	ContentQuestion = "question"
	ContentAnswer   = "answer"
)

// VoteAction returns the interaction kind for a vote on a content type
func VoteAction(contentType string, up bool) string {

	var str = ""

	switch {
	case contentType == ContentQuestion && up:
		str = ActionUpvoteQuestion
	case contentType == ContentQuestion && !up:
		str = ActionDownvoteQuestion
	case contentType == ContentAnswer && up:
		str = ActionUpvoteAnswer
	case contentType == ContentAnswer && !up:
		str = ActionDownvoteAnswer
	}

	return str
}
