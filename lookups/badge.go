package lookups

// Registry of badge criteria types
const (
	BCquestionCount = iota
	BCanswerCount
	BCquestionUpvotes
	BCanswerUpvotes
	BCtotalViews
)

// BadgeCriteria returns names of the available criteria types
func BadgeCriteria(bc int) string {

	var str = ""

	switch {
	case bc == BCquestionCount:
		str = "questions asked"
	case bc == BCanswerCount:
		str = "answers given"
	case bc == BCquestionUpvotes:
		str = "question upvotes received"
	case bc == BCanswerUpvotes:
		str = "answer upvotes received"
	case bc == BCtotalViews:
		str = "total views received"
	}

	return str
}

// BadgeThresholds returns the ascending bronze/silver/gold thresholds
// for a criteria type. every threshold met awards one badge of its tier
// (cumulative - gold counts do not exclude silver and bronze)
func BadgeThresholds(bc int) [3]int64 {

	// counts for content and upvotes, raw numbers for views
	switch bc {
	case BCtotalViews:
		return [3]int64{1000, 10000, 100000}
	default:
		return [3]int64{10, 50, 100}
	}
}
