package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// regexEscape neutralizes regex metacharacters in user-supplied search terms
// so they are matched literally (LIKE %term%)
func regexEscape(term string) string {

	specials := `\.+*?()|[]{}^$`

	var b strings.Builder
	for _, r := range term {
		if strings.ContainsRune(specials, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}

	return b.String()
}

// contains checks the membership of a user in a vote set
func contains(set []primitive.ObjectID, oid primitive.ObjectID) bool {
	for _, v := range set {
		if v == oid {
			return true
		}
	}
	return false
}
