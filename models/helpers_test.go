package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stretchr/testify/assert"
)

func TestRegexEscape(t *testing.T) {

	assert.Equal(t, "react", regexEscape("react"))
	assert.Equal(t, `next\.js`, regexEscape("next.js"))
	assert.Equal(t, `c\+\+`, regexEscape("c++"))
	assert.Equal(t, `\[go\]`, regexEscape("[go]"))
}

func TestContains(t *testing.T) {

	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.True(t, contains([]primitive.ObjectID{a, b}, a))
	assert.False(t, contains([]primitive.ObjectID{a}, b))
	assert.False(t, contains(nil, a))
}
