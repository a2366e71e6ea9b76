package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validInput() QuestionInput {
	return QuestionInput{
		Title:    "How do I center a div?",
		Content:  "I have tried everything.",
		TagNames: []string{"css"},
	}
}

func TestValidateQuestion(t *testing.T) {

	var model QuestionModel

	cleaned, err := model.Validate(validInput())
	assert.NoError(t, err)
	assert.Equal(t, "How do I center a div?", cleaned.Title)

	// surrounding whitespace is stripped
	input := validInput()
	input.Title = "  How do I center a div?  "
	input.TagNames = []string{" CSS "}
	cleaned, err = model.Validate(input)
	assert.NoError(t, err)
	assert.Equal(t, "How do I center a div?", cleaned.Title)
	assert.Equal(t, "CSS", cleaned.TagNames[0])
}

func TestValidateQuestionTitle(t *testing.T) {

	var model QuestionModel

	input := validInput()
	input.Title = "Why"
	_, err := model.Validate(input)
	assert.Equal(t, ErrTitleLength, err)

	input = validInput()
	input.Title = strings.Repeat("x", 131)
	_, err = model.Validate(input)
	assert.Equal(t, ErrTitleLength, err)

	input = validInput()
	input.Title = strings.Repeat("x", 130)
	_, err = model.Validate(input)
	assert.NoError(t, err)

	// bounds count characters, not bytes
	input = validInput()
	input.Title = strings.Repeat("ü", 130) // 260 bytes
	_, err = model.Validate(input)
	assert.NoError(t, err)

	input = validInput()
	input.Title = "日本語?" // 4 runes, 10 bytes
	_, err = model.Validate(input)
	assert.Equal(t, ErrTitleLength, err)
}

func TestValidateQuestionContent(t *testing.T) {

	var model QuestionModel

	input := validInput()
	input.Content = "   "
	_, err := model.Validate(input)
	assert.Equal(t, ErrContentMissing, err)
}

func TestValidateQuestionTags(t *testing.T) {

	var model QuestionModel

	input := validInput()
	input.TagNames = []string{}
	_, err := model.Validate(input)
	assert.Equal(t, ErrTagCount, err)

	input = validInput()
	input.TagNames = []string{"go", "mongodb", "gin", "redis"}
	_, err = model.Validate(input)
	assert.Equal(t, ErrTagCount, err)

	input = validInput()
	input.TagNames = []string{"go", "mongodb", "gin"}
	_, err = model.Validate(input)
	assert.NoError(t, err)

	input = validInput()
	input.TagNames = []string{"go", "  "}
	_, err = model.Validate(input)
	assert.Equal(t, ErrTagNameMissing, err)
}
