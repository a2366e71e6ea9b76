package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAnswer(t *testing.T) {

	var model AnswerModel

	cleaned, err := model.Validate(Answer{Content: "  use flexbox  "})
	assert.NoError(t, err)
	assert.Equal(t, "use flexbox", cleaned.Content)

	_, err = model.Validate(Answer{Content: "   "})
	assert.Equal(t, ErrAnswerEmpty, err)
}
