package controllers

import (
	"net/http"
	"testing"

	"dev-overflow/apperror"
	"dev-overflow/models"

	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {

	tests := []struct {
		err    error
		status int
		code   int32
	}{
		// a mutation on a vanished or unknown record is not a server problem
		{apperror.ErrNoData, http.StatusNotFound, DataNotFound},
		{apperror.ErrDenied, http.StatusForbidden, ActionDenied},
		{apperror.ErrRecordChanged, http.StatusConflict, RecordChanged},
		{models.ErrTitleLength, http.StatusUnprocessableEntity, TitleLength},
		{models.ErrInvalidVote, http.StatusUnprocessableEntity, InvalidVote},
		{assert.AnError, http.StatusInternalServerError, SystemError},
	}

	for _, tc := range tests {
		status, apiError := HandleError(tc.err)
		assert.Equal(t, tc.status, status)
		assert.Equal(t, tc.code, apiError.Code)
		assert.NotEmpty(t, apiError.Message)
	}

	status, apiError := HandleError(nil)
	assert.Equal(t, 0, status)
	assert.Equal(t, int32(0), apiError.Code)
}
