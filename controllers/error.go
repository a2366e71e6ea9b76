package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"dev-overflow/apperror"
	"dev-overflow/models"
)

// generic custom error types
var (
	ErrInvalidRequest = errors.New("invalid json")
)

// ErrorResponse is the standardized error structure which may be returned by any API
type ErrorResponse struct {
	Code    int32  `json:"code"`
	Message string `json:"msg"`
}

// HandleError encodes the std ErrorResponse
func HandleError(err error) (httpStatus int, apiError ErrorResponse) {

	if err == nil {
		apiError.Code = 0
		apiError.Message = ""

		return 0, apiError
	}

	fmt.Println(err)
	switch err {
	// system
	case apperror.ErrMultipleRecords:
		apiError.Code = MultipleRecords
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusInternalServerError
	case apperror.ErrRecordChanged:
		apiError.Code = RecordChanged
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusConflict
	case apperror.ErrDenied:
		apiError.Code = ActionDenied
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusForbidden
	case apperror.ErrNoData:
		// a mutation aimed at a record that (no longer) exists
		// (list reads map empty results to 204 in their controllers)
		apiError.Code = DataNotFound
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusNotFound
	// user
	case models.ErrInvalidUser:
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	// question
	case models.ErrTitleLength:
		apiError.Code = TitleLength
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrContentMissing:
		apiError.Code = ContentMissing
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrTagCount:
		apiError.Code = TagCount
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrTagNameMissing:
		apiError.Code = TagNameMissing
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	// answer
	case models.ErrAnswerEmpty:
		apiError.Code = AnswerEmpty
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	// vote
	case models.ErrInvalidVote:
		apiError.Code = InvalidVote
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrInvalidContentType:
		apiError.Code = InvalidContentType
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	default:
		apiError.Code = SystemError
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusInternalServerError
	}
	return httpStatus, apiError
}

// Application Error Codes (API Errors)
const (
	// client/api
	InvalidJSON int32 = (10000 + iota)
	InvalidRequest
	InvalidLogin
	// generic system
	MultipleRecords
	RecordChanged
	ActionDenied
	DataNotFound
	// question
	TitleLength
	ContentMissing
	TagCount
	TagNameMissing
	// answer
	AnswerEmpty
	// vote
	InvalidVote
	InvalidContentType
	SystemError = 99999
)

func (er ErrorResponse) String(code int32) string {
	msg := ""
	switch code {
	// common (system)
	case InvalidJSON:
		msg = "Invalid JSON"
	case InvalidRequest:
		msg = "Invalid Request" // JSON was correct, data was not
	case InvalidLogin:
		msg = "invalid identity assertion"
	case MultipleRecords:
		msg = "multiple records found"
	case RecordChanged:
		msg = "action already in progress"
	case ActionDenied:
		msg = "action not allowed"
	case DataNotFound:
		msg = "record not found"
	// question
	case TitleLength:
		msg = "title must be between 5 and 130 characters"
	case ContentMissing:
		msg = "content is required"
	case TagCount:
		msg = "between 1 and 3 tags are required"
	case TagNameMissing:
		msg = "tag names must not be empty"
	// answer
	case AnswerEmpty:
		msg = "answer content is required"
	// vote
	case InvalidVote:
		msg = "vote must be up or down"
	case InvalidContentType:
		msg = "content type must be question or answer"
	case SystemError:
		msg = "Server Problem"
	}

	return msg
}
