package controllers

import (
	"net/http"

	"dev-overflow/authentication"
	"dev-overflow/environment"
	"dev-overflow/models"

	"github.com/gin-gonic/gin"
)

// CastVote applies a vote action to a question or answer and returns the
// authoritative state. The server derives toggle/switch from its own
// records - the request only says which button was pressed.
func CastVote(c *gin.Context) {

	var (
		err      error
		data     models.Vote
		apiError ErrorResponse
	)

	// for enhanced security, read user from token
	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	// use "shouldBind" not all fields are required in this context
	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	result, err := environment.Env.VoteModel.CastVote(data, userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUserVote returns the caller's vote on an answer
// http://localhost:3000/answers/6055d819671e62579fcc2151/vote
func GetUserVote(c *gin.Context) {

	// always read userID from token (param is ignored)
	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	vote, err := environment.Env.AnswerModel.UserVote(c.Param("id"), userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// wrap response into an object
	res := struct {
		Vote int32 `json:"vote"`
	}{vote}

	c.JSON(http.StatusOK, res)
}
