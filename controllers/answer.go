package controllers

import (
	"net/http"
	"strconv"

	"dev-overflow/apperror"
	"dev-overflow/authentication"
	"dev-overflow/environment"
	"dev-overflow/helpers"
	"dev-overflow/models"

	"github.com/gin-gonic/gin"
)

// AddAnswer creates a new answer to a question
func AddAnswer(c *gin.Context) {

	var (
		err      error
		data     models.Answer
		apiError ErrorResponse
	)

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

	// validate request
	answer, err := environment.Env.AnswerModel.Validate(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// apply userID from token (username resolved in model)
	answer.AuthorID = helpers.ObjectID(userID)

	id, err := environment.Env.AnswerModel.CreateAnswer(answer)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Created{id})
}

// ListAnswers returns a question's answers
// format => http://localhost:3000/questions/:id/answers?filter=highestUpvotes&page=1
func ListAnswers(c *gin.Context) {

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.Query("pageSize"), 10, 64)

	answers, isNext, err := environment.Env.AnswerModel.ListAnswers(
		c.Param("id"), c.Query("filter"), page, pageSize)
	if err != nil {
		// nothing found (not an error to the client)
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		// technical errors
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Paged{Items: answers, IsNext: isNext})
}

// DeleteAnswer removes an answer (author only)
func DeleteAnswer(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.AnswerModel.DeleteAnswer(c.Param("id"), userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
