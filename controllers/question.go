package controllers

import (
	"net/http"
	"strconv"

	"dev-overflow/apperror"
	"dev-overflow/authentication"
	"dev-overflow/environment"
	"dev-overflow/models"

	"github.com/gin-gonic/gin"
)

// AddQuestion creates a new question
func AddQuestion(c *gin.Context) {

	var (
		err      error
		data     models.QuestionInput
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
	input, err := environment.Env.QuestionModel.Validate(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	id, err := environment.Env.QuestionModel.CreateQuestion(input, userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Created{id})
}

// ListQuestions returns the question list (home page)
// format => http://localhost:3000/questions?search=channels&filter=newest&page=1
func ListQuestions(c *gin.Context) {

	search := new(models.QuestionSearch)
	search.SearchTerm = c.Query("search")
	search.Filter = c.Query("filter")
	search.Page, _ = strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	search.PageSize, _ = strconv.ParseInt(c.Query("pageSize"), 10, 64)

	questions, isNext, err := environment.Env.QuestionModel.SearchQuestions(search)
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

	// log the search for result-quality analysis
	var ids []string
	for _, q := range questions {
		ids = append(ids, q.ID.Hex())
	}
	environment.Env.Tracker.SaveSearch(search.SearchTerm, search.Filter, ids)

	c.JSON(http.StatusOK, Paged{Items: questions, IsNext: isNext})
}

// GetQuestion returns the specified question and counts the view.
// The service is public; a session adds the caller's vote state.
func GetQuestion(c *gin.Context) {

	var id = c.Param("id")

	// no error checking because the session is optional
	userID, _ := authentication.Authenticate(c.Request)

	data, err := environment.Env.QuestionModel.GetQuestion(id)
	if err != nil {
		switch err {
		case apperror.ErrNoData:
			c.Status(http.StatusNoContent)
		default:
			status, apiError := HandleError(err)
			c.JSON(status, apiError)
		}
		return
	}

	// count the view (refresh-suppressed per client)
	err = environment.Env.QuestionModel.IncrementView(id, userID, c.ClientIP())
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// wrap the caller's vote around the document
	res := struct {
		*models.Question
		UserVote int32 `json:"userVote"`
	}{Question: data}

	if userID != "" {
		res.UserVote, _ = environment.Env.QuestionModel.UserVote(id, userID)
	}

	c.JSON(http.StatusOK, res)
}

// EditQuestion updates title and content (author only)
func EditQuestion(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	data := struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
	}{}

	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	err = environment.Env.QuestionModel.EditQuestion(c.Param("id"), userID, data.Title, data.Content)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteQuestion removes a question and its dependents (author only)
func DeleteQuestion(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.QuestionModel.DeleteQuestion(c.Param("id"), userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// ListHotQuestions returns the most viewed questions (sidebar)
func ListHotQuestions(c *gin.Context) {

	questions, err := environment.Env.QuestionModel.ListHot()
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// ListRecommendedQuestions returns the personal feed
func ListRecommendedQuestions(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.Query("pageSize"), 10, 64)

	questions, isNext, err := environment.Env.QuestionModel.ListRecommended(userID, page, pageSize)
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Paged{Items: questions, IsNext: isNext})
}

// ListQuestionsByTag returns a tag's questions (tag detail page)
func ListQuestionsByTag(c *gin.Context) {

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.Query("pageSize"), 10, 64)

	questions, isNext, err := environment.Env.QuestionModel.ListByTag(c.Param("id"), page, pageSize)
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Paged{Items: questions, IsNext: isNext})
}
