package controllers

import (
	"net/http"
	"strconv"

	"dev-overflow/apperror"
	"dev-overflow/authentication"
	"dev-overflow/environment"

	"github.com/gin-gonic/gin"
)

// GetUser sends a profile with its statistics and badges
func GetUser(c *gin.Context) {

	var id = c.Param("id")

	user, err := environment.Env.UserModel.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusNoContent, nil)
		return
	}

	stats, err := environment.Env.UserModel.GetUserStats(id)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	res := struct {
		User  interface{} `json:"user"`
		Stats interface{} `json:"stats"`
	}{user, stats}

	c.JSON(http.StatusOK, res)
}

// ListUsers returns the community page
// format => http://localhost:3000/users?search=jsm&filter=top_contributors&page=1
func ListUsers(c *gin.Context) {

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.Query("pageSize"), 10, 64)

	users, isNext, err := environment.Env.UserModel.SearchUsers(
		c.Query("search"), c.Query("filter"), page, pageSize)
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

	c.JSON(http.StatusOK, Paged{Items: users, IsNext: isNext})
}

// ToggleSave adds or removes a question from the caller's saved collection
func ToggleSave(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	saved, err := environment.Env.UserModel.ToggleSave(userID, c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// wrap response into an object
	res := struct {
		Saved bool `json:"saved"`
	}{saved}

	c.JSON(http.StatusOK, res)
}

// ListSaved returns the caller's saved questions
func ListSaved(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	ids, err := environment.Env.UserModel.GetSavedIDs(userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	questions, err := environment.Env.QuestionModel.ListByIDs(ids)
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
