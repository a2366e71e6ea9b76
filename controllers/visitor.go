package controllers

import (
	"fmt"
	"net/http"
	"time"

	"dev-overflow/apperror"
	"dev-overflow/authentication"
	"dev-overflow/environment"

	"github.com/gin-gonic/gin"
)

// GetVisits returns the "live" view count of a question from the analytics cache
// http://localhost:3000/stats/visits?id=604b6859f09f3aeecc9215c5&startDT=2021-03-20
func GetVisits(c *gin.Context) {

	var (
		err      error
		apiError ErrorResponse
	)

	id := c.Query("id")
	if id == "" {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	startDT, err := parseStart(c.Query("startDT"))
	if err != nil {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	visits, err := environment.Env.Tracker.GetVisits(id, startDT)
	if err != nil {
		fmt.Println(err)
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	// wrap response into an object
	res := struct {
		Visits int64 `json:"visits"`
	}{visits}

	c.JSON(http.StatusOK, res)
}

// ListVisitors returns the latest visitors of a question (author tools)
func ListVisitors(c *gin.Context) {

	var apiError ErrorResponse

	_, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	id := c.Query("id")
	if id == "" {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	startDT, err := parseStart(c.Query("startDT"))
	if err != nil {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	visitors, err := environment.Env.Tracker.ListVisitors(id, startDT)
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

	c.JSON(http.StatusOK, visitors)
}

// default: 7 days back (starting at 00:00:00)
func parseStart(startStr string) (time.Time, error) {

	if startStr == "" {
		startDT := time.Now().AddDate(0, 0, -7)
		return time.Date(startDT.Year(), startDT.Month(), startDT.Day(), 0, 0, 0, 0, startDT.UTC().Location()), nil
	}

	return time.Parse("2006-01-02", startStr)
}
