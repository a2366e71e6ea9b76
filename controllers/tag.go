package controllers

import (
	"net/http"
	"strconv"

	"dev-overflow/apperror"
	"dev-overflow/environment"

	"github.com/gin-gonic/gin"
)

// ListTags returns the tag directory
// format => http://localhost:3000/tags?search=go&filter=popular&page=1
func ListTags(c *gin.Context) {

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.Query("pageSize"), 10, 64)

	tags, isNext, err := environment.Env.TagModel.SearchTags(
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

	c.JSON(http.StatusOK, Paged{Items: tags, IsNext: isNext})
}

// GetTag returns one tag
func GetTag(c *gin.Context) {

	tag, err := environment.Env.TagModel.GetTag(c.Param("id"))
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, tag)
}

// ListPopularTags returns the most used tags (sidebar)
func ListPopularTags(c *gin.Context) {

	tags, err := environment.Env.TagModel.PopularTags()
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, tags)
}
