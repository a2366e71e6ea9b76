package controllers

import (
	"net/http"
	"os"

	"dev-overflow/authentication"
	"dev-overflow/environment"
	"dev-overflow/helpers"
	"dev-overflow/models"

	"github.com/gin-gonic/gin"
)

// Login resolves a verified external identity to the internal account and
// opens a session. The identity provider sits in front of this API - the
// assertion arriving here is assumed to be checked by the gateway.
// A first-time identity creates the account on the fly.
func Login(c *gin.Context) {

	var (
		err      error
		profile  models.ExternalProfile
		apiError ErrorResponse
	)

	if err = c.ShouldBindJSON(&profile); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	dbUser, err := environment.Env.UserModel.GetOrCreateByExternalID(profile)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// create, register & save pair of AT/RT
	err = authentication.CreateTokens(c, dbUser.ID.Hex())
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, &dbUser)
}

// Logout removes the access token from the registry.
// The API never reports an error here so the client can always clear
// its local state and the cookie.
func Logout(c *gin.Context) {

	au, _ := authentication.ExtractTokenMetadata(authentication.AT, c.Request)
	if au != nil {
		// in case of error the token might be expired
		_, _ = authentication.DeleteAuth(au.TokenUUID)
	}

	// "hard log-out" => also remove RT & cookie => logged out on all devices
	au, _ = authentication.ExtractTokenMetadata(authentication.RT, c.Request)
	if au != nil {
		_, _ = authentication.DeleteAuth(au.TokenUUID)
	}

	_ = helpers.DelCookie(c, os.Getenv("JWTCK_NAME"))

	c.Status(http.StatusOK)
}

// Refresh creates a new AT while a valid RT is still around
func Refresh(c *gin.Context) {

	var apiError ErrorResponse

	au, err := authentication.ExtractTokenMetadata(authentication.RT, c.Request)
	if err != nil {
		_, apiError = HandleError(err)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	// is the RT still valid? (middleware does that for ATs)
	err = authentication.TokenValid(authentication.RT, c.Request)
	if err != nil {
		_, apiError = HandleError(err)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	// userID for the new token pair
	userID, err := authentication.FetchAuth(au)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	dbUser, err := environment.Env.UserModel.GetUserByID(userID)
	if err != nil {
		if err == models.ErrInvalidUser {
			status, apiError := HandleError(err)
			c.JSON(status, apiError)
			return
		}
		// "real" error
		c.Status(http.StatusInternalServerError) // make client say "please try again later"
		return
	}

	// if too many RTs (clients) are around for the user, remove all of them,
	// otherwise just the current one. ATs are left in place; those clients can
	// keep working but a further refresh won't succeed
	deleted, err := authentication.DeleteAuths(authentication.RT, userID, au.TokenUUID)
	if err != nil || deleted == 0 { // if anything goes wrong
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	// create, register & save pair of AT/RT
	err = authentication.CreateTokens(c, userID)
	if err != nil {
		_, apiError = HandleError(err)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	environment.Env.UserModel.SetLastSeen(dbUser.ID)

	c.JSON(http.StatusOK, &dbUser)
}
