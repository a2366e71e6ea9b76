package main

import (
	"fmt"
	"os"

	"dev-overflow/authentication"
	"dev-overflow/controllers"
	"dev-overflow/middleware"
)

func handleRequests() {
	router.Use(middleware.CORSMiddleware())

	// auth-related
	router.POST("/login", controllers.Login)
	router.POST("/logout", authentication.TokenAuthMiddleware(), controllers.Logout)
	router.POST("/refresh", controllers.Refresh) // do not check whether the AT is still valid (no middleware)

	// user-mgmt / community
	// GET has no BODY (Go/Gin & Postman support it, Angular doesn't) - hence parameters
	// https://xspdf.com/resolution/58530870.html
	router.GET("/users", controllers.ListUsers)
	router.GET("/users/:id", controllers.GetUser)

	// saved collection (current user only, hence no user param)
	router.GET("/user/saved", authentication.TokenAuthMiddleware(), controllers.ListSaved)
	router.POST("/user/saved/:id", authentication.TokenAuthMiddleware(), controllers.ToggleSave)

	// questions
	router.GET("/questions", controllers.ListQuestions)
	router.GET("/questions/hot", controllers.ListHotQuestions)
	router.GET("/questions/recommended", authentication.TokenAuthMiddleware(), controllers.ListRecommendedQuestions)
	router.GET("/questions/:id", controllers.GetQuestion)
	router.POST("/questions", authentication.TokenAuthMiddleware(), controllers.AddQuestion)
	router.PUT("/questions/:id", authentication.TokenAuthMiddleware(), controllers.EditQuestion)
	router.DELETE("/questions/:id", authentication.TokenAuthMiddleware(), controllers.DeleteQuestion)

	// answers
	router.GET("/questions/:id/answers", controllers.ListAnswers)
	router.POST("/answers", authentication.TokenAuthMiddleware(), controllers.AddAnswer)
	router.DELETE("/answers/:id", authentication.TokenAuthMiddleware(), controllers.DeleteAnswer)
	router.GET("/answers/:id/vote", authentication.TokenAuthMiddleware(), controllers.GetUserVote)

	// voting
	router.POST("/vote", authentication.TokenAuthMiddleware(), controllers.CastVote)

	// tags
	router.GET("/tags", controllers.ListTags)
	router.GET("/tags/popular", controllers.ListPopularTags)
	router.GET("/tags/:id", controllers.GetTag)
	router.GET("/tags/:id/questions", controllers.ListQuestionsByTag)

	// analytics
	router.GET("/stats/visits", controllers.GetVisits)
	router.GET("/stats/visitors", authentication.TokenAuthMiddleware(), controllers.ListVisitors)

	// system tools
	router.GET("/monitor/requests/count", authentication.TokenAuthMiddleware(), controllers.CountRequests)
	router.GET("/monitor/requests/dump", authentication.TokenAuthMiddleware(), controllers.DumpRequests)
	router.POST("/monitor/requests/flush", authentication.TokenAuthMiddleware(), controllers.FlushRequests)

	switch os.Getenv("APP_ENV") {
	case "DEV":
		router.Run(":" + os.Getenv("API_PORT"))
	case "PRD":
		router.RunTLS(":"+os.Getenv("API_PORT"), os.Getenv("APP_CERTFILE"), os.Getenv("APP_KEYFILE"))
	default:
		panic(fmt.Errorf("APP_ENV must not set"))
	}
}
