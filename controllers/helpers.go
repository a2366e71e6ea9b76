package controllers

// Created is the standard response for new items
type Created struct {
	ID string `json:"id"`
}

// Paged wraps list responses that support load-more paging
type Paged struct {
	Items  interface{} `json:"items"`
	IsNext bool        `json:"isNext"`
}
