package handlers

import (
	"net/http"

	"jahit.id/workshop/middleware"
	"jahit.id/workshop/models"
)

// middlewareUser returns the authenticated user, or nil when the
// request carries no claims (public portal routes).
func middlewareUser(r *http.Request) *models.User {
	if middleware.GetClaims(r) == nil {
		return nil
	}
	u := middleware.GetUser(r)
	return &u
}
