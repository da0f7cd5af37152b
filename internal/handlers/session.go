package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionCookie = "wizard_session"

// sessionID returns the caller's wizard session ID, issuing a cookie on
// first contact. The ID only keys in-memory state; nothing about it is
// a credential.
func sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.New().String()
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	return id
}

// optionalSessionID returns the session ID if the caller already has
// one, without issuing a new cookie.
func optionalSessionID(c *gin.Context) (string, bool) {
	id, err := c.Cookie(sessionCookie)
	return id, err == nil && id != ""
}
