package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
)

// UserID returns the authenticated Firebase UID for the request, or ""
// when the auth middleware did not run.
func UserID(c *gin.Context) string {
	v := c.GetString(CtxFirebaseUID)
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}

// UserEmail returns the token's email claim when present.
func UserEmail(c *gin.Context) string {
	return c.GetString(CtxEmail)
}
