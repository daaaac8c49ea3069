package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Rejection messages. Validation and business-rule failures render with
// 400, auth and quote failures with 403.
const (
	msgMissingSymbol      = "must provide a symbol"
	msgMissingShares      = "must provide a positive number of shares"
	msgMissingUsername    = "must provide username"
	msgMissingPassword    = "must provide password"
	msgPasswordMismatch   = "passwords must match"
	msgUsernameTaken      = "username already exists"
	msgInvalidCredentials = "invalid username and/or password"
	msgQuoteUnavailable   = "could not fetch a quote for that symbol"
	msgInsufficientFunds  = "can't afford"
	msgInsufficientShares = "trying to sell more shares than you have"
	msgMissingFunds       = "must provide a positive amount"
)

// reject renders a rejection page equivalent: a JSON error with the
// mapped status.
func reject(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// fail maps an unhandled fault to a generic 500 rejection.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.Log.WithError(err).WithField("op", op).Error("request failed")
	reject(c, http.StatusInternalServerError, "something went wrong")
}
