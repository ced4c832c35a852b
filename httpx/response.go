package httpx

import (
	"github.com/diewo77/decor-booking/i18n"
	"github.com/gin-gonic/gin"
)

// LangKey is the gin context key holding the negotiated language.
const LangKey = "lang"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Lang returns the request language set by the language middleware.
func Lang(c *gin.Context) string {
	if v := c.GetString(LangKey); v != "" {
		return v
	}
	return i18n.DefaultLang
}

// Error aborts the request with a localized error envelope.
// Field violations passed as details are translated too.
func Error(c *gin.Context, status int, code string, details any) {
	lang := Lang(c)
	if v, ok := details.(map[string]string); ok {
		details = i18n.Violations(lang, v)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   code,
		Message: i18n.T(lang, code),
		Details: details,
	})
}
