// Package middleware holds the gin middleware shared by the public and admin APIs.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/decor-booking/httpx"
	"github.com/diewo77/decor-booking/i18n"
	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SlowRequest is the latency above which a request is logged as a warning.
const SlowRequest = 200 * time.Millisecond

// RequestLogger logs one line per request with its latency.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = logging.OrNop(log)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if latency > SlowRequest {
			log.Warn("slow request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// Recovery turns a panic into a 500 error envelope.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	log = logging.OrNop(log)
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Error("panic recovered",
			zap.Any("panic", rec),
			zap.String("path", c.Request.URL.Path))
		httpx.Error(c, http.StatusInternalServerError, "internal_error", nil)
	})
}

// Language picks the response language (query > cookie > header) and
// persists a query-provided choice in a cookie for about 30 days.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := ""
		if v, err := c.Cookie("lang"); err == nil {
			lang = v
		}
		if q := c.Query("lang"); q != "" && i18n.Supported(q) {
			lang = q
			c.SetCookie("lang", q, 86400*30, "/", "", false, true)
		}
		if !i18n.Supported(lang) {
			lang = i18n.DetectLanguage(c.GetHeader("Accept-Language"))
		}
		c.Set(httpx.LangKey, lang)
		c.Next()
	}
}

// CORS allows the configured origins; an empty list allows any origin without credentials.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "Accept-Language"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// AdminRole is the role claim required on admin routes.
const AdminRole = "admin"

var errSigningMethod = errors.New("unexpected signing method")

// AdminAuth requires a Bearer HS256 token signed with secret carrying role=admin.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			httpx.Error(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		raw := c.GetHeader("Authorization")
		if len(raw) > 7 && strings.EqualFold(raw[:7], "Bearer ") {
			raw = raw[7:]
		} else {
			httpx.Error(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errSigningMethod
			}
			return []byte(secret), nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			httpx.Error(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if role, _ := claims["role"].(string); role != AdminRole {
			httpx.Error(c, http.StatusForbidden, "forbidden", nil)
			return
		}
		if sub, err := claims.GetSubject(); err == nil {
			c.Set("admin", sub)
		}
		c.Next()
	}
}

// AdminToken signs a token accepted by AdminAuth.
func AdminToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": AdminRole,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
