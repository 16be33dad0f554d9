package middleware

import (
	"net/http"
	"strings"

	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/policy"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Authenticate resolves an optional bearer token into a policy.Actor stored
// in the gin context. Requests without an Authorization header continue as
// anonymous; a header that does not resolve to a user is rejected with 401.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(actorKey, policy.Anonymous())
			c.Next()
			return
		}

		// format: "Bearer <token>"
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			AbortWithError(c, apperror.Unauthorized("invalid authorization header format"))
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(actorKey, user.Actor())
		c.Next()
	}
}

// ActorFrom returns the caller set by Authenticate, or an anonymous actor.
func ActorFrom(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(policy.Actor); ok {
			return a
		}
	}
	return policy.Anonymous()
}

// SetActor stores a as the caller.
func SetActor(c *gin.Context, a policy.Actor) {
	c.Set(actorKey, a)
}

// Require rejects the request unless rule allows the caller for the request
// method.
func Require(rule policy.Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := apperror.FromDecision(rule(c.Request.Method, ActorFrom(c))); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// AbortWithError writes err as the JSON error body and aborts the chain.
func AbortWithError(c *gin.Context, err error) {
	e := apperror.From(err)
	c.AbortWithStatusJSON(e.HTTPStatus(), ErrorBody(e))
}

// ErrorBody is the JSON shape of every error response.
func ErrorBody(e *apperror.Error) gin.H {
	body := gin.H{"error": e.Message}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	return body
}

// NoRoute answers unknown paths in the same error shape.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
}
