package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ISimplifyComplexity/lazyunit/internal/domain/session"
)

// Principal resolves the request's bearer token to a principal snapshot
// and attaches it to the request context, where the dispatcher's context
// provider picks it up. Requests without a token proceed as anonymous;
// gating decides what anonymous principals may activate.
func Principal(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		principal := sessions.Resolve(token)

		ctx := session.WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
