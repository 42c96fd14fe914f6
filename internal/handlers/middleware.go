package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/mo"

	"example.com/storefront/internal/identity"
	"example.com/storefront/internal/validation"
)

const (
	ctxIdentity = "identity"
	ctxToken    = "token"

	MaxBodyBytes = 1 << 20
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (identity.Identity, error)
}

type RoleChecker interface {
	IsAdmin(ctx context.Context, id uuid.UUID) (bool, error)
}

func bearerToken(c *gin.Context) string {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
}

// Authenticate resolves the bearer token to an identity and stores it on the
// context for the handlers that follow.
func (r Responder) Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			r.abort(c, http.StatusUnauthorized, "access token required", nil)
			return
		}
		id, err := v.VerifyToken(c.Request.Context(), tok)
		if errors.Is(err, identity.ErrInvalidToken) {
			r.abort(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		if err != nil {
			r.fail(c, err)
			return
		}
		c.Set(ctxIdentity, id)
		c.Set(ctxToken, tok)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func (r Responder) RequireAdmin(rc RoleChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			r.abort(c, http.StatusUnauthorized, "access token required", nil)
			return
		}
		admin, err := rc.IsAdmin(c.Request.Context(), id.ID)
		if err != nil {
			r.fail(c, err)
			return
		}
		if !admin {
			r.abort(c, http.StatusForbidden, "access denied: admin role required", nil)
			return
		}
		c.Next()
	}
}

// Validate checks the JSON body against schema before the handler runs. The
// body is put back so the handler can bind it.
func (r Responder) Validate(schema validation.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
		bts := mo.TupleToResult[[]byte](io.ReadAll(c.Request.Body))
		if bts.IsError() {
			var tooBig *http.MaxBytesError
			if errors.As(bts.Error(), &tooBig) {
				r.abort(c, http.StatusRequestEntityTooLarge, "request body too large", nil)
				return
			}
			r.abort(c, http.StatusBadRequest, "could not read request body", bts.Error())
			return
		}
		body := bts.MustGet()
		if err := validation.Validate(schema, body); err != nil {
			r.abort(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}

func currentToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}
