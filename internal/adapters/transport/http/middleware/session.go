package middleware

import (
	"context"
	"net/http"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxUser  = "account.user"
	ctxToken = "account.token"
)

type SessionReader interface {
	Resolve(r *http.Request) (string, bool)
	Authenticate(ctx context.Context, token string) (model.User, error)
}

// RequireSession aborts with the need-login envelope unless the request
// carries a live session. onFail writes that envelope.
func RequireSession(sessions SessionReader, log *zap.Logger, onFail func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := sessions.Resolve(c.Request)
		if !ok {
			onFail(c, customErrors.ErrNeedLogin)
			c.Abort()
			return
		}

		user, err := sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !customErrors.IsNeedLogin(err) {
				log.Warn("session lookup failed", zap.Error(err))
			}
			onFail(c, err)
			c.Abort()
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxToken, token)
		c.Next()
	}
}

// RequireAdmin must run after RequireSession.
func RequireAdmin(onFail func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			onFail(c, customErrors.ErrNeedLogin)
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			onFail(c, customErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

func CurrentToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}
