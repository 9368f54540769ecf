package http

import (
	"net/http"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	StatusSuccess   = 0
	StatusError     = 1
	StatusNeedLogin = 10
)

// Response is the envelope every endpoint answers with. The HTTP status is
// always 200; callers branch on Status.
type Response struct {
	Status int    `json:"status"`
	Msg    string `json:"msg,omitempty"`
	Data   any    `json:"data,omitempty"`
}

func writeSuccess(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, Response{Status: StatusSuccess, Msg: msg, Data: data})
}

func writeError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case customErrors.IsNeedLogin(err):
		c.JSON(http.StatusOK, Response{Status: StatusNeedLogin, Msg: "need login"})
	case customErrors.IsInternal(err):
		_ = c.Error(err)
		log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusOK, Response{Status: StatusError, Msg: customErrors.ErrInternal.Error()})
	case customErrors.IsInvalidArgument(err),
		customErrors.IsInvalidCredentials(err),
		customErrors.IsNotFound(err),
		customErrors.IsAlreadyExists(err),
		customErrors.IsInvalidToken(err),
		customErrors.IsInvalidPassword(err),
		customErrors.IsForbidden(err),
		customErrors.IsNoQuestion(err),
		customErrors.IsNotUpdated(err):
		c.JSON(http.StatusOK, Response{Status: StatusError, Msg: err.Error()})
	default:
		_ = c.Error(err)
		log.Error("unclassified error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusOK, Response{Status: StatusError, Msg: customErrors.ErrInternal.Error()})
	}
}
