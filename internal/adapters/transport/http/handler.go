package http

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/middleware"
	appsvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/session"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Sessions is the part of session.Manager the handlers use.
type Sessions interface {
	middleware.SessionReader
	Issue(ctx context.Context, w http.ResponseWriter, token string, user model.User) error
	Refresh(ctx context.Context, token string, user model.User) error
	Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

type Handler struct {
	svc      appsvc.Service
	sessions Sessions
	log      *zap.Logger
}

func NewHandler(svc appsvc.Service, sessions Sessions, log *zap.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, log: log}
}

// Register mounts the account endpoints on r.
func (h *Handler) Register(r gin.IRouter) {
	fail := func(c *gin.Context, err error) { writeError(c, h.log, err) }
	auth := middleware.RequireSession(h.sessions, h.log, fail)

	user := r.Group("/user")
	user.POST("/login", h.login)
	user.GET("/logout", h.logout)
	user.POST("/logout", h.logout)
	user.POST("/register", h.register)
	user.POST("/check_valid", h.checkValid)
	user.POST("/forget_get_question", h.forgetGetQuestion)
	user.POST("/forget_check_answer", h.forgetCheckAnswer)
	user.POST("/forget_reset_password", h.forgetResetPassword)

	user.GET("/get_user_info", auth, h.getUserInfo)
	user.POST("/get_user_info", auth, h.getUserInfo)
	user.POST("/reset_password", auth, h.resetPassword)
	user.POST("/update_information", auth, h.updateInformation)
	user.GET("/get_information", auth, h.getInformation)
	user.POST("/get_information", auth, h.getInformation)

	manage := r.Group("/manage/user")
	manage.POST("/login", h.adminLogin)
	manage.GET("/me", auth, middleware.RequireAdmin(fail), h.getUserInfo)
}

// bind accepts form-encoded and JSON bodies alike.
func bind(c *gin.Context, obj any) error {
	if err := c.ShouldBind(obj); err != nil {
		return customErrors.NewInvalidArgument("malformed request")
	}
	return nil
}

func fingerprint(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))[:16]
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := bind(c, &body); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.log.Info("/user/login", zap.String("user", fingerprint(body.Username)))

	u, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.startSession(c, u)
}

func (h *Handler) adminLogin(c *gin.Context) {
	var body dto.LoginDTO
	if err := bind(c, &body); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.log.Info("/manage/user/login", zap.String("user", fingerprint(body.Username)))

	u, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.svc.CheckRoleAdmin(u); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.startSession(c, u)
}

func (h *Handler) startSession(c *gin.Context, u model.User) {
	if err := h.sessions.Issue(c.Request.Context(), c.Writer, session.NewToken(), u); err != nil {
		writeError(c, h.log, err)
		return
	}
	writeSuccess(c, "", u)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.Revoke(c.Request.Context(), c.Writer, c.Request); err != nil {
		h.log.Warn("session revoke failed", zap.Error(err))
	}
	writeSuccess(c, "logged out", nil)
}

func (h *Handler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := bind(c, &body); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.log.Info("/user/register", zap.String("user", fingerprint(body.Username)))

	if err := h.svc.Register(c.Request.Context(), body); err != nil {
		writeError(c, h.log, err)
		return
	}
	writeSuccess(c, "registered", nil)
}

func (h *Handler) checkValid(c *gin.Context) {
	var body dto.CheckValidDTO
	if err := bind(c, &body); err != nil {
		writeError(c, h.log, err)
		return
	}

	if err := h.svc.CheckValid(c.Request.Context(), body); err != nil {
		writeError(c, h.log, err)
		return
	}
	writeSuccess(c, "available", nil)
}

func (h *Handler) getUserInfo(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	writeSuccess(c, "", u)
}

func (h *Handler) forgetGetQuestion(c *gin.Context) {
	var body dto.ForgetQuestionDTO
	if err := bind(c, &body); err != nil {
		writeError(c, h.log, err)
		return
	}

	q, err := h.svc.ForgetGetQuestion(c.Request.Context(), body)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeSuccess(c, "", q)
}

func (h *Handler) forgetCheckAnswer(c *gin.Context) {
	var body dto.ForgetAnswerDTO
	if err := bind(c, &body); err != nil {
		writeError(c, h.log, err)
		return
	}

	res, err := h.svc.ForgetCheckAnswer(c.Request.Context(), body)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if !res.Matched {
		writeSuccess(c, "wrong answer", nil)
		return
	}
	writeSuccess(c, "", res.Token)
}

func (h *Handler) forgetResetPassword(c *gin.Context) {
	var body dto.ForgetResetDTO
	if err := bind(c, &body); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.log.Info("/user/forget_reset_password", zap.String("user", fingerprint(body.Username)))

	if err := h.svc.ForgetResetPassword(c.Request.Context(), body); err != nil {
		writeError(c, h.log, err)
		return
	}
	writeSuccess(c, "password updated", nil)
}

func (h *Handler) resetPassword(c *gin.Context) {
	var body dto.ResetPasswordDTO
	if err := bind(c, &body); err != nil {
		writeError(c, h.log, err)
		return
	}
	u, _ := middleware.CurrentUser(c)

	if err := h.svc.ResetPassword(c.Request.Context(), body, u.ID); err != nil {
		writeError(c, h.log, err)
		return
	}
	writeSuccess(c, "password updated", nil)
}

func (h *Handler) updateInformation(c *gin.Context) {
	var body dto.UpdateInformationDTO
	if err := bind(c, &body); err != nil {
		writeError(c, h.log, err)
		return
	}
	current, _ := middleware.CurrentUser(c)

	u, err := h.svc.UpdateInformation(c.Request.Context(), body, current.ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	// keep the session snapshot in step with the store
	if err := h.sessions.Refresh(c.Request.Context(), middleware.CurrentToken(c), u); err != nil {
		h.log.Warn("session refresh failed", zap.Error(err))
	}
	writeSuccess(c, "profile updated", u)
}

func (h *Handler) getInformation(c *gin.Context) {
	current, _ := middleware.CurrentUser(c)

	u, err := h.svc.GetInformation(c.Request.Context(), current.ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeSuccess(c, "", u)
}
