package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	redisCache "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/redis"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/session"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/health"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

type svcStub struct {
	users    map[string]model.User
	answer   model.AnswerCheck
	fail     error
	updated  dto.UpdateInformationDTO
	resetFor uuid.UUID
}

func (s *svcStub) Login(_ context.Context, body dto.LoginDTO) (model.User, error) {
	if s.fail != nil {
		return model.User{}, s.fail
	}
	u, ok := s.users[body.Username]
	if !ok || body.Password != "p1" {
		return model.User{}, customErrors.ErrInvalidCredentials
	}
	return u.Sanitize(), nil
}

func (s *svcStub) Register(context.Context, dto.RegisterDTO) error { return s.fail }

func (s *svcStub) CheckValid(_ context.Context, body dto.CheckValidDTO) error {
	if _, ok := s.users[body.Str]; ok {
		return customErrors.NewAlreadyExists("username")
	}
	return nil
}

func (s *svcStub) ForgetGetQuestion(context.Context, dto.ForgetQuestionDTO) (string, error) {
	return "pet?", s.fail
}

func (s *svcStub) ForgetCheckAnswer(context.Context, dto.ForgetAnswerDTO) (model.AnswerCheck, error) {
	return s.answer, s.fail
}

func (s *svcStub) ForgetResetPassword(context.Context, dto.ForgetResetDTO) error { return s.fail }

func (s *svcStub) ResetPassword(_ context.Context, _ dto.ResetPasswordDTO, id uuid.UUID) error {
	s.resetFor = id
	return s.fail
}

func (s *svcStub) UpdateInformation(_ context.Context, body dto.UpdateInformationDTO, id uuid.UUID) (model.User, error) {
	s.updated = body
	for _, u := range s.users {
		if u.ID == id {
			u.Email = body.Email
			return u.Sanitize(), nil
		}
	}
	return model.User{}, customErrors.ErrNotUpdated
}

func (s *svcStub) GetInformation(_ context.Context, id uuid.UUID) (model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u.Sanitize(), nil
		}
	}
	return model.User{}, customErrors.NewNotFound("user")
}

func (s *svcStub) CheckRoleAdmin(u model.User) error {
	if !u.IsAdmin() {
		return customErrors.ErrForbidden
	}
	return nil
}

type healthStub struct{ healthy bool }

func (h healthStub) Check(context.Context) health.Report {
	return health.Report{Healthy: h.healthy, Checks: map[string]string{}}
}

/* ───────────────────────────── helpers ───────────────────────────── */

type env struct {
	router *gin.Engine
	svc    *svcStub
	mr     *miniredis.Miniredis
}

func newEnv(t *testing.T) env {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		SessionTTL:   30 * time.Minute,
		CookieName:   "login_token",
		CookiePath:   "/",
		CookieMaxAge: time.Hour,
	}
	svc := &svcStub{users: map[string]model.User{
		"alice": {ID: uuid.New(), Username: "alice", Email: "a@x.io", Password: "hash", Answer: "cat"},
		"root":  {ID: uuid.New(), Username: "root", Email: "r@x.io", Role: model.RoleAdmin},
	}}
	sessions := session.NewManager(redisCache.NewRedisSessionCache(client), cfg)
	h := NewHandler(svc, sessions, zap.NewNop())

	return env{
		router: NewRouter(cfg, h, healthStub{healthy: true}, zap.NewNop()),
		svc:    svc,
		mr:     mr,
	}
}

func (e env) do(t *testing.T, method, path string, form url.Values, cookies []*http.Cookie) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (e env) login(t *testing.T, username string) []*http.Cookie {
	t.Helper()
	w, resp := e.do(t, http.MethodPost, "/user/login", url.Values{"username": {username}, "password": {"p1"}}, nil)
	require.Equal(t, StatusSuccess, resp.Status)
	return w.Result().Cookies()
}

func dataMap(t *testing.T, resp Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

/* ───────────────────────────── tests ───────────────────────────── */

func TestLogin_IssuesSession(t *testing.T) {
	e := newEnv(t)

	w, resp := e.do(t, http.MethodPost, "/user/login", url.Values{"username": {"alice"}, "password": {"p1"}}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, StatusSuccess, resp.Status)

	data := dataMap(t, resp)
	require.Equal(t, "alice", data["username"])
	require.NotContains(t, data, "password")
	require.NotContains(t, data, "answer")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "login_token", cookies[0].Name)
	require.True(t, e.mr.Exists(cookies[0].Value))

	_, info := e.do(t, http.MethodGet, "/user/get_user_info", nil, cookies)
	require.Equal(t, StatusSuccess, info.Status)
	require.Equal(t, "alice", dataMap(t, info)["username"])
}

func TestLogin_JSONBody(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(`{"username":"alice","password":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, StatusSuccess, resp.Status)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)

	w, resp := e.do(t, http.MethodPost, "/user/login", url.Values{"username": {"alice"}, "password": {"nope"}}, nil)
	require.Equal(t, StatusError, resp.Status)
	require.Equal(t, "invalid credentials", resp.Msg)
	require.Empty(t, w.Result().Cookies())
}

func TestInternalErrorIsMasked(t *testing.T) {
	e := newEnv(t)
	e.svc.fail = customErrors.WrapInternal(errors.New("connection refused"), "Login")

	_, resp := e.do(t, http.MethodPost, "/user/login", url.Values{"username": {"alice"}, "password": {"p1"}}, nil)
	require.Equal(t, StatusError, resp.Status)
	require.Equal(t, "internal error", resp.Msg)
}

func TestNeedLogin(t *testing.T) {
	e := newEnv(t)

	for _, path := range []string{"/user/get_user_info", "/user/get_information"} {
		_, resp := e.do(t, http.MethodGet, path, nil, nil)
		require.Equal(t, StatusNeedLogin, resp.Status, path)
	}

	_, resp := e.do(t, http.MethodGet, "/user/get_user_info", nil,
		[]*http.Cookie{{Name: "login_token", Value: "stale"}})
	require.Equal(t, StatusNeedLogin, resp.Status)
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	cookies := e.login(t, "alice")

	w, resp := e.do(t, http.MethodGet, "/user/logout", nil, cookies)
	require.Equal(t, StatusSuccess, resp.Status)
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Less(t, cleared[0].MaxAge, 0)
	require.False(t, e.mr.Exists(cookies[0].Value))

	_, resp = e.do(t, http.MethodGet, "/user/get_user_info", nil, cookies)
	require.Equal(t, StatusNeedLogin, resp.Status)

	// logging out twice still succeeds
	_, resp = e.do(t, http.MethodGet, "/user/logout", nil, nil)
	require.Equal(t, StatusSuccess, resp.Status)
}

func TestCheckValid(t *testing.T) {
	e := newEnv(t)

	_, resp := e.do(t, http.MethodPost, "/user/check_valid", url.Values{"str": {"bob"}, "type": {"username"}}, nil)
	require.Equal(t, StatusSuccess, resp.Status)

	_, resp = e.do(t, http.MethodPost, "/user/check_valid", url.Values{"str": {"alice"}, "type": {"username"}}, nil)
	require.Equal(t, StatusError, resp.Status)
	require.Equal(t, "username already exists", resp.Msg)
}

func TestForgetCheckAnswer_WrongIsNotAnError(t *testing.T) {
	e := newEnv(t)
	form := url.Values{"username": {"alice"}, "question": {"pet?"}, "answer": {"dog"}}

	_, resp := e.do(t, http.MethodPost, "/user/forget_check_answer", form, nil)
	require.Equal(t, StatusSuccess, resp.Status)
	require.Equal(t, "wrong answer", resp.Msg)
	require.Nil(t, resp.Data)

	e.svc.answer = model.AnswerCheck{Matched: true, Token: "tok"}
	_, resp = e.do(t, http.MethodPost, "/user/forget_check_answer", form, nil)
	require.Equal(t, StatusSuccess, resp.Status)
	require.Equal(t, "tok", resp.Data)
}

func TestForgetGetQuestion(t *testing.T) {
	e := newEnv(t)

	_, resp := e.do(t, http.MethodPost, "/user/forget_get_question", url.Values{"username": {"alice"}}, nil)
	require.Equal(t, StatusSuccess, resp.Status)
	require.Equal(t, "pet?", resp.Data)
}

func TestForgetResetPassword_InvalidToken(t *testing.T) {
	e := newEnv(t)
	e.svc.fail = customErrors.ErrInvalidToken

	_, resp := e.do(t, http.MethodPost, "/user/forget_reset_password",
		url.Values{"username": {"alice"}, "passwordNew": {"p2"}, "forgetToken": {"x"}}, nil)
	require.Equal(t, StatusError, resp.Status)
	require.Equal(t, "token is invalid or expired", resp.Msg)
}

func TestResetPassword_UsesSessionUser(t *testing.T) {
	e := newEnv(t)
	cookies := e.login(t, "alice")

	_, resp := e.do(t, http.MethodPost, "/user/reset_password",
		url.Values{"passwordOld": {"p1"}, "passwordNew": {"p2"}}, cookies)
	require.Equal(t, StatusSuccess, resp.Status)
	require.Equal(t, e.svc.users["alice"].ID, e.svc.resetFor)
}

func TestUpdateInformation_RefreshesSession(t *testing.T) {
	e := newEnv(t)
	cookies := e.login(t, "alice")
	e.mr.FastForward(20 * time.Minute)

	_, resp := e.do(t, http.MethodPost, "/user/update_information", url.Values{"email": {"new@x.io"}}, cookies)
	require.Equal(t, StatusSuccess, resp.Status)
	require.Equal(t, "new@x.io", dataMap(t, resp)["email"])
	require.Equal(t, "new@x.io", e.svc.updated.Email)
	require.Equal(t, 30*time.Minute, e.mr.TTL(cookies[0].Value))

	_, info := e.do(t, http.MethodGet, "/user/get_user_info", nil, cookies)
	require.Equal(t, "new@x.io", dataMap(t, info)["email"])
}

func TestGetInformation(t *testing.T) {
	e := newEnv(t)
	cookies := e.login(t, "alice")

	_, resp := e.do(t, http.MethodGet, "/user/get_information", nil, cookies)
	require.Equal(t, StatusSuccess, resp.Status)
	require.Equal(t, "a@x.io", dataMap(t, resp)["email"])
}

func TestAdminLogin(t *testing.T) {
	e := newEnv(t)

	w, resp := e.do(t, http.MethodPost, "/manage/user/login", url.Values{"username": {"alice"}, "password": {"p1"}}, nil)
	require.Equal(t, StatusError, resp.Status)
	require.Equal(t, "admin role required", resp.Msg)
	require.Empty(t, w.Result().Cookies())

	w, resp = e.do(t, http.MethodPost, "/manage/user/login", url.Values{"username": {"root"}, "password": {"p1"}}, nil)
	require.Equal(t, StatusSuccess, resp.Status)

	_, me := e.do(t, http.MethodGet, "/manage/user/me", nil, w.Result().Cookies())
	require.Equal(t, StatusSuccess, me.Status)

	_, me = e.do(t, http.MethodGet, "/manage/user/me", nil, e.login(t, "alice"))
	require.Equal(t, StatusError, me.Status)
}

func TestHealth(t *testing.T) {
	e := newEnv(t)

	w, _ := e.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"healthy":true`)
}
