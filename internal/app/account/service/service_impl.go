package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/password"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/validate"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
	repo "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/repo"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ForgetTokenPrefix namespaces recovery tokens in the session cache.
const ForgetTokenPrefix = "token_"

type accountService struct {
	userRepo repo.UserRepo
	cache    repo.SessionCache
	hasher   password.Hasher
	forget   jwt.ForgetTokenUtil
	cfg      *config.Config
	v        *validator.Validate
	log      *zap.Logger
}

type Service interface {
	Login(context.Context, dto.LoginDTO) (model.User, error)
	Register(context.Context, dto.RegisterDTO) error
	CheckValid(context.Context, dto.CheckValidDTO) error
	ForgetGetQuestion(context.Context, dto.ForgetQuestionDTO) (string, error)
	ForgetCheckAnswer(context.Context, dto.ForgetAnswerDTO) (model.AnswerCheck, error)
	ForgetResetPassword(context.Context, dto.ForgetResetDTO) error
	ResetPassword(ctx context.Context, body dto.ResetPasswordDTO, userID uuid.UUID) error
	UpdateInformation(ctx context.Context, body dto.UpdateInformationDTO, userID uuid.UUID) (model.User, error)
	GetInformation(ctx context.Context, userID uuid.UUID) (model.User, error)
	CheckRoleAdmin(model.User) error
}

func New(
	ur repo.UserRepo,
	cache repo.SessionCache,
	h password.Hasher,
	ft jwt.ForgetTokenUtil,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &accountService{
		userRepo: ur, cache: cache, hasher: h, forget: ft, cfg: cfg, v: v, log: log,
	}
}

func (a *accountService) Login(ctx context.Context, body dto.LoginDTO) (model.User, error) {
	if err := a.v.Struct(body); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(validate.Describe(err))
	}

	found, err := a.exists(ctx, model.KindUsername, body.Username)
	if err != nil {
		return model.User{}, err
	}
	if !found {
		return model.User{}, customErrors.NewNotFound("username")
	}

	user, err := a.userRepo.GetUserByUsername(ctx, body.Username)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := a.hasher.Verify(body.Password, user.Password)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.User{}, customErrors.ErrInvalidCredentials
	}

	if a.hasher.NeedsUpgrade(user.Password) {
		a.upgradeHash(ctx, user.ID, body.Password)
	}

	return user.Sanitize(), nil
}

// upgradeHash swaps a legacy digest for a fresh argon2id hash. Failure only
// costs another upgrade attempt on the next login.
func (a *accountService) upgradeHash(ctx context.Context, id uuid.UUID, plain string) {
	hash, err := a.hasher.Hash(plain)
	if err == nil {
		err = a.userRepo.UpdatePassword(ctx, id, hash)
	}
	if err != nil {
		a.log.Warn("password hash upgrade failed", zap.String("user_id", id.String()), zap.Error(err))
		return
	}
	a.log.Info("password hash upgraded", zap.String("user_id", id.String()))
}

func (a *accountService) Register(ctx context.Context, body dto.RegisterDTO) error {
	if err := a.v.Struct(body); err != nil {
		return customErrors.NewInvalidArgument(validate.Describe(err))
	}

	for _, check := range []struct {
		kind  model.FieldKind
		value string
	}{
		{model.KindUsername, body.Username},
		{model.KindEmail, body.Email},
	} {
		taken, err := a.isTaken(ctx, check.kind, check.value)
		if err != nil {
			return err
		}
		if taken {
			return customErrors.NewAlreadyExists(string(check.kind))
		}
	}

	passwordHash, err := a.hasher.Hash(body.Password)
	if err != nil {
		return customErrors.WrapInternal(err, "Register")
	}

	user := model.User{
		ID:       uuid.New(),
		Username: body.Username,
		Password: passwordHash,
		Email:    body.Email,
		Phone:    body.Phone,
		Question: body.Question,
		Answer:   body.Answer,
		Role:     model.RoleCustomer,
	}
	if _, err = a.userRepo.CreateUser(ctx, user); err != nil {
		if customErrors.IsAlreadyExists(err) {
			return customErrors.NewAlreadyExists("username or email")
		}
		return customErrors.WrapInternal(err, "Register")
	}

	return nil
}

func (a *accountService) CheckValid(ctx context.Context, body dto.CheckValidDTO) error {
	if err := a.v.Struct(body); err != nil {
		return customErrors.NewInvalidArgument(validate.Describe(err))
	}

	kind := model.FieldKind(body.Type)
	if !kind.Valid() {
		return customErrors.NewInvalidArgument("type must be username or email")
	}

	taken, err := a.isTaken(ctx, kind, body.Str)
	if err != nil {
		return err
	}
	if taken {
		return customErrors.NewAlreadyExists(string(kind))
	}
	return nil
}

func (a *accountService) ForgetGetQuestion(ctx context.Context, body dto.ForgetQuestionDTO) (string, error) {
	if err := a.v.Struct(body); err != nil {
		return "", customErrors.NewInvalidArgument(validate.Describe(err))
	}

	user, err := a.userRepo.GetUserByUsername(ctx, body.Username)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return "", customErrors.NewNotFound("username")
	case err != nil:
		return "", customErrors.WrapInternal(err, "ForgetGetQuestion")
	}

	if strings.TrimSpace(user.Question) == "" {
		return "", customErrors.ErrNoQuestion
	}
	return user.Question, nil
}

func (a *accountService) ForgetCheckAnswer(ctx context.Context, body dto.ForgetAnswerDTO) (model.AnswerCheck, error) {
	if err := a.v.Struct(body); err != nil {
		return model.AnswerCheck{}, customErrors.NewInvalidArgument(validate.Describe(err))
	}

	n, err := a.userRepo.CountAnswer(ctx, body.Username, body.Question, body.Answer)
	if err != nil {
		return model.AnswerCheck{}, customErrors.WrapInternal(err, "ForgetCheckAnswer")
	}
	if n == 0 {
		return model.AnswerCheck{Matched: false}, nil
	}

	token, _, err := a.forget.Generate(body.Username)
	if err != nil {
		return model.AnswerCheck{}, customErrors.WrapInternal(err, "ForgetCheckAnswer")
	}
	if err := a.cache.Set(ctx, ForgetTokenPrefix+body.Username, []byte(token), a.cfg.ForgetTokenTTL); err != nil {
		return model.AnswerCheck{}, customErrors.WrapInternal(err, "ForgetCheckAnswer")
	}

	return model.AnswerCheck{Matched: true, Token: token}, nil
}

func (a *accountService) ForgetResetPassword(ctx context.Context, body dto.ForgetResetDTO) error {
	if err := a.v.Struct(body); err != nil {
		return customErrors.NewInvalidArgument(validate.Describe(err))
	}

	user, err := a.userRepo.GetUserByUsername(ctx, body.Username)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.NewNotFound("username")
	case err != nil:
		return customErrors.WrapInternal(err, "ForgetResetPassword")
	}

	if err := a.forget.Verify(body.ForgetToken, body.Username); err != nil {
		if customErrors.IsInvalidToken(err) {
			return err
		}
		return customErrors.WrapInternal(err, "ForgetResetPassword")
	}

	key := ForgetTokenPrefix + body.Username
	cached, err := a.cache.Get(ctx, key)
	switch {
	case customErrors.IsNotFound(err):
		return customErrors.ErrInvalidToken
	case err != nil:
		return customErrors.WrapInternal(err, "ForgetResetPassword")
	}
	if subtle.ConstantTimeCompare(cached, []byte(body.ForgetToken)) != 1 {
		return customErrors.ErrInvalidToken
	}

	passwordHash, err := a.hasher.Hash(body.PasswordNew)
	if err != nil {
		return customErrors.WrapInternal(err, "ForgetResetPassword")
	}
	if err := a.updatePassword(ctx, user.ID, passwordHash, "ForgetResetPassword"); err != nil {
		return err
	}

	if err := a.cache.Delete(ctx, key); err != nil {
		a.log.Warn("forget token not consumed", zap.String("username", body.Username), zap.Error(err))
	}
	return nil
}

func (a *accountService) ResetPassword(ctx context.Context, body dto.ResetPasswordDTO, userID uuid.UUID) error {
	if err := a.v.Struct(body); err != nil {
		return customErrors.NewInvalidArgument(validate.Describe(err))
	}

	user, err := a.userRepo.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNeedLogin
	case err != nil:
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	ok, err := a.hasher.Verify(body.PasswordOld, user.Password)
	if err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}
	if !ok {
		return customErrors.ErrInvalidPassword
	}

	passwordHash, err := a.hasher.Hash(body.PasswordNew)
	if err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}
	return a.updatePassword(ctx, user.ID, passwordHash, "ResetPassword")
}

func (a *accountService) updatePassword(ctx context.Context, id uuid.UUID, hash, op string) error {
	err := a.userRepo.UpdatePassword(ctx, id, hash)
	switch {
	case err == nil:
		return nil
	case customErrors.IsNotFound(err), customErrors.IsNotUpdated(err):
		return customErrors.ErrNotUpdated
	default:
		return customErrors.WrapInternal(err, op)
	}
}

func (a *accountService) UpdateInformation(ctx context.Context, body dto.UpdateInformationDTO, userID uuid.UUID) (model.User, error) {
	if err := a.v.Struct(body); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(validate.Describe(err))
	}

	if body.Email != "" {
		n, err := a.userRepo.CountByEmail(ctx, body.Email, userID)
		if err != nil {
			return model.User{}, customErrors.WrapInternal(err, "UpdateInformation")
		}
		if n > 0 {
			return model.User{}, customErrors.NewAlreadyExists("email")
		}
	}

	patch := model.User{
		ID:       userID,
		Email:    body.Email,
		Phone:    body.Phone,
		Question: body.Question,
		Answer:   body.Answer,
	}
	err := a.userRepo.UpdateSelective(ctx, patch)
	switch {
	case customErrors.IsNotFound(err), customErrors.IsNotUpdated(err):
		return model.User{}, customErrors.ErrNotUpdated
	case customErrors.IsAlreadyExists(err):
		return model.User{}, customErrors.NewAlreadyExists("email")
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "UpdateInformation")
	}

	return a.GetInformation(ctx, userID)
}

func (a *accountService) GetInformation(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userRepo.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, customErrors.NewNotFound("user")
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "GetInformation")
	}
	return user.Sanitize(), nil
}

func (a *accountService) CheckRoleAdmin(user model.User) error {
	if !user.IsAdmin() {
		return customErrors.ErrForbidden
	}
	return nil
}

// exists reports whether a user holds value in the given column.
func (a *accountService) exists(ctx context.Context, kind model.FieldKind, value string) (bool, error) {
	var (
		n   int64
		err error
	)
	switch kind {
	case model.KindUsername:
		n, err = a.userRepo.CountByUsername(ctx, value)
	case model.KindEmail:
		n, err = a.userRepo.CountByEmail(ctx, value, uuid.Nil)
	default:
		return false, customErrors.NewInvalidArgument("unknown field kind")
	}
	if err != nil {
		return false, customErrors.WrapInternal(err, "count "+string(kind))
	}
	return n > 0, nil
}

// isTaken is exists read from the registration side: true means the value
// is unavailable.
func (a *accountService) isTaken(ctx context.Context, kind model.FieldKind, value string) (bool, error) {
	return a.exists(ctx, kind, value)
}
