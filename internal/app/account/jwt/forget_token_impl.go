package jwt

import (
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const audience = "password-reset"

type ForgetTokenUtilImpl struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewForgetTokenUtil(cfg *config.Config) (*ForgetTokenUtilImpl, error) {
	if cfg.ForgetTokenKey == "" {
		return nil, customErrors.NewInvalidArgument("forget token secret is empty")
	}
	if cfg.ForgetTokenTTL <= 0 {
		return nil, customErrors.NewInvalidArgument("forget token ttl must be positive")
	}

	return &ForgetTokenUtilImpl{
		secret: []byte(cfg.ForgetTokenKey),
		ttl:    cfg.ForgetTokenTTL,
		issuer: cfg.Issuer,
	}, nil
}

func (j *ForgetTokenUtilImpl) Generate(username string) (token string, exp time.Time, err error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    j.issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign forget token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (j *ForgetTokenUtilImpl) Verify(raw, username string) error {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return j.secret, nil
	}, jwt.WithIssuedAt(), jwt.WithAudience(audience), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return customErrors.WrapInternal(errors.New("claims not RegisteredClaims"), "Verify")
	}

	if j.issuer != "" && claims.Issuer != j.issuer {
		return customErrors.ErrInvalidToken
	}
	if claims.Subject != username {
		return customErrors.ErrInvalidToken
	}

	return nil
}
