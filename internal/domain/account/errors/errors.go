package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrInvalidPassword    = errors.New("old password is incorrect")
	ErrNeedLogin          = errors.New("need login")
	ErrForbidden          = errors.New("admin role required")
	ErrNoQuestion         = errors.New("no recovery question configured")
	ErrNotUpdated         = errors.New("no rows updated")
)

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// NewAlreadyExists reads as "<what> already exists".
func NewAlreadyExists(what string) error {
	return fmt.Errorf("%s %w", what, ErrAlreadyExists)
}

// NewNotFound reads as "<what> not found".
func NewNotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsInvalidPassword(err error) bool {
	return errors.Is(err, ErrInvalidPassword)
}

func IsNeedLogin(err error) bool {
	return errors.Is(err, ErrNeedLogin)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsNoQuestion(err error) bool {
	return errors.Is(err, ErrNoQuestion)
}

func IsNotUpdated(err error) bool {
	return errors.Is(err, ErrNotUpdated)
}
