package errors

import (
	"errors"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	err := NewInvalidArgument("bad")
	if !IsInvalidArgument(err) {
		t.Fatal("expected invalid argument")
	}

	wrapped := WrapInternal(err, "ctx")
	if !IsInternal(wrapped) {
		t.Fatal("expected internal")
	}
	if IsInvalidArgument(wrapped) {
		t.Fatal("internal wrap must not keep the inner sentinel")
	}
}

func TestMessages(t *testing.T) {
	if got := NewAlreadyExists("username").Error(); got != "username already exists" {
		t.Fatalf("got %q", got)
	}
	if got := NewNotFound("user").Error(); got != "user not found" {
		t.Fatalf("got %q", got)
	}
	if !IsAlreadyExists(NewAlreadyExists("email")) {
		t.Fatal("expected already exists")
	}
	if !IsNotFound(NewNotFound("user")) {
		t.Fatal("expected not found")
	}
	if IsNeedLogin(errors.New("need login")) {
		t.Fatal("plain error must not match the sentinel")
	}
}
