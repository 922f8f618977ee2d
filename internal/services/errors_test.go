package services_test

import (
	"errors"
	"strings"
	"testing"

	"jellypot/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUpstream, "resolver", "get item", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"resolver", "get item", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindAndUserFacing(t *testing.T) {
	cases := []struct {
		err        error
		kind       string
		userFacing bool
	}{
		{services.Wrap(services.ErrValidation, "resolver", "parse", "bad fragment", nil), "invalid_reference", true},
		{services.Wrap(services.ErrUpstream, "resolver", "next up", "", errors.New("503")), "upstream", true},
		{services.Wrap(services.ErrConfiguration, "config", "", "missing url", nil), "configuration", false},
		{nil, "", false},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.kind {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.kind)
		}
		if got := services.UserFacing(tc.err); got != tc.userFacing {
			t.Fatalf("UserFacing(%v) = %v, want %v", tc.err, got, tc.userFacing)
		}
	}
}
