//go:build !integration

package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{ErrMissingCredential, KindMissingCredential},
		{fmt.Errorf("wrap: %w", ErrUnauthenticated), KindUnauthenticated},
		{&ValidationError{Message: "X"}, KindValidation},
		{fmt.Errorf("%w: status 500", ErrServiceError), KindServiceError},
		{errors.New("dial tcp: refused"), KindServiceError},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMessageFor(t *testing.T) {
	for _, k := range []ErrorKind{KindMissingCredential, KindUnauthenticated, KindServiceError} {
		if got := MessageFor(ProfileMessages, k); got != MsgNotRegistered {
			t.Errorf("profile %s: got %q", k, got)
		}
	}
	if got := MessageFor(FAQMessages, KindServiceError); got != "" {
		t.Errorf("faq failures must be silent, got %q", got)
	}
	if got := MessageFor(UploadMessages, KindValidation); got != MsgUploadFailed {
		t.Errorf("upload validation without text: got %q", got)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	if (&ValidationError{}).Error() != "validation failed" {
		t.Error("unexpected empty validation message")
	}
	if (&ValidationError{Message: "X"}).Error() != "validation failed: X" {
		t.Error("unexpected validation message")
	}
}
