package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/provide-io/stagepack/pkg/stage"
)

var (
	ErrValidationFailed     = errors.New("stage has validation errors")
	ErrWarningsNotConfirmed = errors.New("stage has warnings that were not accepted")
	ErrNoThumbnail          = errors.New("thumbnail source has no pixels")
	ErrVerifyFailed         = errors.New("exported output failed verification")
)

// Kind classifies why an export stopped.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindEncoding
	KindIO
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindEncoding:
		return "encoding"
	case KindIO:
		return "io"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is returned by Export. Role names the artifact being produced when
// the failure happened: "layer <id>", "thumbnail", "container",
// "definition" or "output".
type Error struct {
	Kind   Kind
	Role   string
	Detail string
	Issues []stage.Issue
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("export ")
	b.WriteString(e.Kind.String())
	if e.Role != "" {
		b.WriteString(" [" + e.Role + "]")
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, role string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Role: role, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not an export error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
