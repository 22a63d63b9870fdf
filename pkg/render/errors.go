package render

import (
	"errors"
	"fmt"

	gkerrors "github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/pkg/dom"
)

// domError wraps a pkg/dom error in the matching coded error.
func domError(err error, detail string) error {
	if err == nil {
		return nil
	}
	code := "E203"
	switch {
	case errors.Is(err, dom.ErrHierarchyRequest):
		code = "E240"
	case errors.Is(err, dom.ErrWrongDocument):
		code = "E241"
	case errors.Is(err, dom.ErrInvalidCharacter):
		code = "E242"
	case errors.Is(err, dom.ErrNotSupported):
		code = "E243"
	}
	return gkerrors.New(code).WithDetail(detail).Wrap(err)
}

// panicError converts a recovered panic value into a coded error.
func panicError(code string, r any, detail string) error {
	e := gkerrors.New(code).WithDetail(detail)
	if err, ok := r.(error); ok {
		return e.Wrap(err)
	}
	return e.Wrap(fmt.Errorf("panic: %v", r))
}
