package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("message wins over code", func() {
		err := &Error{Code: CodeNotFound, Message: "checklist model not found"}
		s.Equal("checklist model not found", err.Error())
	})

	s.Run("falls back to code", func() {
		err := &Error{Code: CodeUnauthorized}
		s.Equal("unauthorized", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	inner := New(CodeNotFound, "vehicle list missing")
	chained := fmt.Errorf("list vehicles: %w", inner)

	s.True(errors.Is(chained, &Error{Code: CodeNotFound}))
	s.False(errors.Is(chained, &Error{Code: CodeInternal}))
	s.False((&Error{Code: CodeNotFound}).Is(errors.New("not_found")))
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps the code of an existing domain error", func() {
		wrapped := Wrap(New(CodeTimeout, "upstream timed out"), CodeInternal, "refresh session")
		s.True(HasCode(wrapped, CodeTimeout))
		s.Equal("refresh session", wrapped.Error())
	})

	s.Run("applies the given code to plain errors", func() {
		root := errors.New("connection refused")
		wrapped := Wrap(root, CodeUnavailable, "backend unreachable")
		s.True(HasCode(wrapped, CodeUnavailable))
		s.True(errors.Is(wrapped, root))
	})
}

func (s *DomainErrorsSuite) TestHasCodeNil() {
	s.False(HasCode(nil, CodeNotFound))
}

func (s *DomainErrorsSuite) TestClassification() {
	wrapped := fmt.Errorf("listing vehicles: %w", New(CodeTimeout, "backend timed out"))

	code, ok := CodeOf(wrapped)
	s.True(ok)
	s.Equal(CodeTimeout, code)
	s.True(IsTransient(wrapped))
	s.True(IsTransient(New(CodeUnavailable, "offline")))
	s.False(IsTransient(errors.New("plain")))

	s.True(IsAccessDenied(New(CodeUnauthorized, "token revoked")))
	s.True(IsAccessDenied(New(CodeForbidden, "")))
	s.False(IsAccessDenied(wrapped))

	_, ok = CodeOf(errors.New("plain"))
	s.False(ok)
}
