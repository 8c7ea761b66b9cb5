package services

import (
	"context"
	"fmt"
	"log/slog"

	"workeradmin/internal/utils"
)

const (
	codeMin = 1000
	codeMax = 9999
)

// CodeIssuer sends a one-time code and hands it back to the caller, who
// keeps it in the session until the second login step. No server-side
// lookup table exists.
type CodeIssuer interface {
	IssueCode(ctx context.Context, email string) (string, error)
}

type mailCodeIssuer struct {
	emails EmailService
	gen    func() (string, error)
}

func NewMailCodeIssuer(emails EmailService) CodeIssuer {
	return &mailCodeIssuer{
		emails: emails,
		gen:    func() (string, error) { return utils.NewNumericCode(codeMin, codeMax) },
	}
}

// IssueCode returns the code only when the email went out; every failure
// collapses to ErrSendFailure.
func (s *mailCodeIssuer) IssueCode(ctx context.Context, email string) (string, error) {
	code, err := s.gen()
	if err != nil {
		return "", fmt.Errorf("%w: generate code: %v", ErrSendFailure, err)
	}
	if err := s.emails.SendCode(ctx, email, code); err != nil {
		slog.ErrorContext(ctx, "send code failed", "component", "mfa", "op", "issue", "err", err)
		return "", fmt.Errorf("%w: %v", ErrSendFailure, err)
	}
	return code, nil
}
