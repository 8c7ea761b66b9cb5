package services

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueCode_Sends(t *testing.T) {
	tr := &fakeTransport{}
	issuer := NewMailCodeIssuer(NewEmailService(tr))

	code, err := issuer.IssueCode(context.Background(), "alice@example.com")
	require.NoError(t, err)

	n, err := strconv.Atoi(code)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1000)
	assert.LessOrEqual(t, n, 9999)

	require.Len(t, tr.sent, 1)
	assert.Equal(t, "alice@example.com", tr.sent[0].To)
	assert.Equal(t, codeSubject, tr.sent[0].Subject)
	assert.Contains(t, tr.sent[0].Body, code)
}

func TestIssueCode_SendFailure(t *testing.T) {
	tr := &fakeTransport{err: errors.New("smtp: 535 auth failed")}
	issuer := NewMailCodeIssuer(NewEmailService(tr))

	code, err := issuer.IssueCode(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrSendFailure)
	assert.Empty(t, code)
}

func TestIssueCode_GeneratorFailure(t *testing.T) {
	issuer := &mailCodeIssuer{
		emails: NewEmailService(&fakeTransport{}),
		gen:    func() (string, error) { return "", errors.New("entropy") },
	}
	_, err := issuer.IssueCode(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrSendFailure)
}

func TestSendConfirmation_EscapesAndLinks(t *testing.T) {
	tr := &fakeTransport{}
	s := NewEmailService(tr)

	err := s.SendConfirmation(context.Background(), "bob@example.com", "bob<b>", "pass1234", "https://x/deleteByEmail/abc")
	require.NoError(t, err)
	require.Len(t, tr.sent, 1)
	assert.Equal(t, confirmationSubject, tr.sent[0].Subject)
	assert.Contains(t, tr.sent[0].Body, `href="https://x/deleteByEmail/abc"`)
	assert.Contains(t, tr.sent[0].Body, "bob&lt;b&gt;")
}

func TestSMTPTransport_CancelledContext(t *testing.T) {
	tr := NewSMTPTransport("127.0.0.1", 1, "u@example.com", "p", "Panel")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tr.Send(ctx, "a@b.c", "s", "b"), context.Canceled)
}
