package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/ports"
)

type fakeUsers struct {
	byID map[uuid.UUID]*core.User

	createErr error
	saveErr   error
	lookupErr error
}

var _ ports.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*core.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *core.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if u.Email != "" && existing.Email == u.Email {
			return core.ErrEmailTaken
		}
		if u.StellarPublicKey != "" && existing.StellarPublicKey == u.StellarPublicKey {
			return core.ErrEmailTaken
		}
	}
	cpy := *u
	f.byID[u.ID] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*core.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cpy := *u
	return &cpy, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*core.User, error) {
	for _, u := range f.byID {
		if u.Email != "" && u.Email == email {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *fakeUsers) GetByPublicKey(_ context.Context, publicKey string) (*core.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.byID {
		if u.StellarPublicKey != "" && u.StellarPublicKey == publicKey {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *fakeUsers) Save(_ context.Context, u *core.User) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	existing, ok := f.byID[u.ID]
	if !ok {
		return core.ErrUserNotFound
	}
	existing.PasswordHash = u.PasswordHash
	existing.UpdatedAt = u.UpdatedAt
	return nil
}

type fakeResetTokens struct {
	byID map[uuid.UUID]*core.ResetToken
	now  func() time.Time
}

var _ ports.ResetTokenRepository = (*fakeResetTokens)(nil)

func newFakeResetTokens() *fakeResetTokens {
	return &fakeResetTokens{byID: map[uuid.UUID]*core.ResetToken{}, now: time.Now}
}

func (f *fakeResetTokens) Create(_ context.Context, t *core.ResetToken) error {
	cpy := *t
	f.byID[t.ID] = &cpy
	return nil
}

func (f *fakeResetTokens) GetUnusedByHash(_ context.Context, tokenHash string) (*core.ResetToken, error) {
	for _, t := range f.byID {
		if t.TokenHash == tokenHash && t.UsedAt == nil {
			cpy := *t
			return &cpy, nil
		}
	}
	return nil, core.ErrInvalidResetToken
}

func (f *fakeResetTokens) MarkUsed(_ context.Context, id uuid.UUID) error {
	if t, ok := f.byID[id]; ok && t.UsedAt == nil {
		now := f.now()
		t.UsedAt = &now
	}
	return nil
}

func (f *fakeResetTokens) InvalidateForUser(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, t := range f.byID {
		if t.UserID == userID && t.UsedAt == nil {
			now := f.now()
			t.UsedAt = &now
			n++
		}
	}
	return n, nil
}

type fakeRefreshTokens struct {
	byID map[uuid.UUID]*core.RefreshToken
	now  func() time.Time
}

var _ ports.RefreshTokenRepository = (*fakeRefreshTokens)(nil)

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{byID: map[uuid.UUID]*core.RefreshToken{}, now: time.Now}
}

func (f *fakeRefreshTokens) Create(_ context.Context, t *core.RefreshToken) error {
	cpy := *t
	f.byID[t.ID] = &cpy
	return nil
}

func (f *fakeRefreshTokens) GetByHash(_ context.Context, tokenHash string) (*core.RefreshToken, error) {
	for _, t := range f.byID {
		if t.TokenHash == tokenHash {
			cpy := *t
			return &cpy, nil
		}
	}
	return nil, core.ErrInvalidToken
}

func (f *fakeRefreshTokens) Revoke(_ context.Context, id uuid.UUID) error {
	if t, ok := f.byID[id]; ok && t.RevokedAt == nil {
		now := f.now()
		t.RevokedAt = &now
	}
	return nil
}

func (f *fakeRefreshTokens) RevokeAllForUser(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, t := range f.byID {
		if t.UserID == userID && t.RevokedAt == nil {
			now := f.now()
			t.RevokedAt = &now
			n++
		}
	}
	return n, nil
}

type sentMail struct {
	email    string
	rawToken string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

var _ ports.Mailer = (*fakeMailer)(nil)

func (f *fakeMailer) SendPasswordReset(_ context.Context, email, rawToken string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{email: email, rawToken: rawToken})
	return nil
}

type fakeEvents struct {
	walletLogins   int
	passwordResets int
	logouts        int
}

var _ ports.EventPublisher = (*fakeEvents)(nil)

func (f *fakeEvents) PublishWalletLogin(context.Context, string, string) error {
	f.walletLogins++
	return nil
}

func (f *fakeEvents) PublishPasswordReset(context.Context, string) error {
	f.passwordResets++
	return nil
}

func (f *fakeEvents) PublishLogout(context.Context, string, string) error {
	f.logouts++
	return nil
}

// fakeTokenizer issues deterministic token strings and can parse back the
// tokens it issued.
type fakeTokenizer struct {
	issued map[string]*core.Session
	err    error
}

var _ ports.Tokenizer = (*fakeTokenizer)(nil)

func newFakeTokenizer() *fakeTokenizer {
	return &fakeTokenizer{issued: map[string]*core.Session{}}
}

func (f *fakeTokenizer) Issue(session *core.Session) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	token := "token:" + session.AuthType + ":" + session.UserID.String()
	cpy := *session
	f.issued[token] = &cpy
	return token, nil
}

func (f *fakeTokenizer) Parse(token string) (*core.Session, error) {
	if !strings.HasPrefix(token, "token:") {
		return nil, core.ErrInvalidToken
	}
	session, ok := f.issued[token]
	if !ok {
		return nil, core.ErrInvalidToken
	}
	cpy := *session
	return &cpy, nil
}
