package ports

import "github.com/lumenpulse/anchor/core"

// Tokenizer converts between sessions and compact signed access tokens.
// The token TTL is process-wide configuration owned by the implementation.
type Tokenizer interface {
	// Issue mints a signed access token for the session.
	Issue(session *core.Session) (string, error)

	// Parse validates a token string and returns the session it carries.
	Parse(token string) (*core.Session, error)
}
