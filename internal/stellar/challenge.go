package stellar

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Network passphrases as defined by the Stellar network.
const (
	TestnetPassphrase = "Test SDF Network ; September 2015"
	PublicPassphrase  = "Public Global Stellar Network ; September 2015"
)

// WebAuthDomainOp is the manage-data entry name that binds a challenge to
// the serving domain.
const WebAuthDomainOp = "web_auth_domain"

// Operation is a single manage-data style entry inside a challenge payload.
type Operation struct {
	SourceAccount string `json:"source_account"`
	Name          string `json:"name"`
	Value         string `json:"value"`
}

// Payload is the canonical body of a challenge. The server issues it with
// sequence number -1 so it can never be submitted to the network, and a
// five minute validity window in MaxTime.
type Payload struct {
	SourceAccount  string      `json:"source_account"`
	SequenceNumber int64       `json:"sequence_number"`
	MinTime        int64       `json:"min_time"`
	MaxTime        int64       `json:"max_time"`
	Operations     []Operation `json:"operations"`
}

// DecoratedSignature is a signature tagged with the last four bytes of the
// signer's public key.
type DecoratedSignature struct {
	Hint      []byte `json:"hint"`
	Signature []byte `json:"signature"`
}

// Envelope is a challenge payload together with any signatures collected
// over its hash. The server attaches the first signature; the client
// appends theirs and sends the envelope back.
type Envelope struct {
	Payload    Payload              `json:"payload"`
	Signatures []DecoratedSignature `json:"signatures"`
}

// BuildChallenge constructs a server-signed challenge envelope for the
// given client account. The payload embeds the nonce bound to the client
// account and the serving domain bound to the server account.
func BuildChallenge(server *Keypair, clientAccount, homeDomain, networkPassphrase, nonce string, issuedAt time.Time, validFor time.Duration) (*Envelope, error) {
	env := &Envelope{
		Payload: Payload{
			SourceAccount:  server.Address(),
			SequenceNumber: -1,
			MinTime:        0,
			MaxTime:        issuedAt.Add(validFor).Unix(),
			Operations: []Operation{
				{
					SourceAccount: clientAccount,
					Name:          homeDomain + " auth",
					Value:         nonce,
				},
				{
					SourceAccount: server.Address(),
					Name:          WebAuthDomainOp,
					Value:         homeDomain,
				},
			},
		},
	}

	if err := env.Sign(server, networkPassphrase); err != nil {
		return nil, err
	}
	return env, nil
}

// Hash returns the canonical hash of the envelope's payload bound to the
// given network passphrase. Signatures are not part of the hash.
func (e *Envelope) Hash(networkPassphrase string) ([32]byte, error) {
	networkID := sha256.Sum256([]byte(networkPassphrase))

	body, err := json.Marshal(e.Payload)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return sha256.Sum256(append(networkID[:], body...)), nil
}

// Sign appends kp's decorated signature over the envelope hash.
func (e *Envelope) Sign(kp *Keypair, networkPassphrase string) error {
	hash, err := e.Hash(networkPassphrase)
	if err != nil {
		return err
	}
	hint := kp.Hint()
	e.Signatures = append(e.Signatures, DecoratedSignature{
		Hint:      hint[:],
		Signature: kp.Sign(hash[:]),
	})
	return nil
}

// Encode serializes the envelope to its base64 wire form.
func (e *Envelope) Encode() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeEnvelope parses the base64 wire form of a challenge envelope.
func DecodeEnvelope(encoded string) (*Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return &env, nil
}

// Nonce returns the nonce value bound to clientAccount, or "" if the
// payload carries no such entry.
func (e *Envelope) Nonce(clientAccount string) string {
	for _, op := range e.Payload.Operations {
		if op.SourceAccount == clientAccount && op.Name != WebAuthDomainOp {
			return op.Value
		}
	}
	return ""
}

// VerifyAny reports whether at least one of the decorated signatures
// validates against pub over hash. Hints are advisory only; every
// signature is checked.
func VerifyAny(hash []byte, sigs []DecoratedSignature, pub ed25519.PublicKey) bool {
	for _, sig := range sigs {
		if len(sig.Signature) != ed25519.SignatureSize {
			continue
		}
		if ed25519.Verify(pub, hash, sig.Signature) {
			return true
		}
	}
	return false
}
