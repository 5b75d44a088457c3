// Package stellar implements the minimal pieces of the Stellar protocol the
// authentication flow needs: strkey account parsing, ed25519 keypairs and
// the signed challenge envelope exchanged during wallet login.
package stellar

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
)

// Strkey version bytes, per the Stellar strkey format.
const (
	versionByteAccountID byte = 6 << 3  // 'G...'
	versionByteSeed      byte = 18 << 3 // 'S...'
)

var (
	ErrInvalidStrkey = errors.New("invalid strkey")

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// Keypair holds an ed25519 keypair identified by its strkey address.
type Keypair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// NewKeypair generates a random keypair.
func NewKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Keypair{pub: pub, priv: priv}, nil
}

// KeypairFromSeed derives a keypair from an 'S...' strkey seed.
func KeypairFromSeed(seed string) (*Keypair, error) {
	raw, err := decodeStrkey(seed, versionByteSeed)
	if err != nil {
		return nil, err
	}
	priv := ed25519.NewKeyFromSeed(raw)
	return &Keypair{
		pub:  priv.Public().(ed25519.PublicKey),
		priv: priv,
	}, nil
}

// Address returns the 'G...' strkey address of the keypair.
func (k *Keypair) Address() string {
	return encodeStrkey(k.pub, versionByteAccountID)
}

// Public returns the raw ed25519 public key.
func (k *Keypair) Public() ed25519.PublicKey {
	return k.pub
}

// Sign signs msg with the keypair's private key.
func (k *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

// Hint returns the last four bytes of the public key, used to tag
// decorated signatures.
func (k *Keypair) Hint() [4]byte {
	var h [4]byte
	copy(h[:], k.pub[len(k.pub)-4:])
	return h
}

// DecodePublicKey parses a 'G...' strkey into a raw ed25519 public key.
func DecodePublicKey(address string) (ed25519.PublicKey, error) {
	raw, err := decodeStrkey(address, versionByteAccountID)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(raw), nil
}

// IsValidPublicKey reports whether address is a structurally valid
// 'G...' strkey account ID.
func IsValidPublicKey(address string) bool {
	_, err := DecodePublicKey(address)
	return err == nil
}

func encodeStrkey(raw []byte, version byte) string {
	payload := make([]byte, 0, 1+len(raw)+2)
	payload = append(payload, version)
	payload = append(payload, raw...)

	var crc [2]byte
	binary.LittleEndian.PutUint16(crc[:], crc16(payload))
	payload = append(payload, crc[:]...)

	return b32.EncodeToString(payload)
}

func decodeStrkey(s string, version byte) ([]byte, error) {
	if len(s) != 56 {
		return nil, fmt.Errorf("%w: wrong length %d", ErrInvalidStrkey, len(s))
	}
	payload, err := b32.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStrkey, err)
	}
	if len(payload) != 1+ed25519.PublicKeySize+2 {
		return nil, fmt.Errorf("%w: wrong payload length", ErrInvalidStrkey)
	}
	if payload[0] != version {
		return nil, fmt.Errorf("%w: unexpected version byte %#x", ErrInvalidStrkey, payload[0])
	}

	body := payload[:len(payload)-2]
	checksum := payload[len(payload)-2:]
	var want [2]byte
	binary.LittleEndian.PutUint16(want[:], crc16(body))
	if !bytes.Equal(checksum, want[:]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidStrkey)
	}

	return body[1:], nil
}

// crc16 computes the CRC16-XModem checksum strkeys are protected with.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
