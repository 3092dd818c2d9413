package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSignatureMismatch is returned when a signer produces a signature that
// does not verify against its own public key.
var ErrSignatureMismatch = errors.New("login signature does not match the wallet address")

// ErrNoExpiry is returned by TokenExpiry when the token carries no exp claim
// or is not a JWT at all.
var ErrNoExpiry = errors.New("token has no expiry")

// LoginPayload is the signed part of a wallet login.
type LoginPayload struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	PublicKey string `json:"publicKey"`
}

// LoginRequest is the body of POST /auth/wallet.
type LoginRequest struct {
	Payload   LoginPayload `json:"payload"`
	Signature string       `json:"signature"`
}

// LoginResult is what the authority answers to a login.
type LoginResult struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token,omitempty"`
	Address   string    `json:"address,omitempty"`
	Error     string    `json:"error,omitempty"`
	ExpiresAt time.Time `json:"-"`
}

// GenerateNonce returns 32 random bytes, hex encoded.
func GenerateNonce() (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(nonce), nil
}

// LoginMessage is the canonical text a wallet signs to log in.
func LoginMessage(publicKey, nonce string, timestamp int64) string {
	return fmt.Sprintf("TokenShield Wallet Login\nPublic Key: %s\nNonce: %s\nTimestamp: %d",
		publicKey, nonce, timestamp)
}

// NewLoginRequest builds and signs a login request dated now.
func NewLoginRequest(signer Signer, now time.Time) (*LoginRequest, error) {
	nonce, err := GenerateNonce()
	if err != nil {
		return nil, err
	}

	ts := now.UnixMilli()
	msg := LoginMessage(signer.PublicKey(), nonce, ts)
	sig, err := signer.SignMessage(msg)
	if err != nil {
		return nil, err
	}

	req := &LoginRequest{
		Payload: LoginPayload{
			Message:   msg,
			Timestamp: ts,
			PublicKey: signer.PublicKey(),
		},
		Signature: sig,
	}
	// the authority answers a bad signature with a bare 401
	ok, err := req.Verify(signer.Kind())
	if err != nil {
		return nil, fmt.Errorf("verify login signature: %w", err)
	}
	if !ok {
		return nil, ErrSignatureMismatch
	}
	return req, nil
}

// Verify checks the request signature for the given wallet kind.
func (r *LoginRequest) Verify(kind string) (bool, error) {
	switch strings.ToLower(kind) {
	case "", KindEthereum:
		return VerifyEthereumSignature(r.Payload.Message, r.Signature, r.Payload.PublicKey)
	case KindSolana:
		return VerifySolanaSignature(r.Payload.Message, r.Signature, r.Payload.PublicKey)
	default:
		return false, fmt.Errorf("unsupported wallet kind %q", kind)
	}
}

// TokenExpiry reads the exp claim of a bearer token without verifying it.
// The authority owns the signing key; the client only needs to know when to
// log in again.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrNoExpiry, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}
