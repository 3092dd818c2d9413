package auth

import (
	"crypto/ed25519"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEthKey     = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testEthAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
)

func TestEthereumSigner(t *testing.T) {
	signer, err := NewEthereumSigner(testEthKey)
	require.NoError(t, err)
	assert.Equal(t, KindEthereum, signer.Kind())
	assert.Equal(t, testEthAddress, signer.PublicKey())

	sig, err := signer.SignMessage("hello")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sig, "0x"))
	assert.Len(t, sig, 2+65*2)

	ok, err := VerifyEthereumSignature("hello", sig, signer.PublicKey())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyEthereumSignature("goodbye", sig, signer.PublicKey())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewEthereumSigner_InvalidKey(t *testing.T) {
	_, err := NewEthereumSigner("not-hex")
	assert.Error(t, err)
}

func TestSolanaSigner(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}

	fromSeed, err := NewSolanaSigner(base58.Encode(seed))
	require.NoError(t, err)
	fromSecret, err := NewSolanaSigner(base58.Encode(ed25519.NewKeyFromSeed(seed)))
	require.NoError(t, err)

	assert.Equal(t, KindSolana, fromSeed.Kind())
	assert.Equal(t, fromSeed.PublicKey(), fromSecret.PublicKey())

	pub, err := base58.Decode(fromSeed.PublicKey())
	require.NoError(t, err)
	assert.Len(t, pub, ed25519.PublicKeySize)

	sig, err := fromSeed.SignMessage("hello")
	require.NoError(t, err)
	ok, err := VerifySolanaSignature("hello", sig, fromSeed.PublicKey())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySolanaSignature("tampered", sig, fromSeed.PublicKey())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewSolanaSigner_WrongLength(t *testing.T) {
	_, err := NewSolanaSigner(base58.Encode([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestNewSigner(t *testing.T) {
	s, err := NewSigner("", testEthKey)
	require.NoError(t, err)
	assert.Equal(t, KindEthereum, s.Kind())

	_, err = NewSigner("bitcoin", "x")
	assert.Error(t, err)
}

func TestNewLoginRequest(t *testing.T) {
	signer, err := NewEthereumSigner(testEthKey)
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	req, err := NewLoginRequest(signer, now)
	require.NoError(t, err)

	assert.Equal(t, now.UnixMilli(), req.Payload.Timestamp)
	assert.Equal(t, testEthAddress, req.Payload.PublicKey)
	assert.Contains(t, req.Payload.Message, testEthAddress)
	assert.Contains(t, req.Payload.Message, "Timestamp: 1772366400000")

	ok, err := req.Verify(KindEthereum)
	require.NoError(t, err)
	assert.True(t, ok)

	again, err := NewLoginRequest(signer, now)
	require.NoError(t, err)
	assert.NotEqual(t, req.Payload.Message, again.Payload.Message, "each login uses a fresh nonce")
}

// foreignSigner signs with one key but claims another wallet.
type foreignSigner struct {
	*EthereumSigner
	claimed string
}

func (s foreignSigner) PublicKey() string { return s.claimed }

func TestNewLoginRequest_SignatureMismatch(t *testing.T) {
	signer, err := NewEthereumSigner(testEthKey)
	require.NoError(t, err)

	_, err = NewLoginRequest(foreignSigner{signer, "0x000000000000000000000000000000000000dEaD"}, time.Now())
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "wallet",
		"exp": exp.Unix(),
	}).SignedString([]byte("authority-secret"))
	require.NoError(t, err)

	got, err := TokenExpiry(signed)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got), "got %v", got)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "wallet"}).
		SignedString([]byte("authority-secret"))
	require.NoError(t, err)
	_, err = TokenExpiry(noExp)
	assert.ErrorIs(t, err, ErrNoExpiry)

	_, err = TokenExpiry("opaque-api-key")
	assert.ErrorIs(t, err, ErrNoExpiry)
}
