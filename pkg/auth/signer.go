package auth

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

// Wallet kinds accepted by NewSigner.
const (
	KindEthereum = "ethereum"
	KindSolana   = "solana"
)

// Signer signs wallet-login messages with a key the user controls.
type Signer interface {
	// Kind is the wallet family, "ethereum" or "solana".
	Kind() string
	// PublicKey is the identity the authority ties the login to.
	PublicKey() string
	// SignMessage returns the encoded signature over message.
	SignMessage(message string) (string, error)
}

// NewSigner builds a signer for the given wallet kind from its encoded key.
func NewSigner(kind, key string) (Signer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindEthereum:
		return NewEthereumSigner(key)
	case KindSolana:
		return NewSolanaSigner(key)
	default:
		return nil, fmt.Errorf("unsupported wallet kind %q", kind)
	}
}

// EthereumSigner signs with a secp256k1 key using personal_sign semantics.
type EthereumSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewEthereumSigner parses a hex private key, with or without 0x.
func NewEthereumSigner(privateKeyHex string) (*EthereumSigner, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")

	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &EthereumSigner{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

func (s *EthereumSigner) Kind() string { return KindEthereum }

// PublicKey returns the checksummed address.
func (s *EthereumSigner) PublicKey() string { return s.address.Hex() }

// SignMessage signs the EIP-191 hash of message and returns a 0x-prefixed
// 65-byte signature with a 27/28 recovery id.
func (s *EthereumSigner) SignMessage(message string) (string, error) {
	hash := accounts.TextHash([]byte(message))
	signature, err := crypto.Sign(hash, s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	signature[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(signature), nil
}

// VerifyEthereumSignature checks a personal_sign signature against address.
func VerifyEthereumSignature(message, signature, address string) (bool, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return false, fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return false, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pubkey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return false, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pubkey) == common.HexToAddress(address), nil
}

// SolanaSigner signs with an ed25519 keypair.
type SolanaSigner struct {
	privateKey ed25519.PrivateKey
	publicKey  string
}

// NewSolanaSigner parses a base58 key: either the 64-byte secret key most
// wallets export or a bare 32-byte seed.
func NewSolanaSigner(privateKeyBase58 string) (*SolanaSigner, error) {
	raw, err := base58.Decode(strings.TrimSpace(privateKeyBase58))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	var key ed25519.PrivateKey
	switch len(raw) {
	case ed25519.PrivateKeySize:
		key = ed25519.PrivateKey(raw)
	case ed25519.SeedSize:
		key = ed25519.NewKeyFromSeed(raw)
	default:
		return nil, fmt.Errorf("private key must be %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}

	pub := key.Public().(ed25519.PublicKey)
	return &SolanaSigner{privateKey: key, publicKey: base58.Encode(pub)}, nil
}

func (s *SolanaSigner) Kind() string { return KindSolana }

// PublicKey returns the base58 wallet address.
func (s *SolanaSigner) PublicKey() string { return s.publicKey }

// SignMessage returns the base58 ed25519 signature over the raw message bytes.
func (s *SolanaSigner) SignMessage(message string) (string, error) {
	return base58.Encode(ed25519.Sign(s.privateKey, []byte(message))), nil
}

// VerifySolanaSignature checks a base58 signature against a base58 public key.
func VerifySolanaSignature(message, signature, publicKey string) (bool, error) {
	pub, err := base58.Decode(publicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("invalid public key %q", publicKey)
	}
	sig, err := base58.Decode(signature)
	if err != nil {
		return false, fmt.Errorf("failed to decode signature: %w", err)
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig), nil
}
