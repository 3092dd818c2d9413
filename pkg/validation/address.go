package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// AddressRules defines what a well-formed address looks like on one network.
type AddressRules struct {
	Network        string
	MinLength      int
	MaxLength      int
	AllowedPattern *regexp.Regexp
	// DecodedLength is the byte length a base58 address must decode to; 0 skips the check.
	DecodedLength int
	// ReservedAddresses are well-formed addresses that never name a token.
	ReservedAddresses map[string]string
	CaseSensitive     bool
	// Checksummed enables the EIP-55 mixed-case warning.
	Checksummed bool
}

// ValidationResult represents the result of address validation
type ValidationResult struct {
	IsValid    bool     `json:"is_valid"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Normalized string   `json:"normalized,omitempty"`
}

// Summary joins the validation errors, or returns "" for a valid result.
func (r *ValidationResult) Summary() string {
	if r.IsValid {
		return ""
	}
	return strings.Join(r.Errors, "; ")
}

// SolanaAddressRules accept base58 encoded 32-byte public keys.
var SolanaAddressRules = &AddressRules{
	Network:        "solana",
	MinLength:      32,
	MaxLength:      44,
	AllowedPattern: regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`),
	DecodedLength:  32,
	ReservedAddresses: map[string]string{
		"11111111111111111111111111111111":             "System Program",
		"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA":  "SPL Token Program",
		"TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb":  "Token-2022 Program",
		"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL": "Associated Token Account Program",
	},
	CaseSensitive: true,
}

// EVMAddressRules accept 0x-prefixed 20-byte hex addresses.
var EVMAddressRules = &AddressRules{
	Network:        "evm",
	MinLength:      42,
	MaxLength:      42,
	AllowedPattern: regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`),
	ReservedAddresses: map[string]string{
		"0x0000000000000000000000000000000000000000": "zero address",
	},
	CaseSensitive: false,
	Checksummed:   true,
}

// genericAddressRules only require a non-blank identifier.
var genericAddressRules = &AddressRules{
	Network:       "generic",
	MinLength:     1,
	MaxLength:     128,
	CaseSensitive: true,
}

var evmNetworks = map[string]bool{
	"ethereum":  true,
	"base":      true,
	"bsc":       true,
	"arbitrum":  true,
	"polygon":   true,
	"optimism":  true,
	"avalanche": true,
}

// RulesForNetwork picks the address rules for a network name.
func RulesForNetwork(network string) *AddressRules {
	n := strings.ToLower(strings.TrimSpace(network))
	switch {
	case n == "solana":
		return SolanaAddressRules
	case evmNetworks[n]:
		return EVMAddressRules
	default:
		return genericAddressRules
	}
}

// ValidateAddress validates an address against the specified rules
func ValidateAddress(address string, rules *AddressRules) *ValidationResult {
	if rules == nil {
		rules = SolanaAddressRules
	}

	result := &ValidationResult{
		IsValid:  true,
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	trimmed := strings.TrimSpace(address)
	if trimmed != address {
		result.Warnings = append(result.Warnings, "surrounding whitespace was removed")
	}
	normalized := trimmed
	if !rules.CaseSensitive {
		normalized = strings.ToLower(normalized)
	}
	result.Normalized = normalized

	if normalized == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, "address cannot be empty")
		return result
	}

	if len(normalized) < rules.MinLength {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("address must be at least %d characters long", rules.MinLength))
	}
	if len(normalized) > rules.MaxLength {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("address must not exceed %d characters", rules.MaxLength))
	}
	if rules.AllowedPattern != nil && !rules.AllowedPattern.MatchString(normalized) {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("address is not a valid %s address", rules.Network))
	}

	// decoding only tells us something once the shape is right
	if result.IsValid && rules.DecodedLength > 0 {
		raw, err := base58.Decode(normalized)
		if err != nil || len(raw) != rules.DecodedLength {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf("address must decode to %d bytes", rules.DecodedLength))
		}
	}

	if label, ok := rules.ReservedAddresses[normalized]; ok {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("address is the %s, not a token", label))
	}

	if result.IsValid && rules.Checksummed && isMixedCase(trimmed[2:]) {
		if common.HexToAddress(trimmed).Hex() != trimmed {
			result.Warnings = append(result.Warnings, "address checksum does not match EIP-55")
		}
	}

	return result
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
