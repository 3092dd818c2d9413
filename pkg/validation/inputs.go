package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/publicsuffix"
)

// MaxSearchLimit caps the number of results a search may ask for.
const MaxSearchLimit = 100

var (
	validate = validator.New()

	// timeframes look like 1h, 24h, 7d, 4w, 3m, 1y
	timeframePattern = regexp.MustCompile(`^[1-9][0-9]{0,2}[hdwmy]$`)
)

// Website is a checked website URL together with its registrable domain.
type Website struct {
	URL    *url.URL
	Domain string
}

// ValidateWebsiteURL accepts absolute http(s) URLs whose host has a
// registrable domain under the public suffix list. A bare host such as
// "pump.fun" is read as https.
func ValidateWebsiteURL(raw string) (*Website, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if err := validate.Var(raw, "url"); err != nil {
		return nil, fmt.Errorf("url %q is not a valid URL", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url scheme %q is not supported", u.Scheme)
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return nil, fmt.Errorf("url %q has no host", raw)
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return nil, fmt.Errorf("host %q has no registrable domain", host)
	}
	return &Website{URL: u, Domain: domain}, nil
}

// ValidateEmail checks the address is a syntactically valid email.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if err := validate.Var(email, "email"); err != nil {
		return fmt.Errorf("email %q is not valid", email)
	}
	return nil
}

// ValidateTimeframe accepts an empty timeframe (authority default) or a
// count followed by a unit.
func ValidateTimeframe(tf string) error {
	if tf == "" {
		return nil
	}
	if !timeframePattern.MatchString(tf) {
		return fmt.Errorf("timeframe %q must look like 24h, 7d or 1y", tf)
	}
	return nil
}

// ValidateSearch checks a free-text query and its result limit. A limit of 0
// leaves the choice to the authority.
func ValidateSearch(query string, limit int) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search query cannot be empty")
	}
	if limit < 0 || limit > MaxSearchLimit {
		return fmt.Errorf("limit must be between 0 and %d", MaxSearchLimit)
	}
	return nil
}
