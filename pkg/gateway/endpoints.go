package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tokenshield/pkg/auth"
	"tokenshield/pkg/safety"
	"tokenshield/pkg/validation"
)

// tokenSegments maps token dimensions to their /token/{segment}/... path.
var tokenSegments = map[safety.Dimension]string{
	safety.DimensionHoneypot:          "honeypot",
	safety.DimensionLiquidity:         "liquidity",
	safety.DimensionContract:          "contract",
	safety.DimensionRisk:              "risk",
	safety.DimensionMetadata:          "metadata",
	safety.DimensionSocial:            "social",
	safety.DimensionDeveloper:         "developer",
	safety.DimensionVolume:            "volume",
	safety.DimensionPriceManipulation: "price-manipulation",
	safety.DimensionCommunity:         "community",
	safety.DimensionAudit:             "audit",
	safety.DimensionTeam:              "team",
	safety.DimensionFunding:           "funding",
	safety.DimensionCompliance:        "compliance",
	safety.DimensionSentiment:         "sentiment",
}

// TokenDimensions lists the dimensions FetchDimension accepts.
func TokenDimensions() []safety.Dimension {
	out := make([]safety.Dimension, 0, len(tokenSegments))
	for d := range tokenSegments {
		out = append(out, d)
	}
	safety.SortDimensions(out)
	return out
}

// Payload is a decoded service response whose shape the caller interprets.
type Payload map[string]any

// FetchOption tunes a single token read.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	forceRescan bool
}

// ForceRescan asks the authority to recompute instead of serving its own
// cached result, and bypasses the local cache.
func ForceRescan() FetchOption {
	return func(o *fetchOptions) { o.forceRescan = true }
}

func applyFetchOptions(opts []FetchOption) fetchOptions {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FetchDimension reads one token dimension.
func (c *Client) FetchDimension(ctx context.Context, dim safety.Dimension, address string, opts ...FetchOption) (safety.SubReport, error) {
	segment, ok := tokenSegments[dim]
	if !ok {
		return safety.SubReport{}, &InvalidInputError{Field: "dimension", Value: dim.String(), Reason: "not a token dimension"}
	}
	addr, err := c.checkAddress("token address", address)
	if err != nil {
		return safety.SubReport{}, err
	}
	o := applyFetchOptions(opts)
	return c.getReport(ctx, request{
		dimension: dim,
		method:    http.MethodGet,
		path:      c.tokenPath(segment, addr),
		cacheable: true,
		fresh:     o.forceRescan,
	})
}

func (c *Client) Honeypot(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionHoneypot, address, opts...)
}

func (c *Client) Liquidity(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionLiquidity, address, opts...)
}

// Contract reads the contract verification report.
func (c *Client) Contract(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionContract, address, opts...)
}

func (c *Client) Risk(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionRisk, address, opts...)
}

func (c *Client) Metadata(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionMetadata, address, opts...)
}

func (c *Client) Social(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionSocial, address, opts...)
}

// Developer reads the developer activity report.
func (c *Client) Developer(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionDeveloper, address, opts...)
}

func (c *Client) Volume(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionVolume, address, opts...)
}

func (c *Client) PriceManipulation(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionPriceManipulation, address, opts...)
}

// Community reads the community trust report.
func (c *Client) Community(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionCommunity, address, opts...)
}

func (c *Client) Audit(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionAudit, address, opts...)
}

func (c *Client) Team(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionTeam, address, opts...)
}

func (c *Client) Funding(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionFunding, address, opts...)
}

func (c *Client) Compliance(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionCompliance, address, opts...)
}

func (c *Client) Sentiment(ctx context.Context, address string, opts ...FetchOption) (safety.SubReport, error) {
	return c.FetchDimension(ctx, safety.DimensionSentiment, address, opts...)
}

// History reads historical safety data. An empty timeframe leaves the
// window to the authority.
func (c *Client) History(ctx context.Context, address, timeframe string, opts ...FetchOption) (safety.SubReport, error) {
	addr, err := c.checkAddress("token address", address)
	if err != nil {
		return safety.SubReport{}, err
	}
	if err := validation.ValidateTimeframe(timeframe); err != nil {
		return safety.SubReport{}, &InvalidInputError{Field: "timeframe", Value: timeframe, Reason: err.Error()}
	}
	q := url.Values{}
	if timeframe != "" {
		q.Set("timeframe", timeframe)
	}
	o := applyFetchOptions(opts)
	return c.getReport(ctx, request{
		dimension: safety.DimensionHistory,
		method:    http.MethodGet,
		path:      c.tokenPath("history", addr),
		query:     q,
		cacheable: true,
		fresh:     o.forceRescan,
	})
}

// WalletRisk reads the risk profile of a wallet.
func (c *Client) WalletRisk(ctx context.Context, address string) (safety.SubReport, error) {
	addr, err := c.checkAddress("wallet address", address)
	if err != nil {
		return safety.SubReport{}, err
	}
	return c.getReport(ctx, request{
		dimension: safety.DimensionWalletRisk,
		method:    http.MethodGet,
		path:      fmt.Sprintf("/wallet/risk/%s/%s", url.PathEscape(c.network), url.PathEscape(addr)),
		cacheable: true,
	})
}

// PoolSafety reads the safety report of a liquidity pool.
func (c *Client) PoolSafety(ctx context.Context, address string) (safety.SubReport, error) {
	addr, err := c.checkAddress("pool address", address)
	if err != nil {
		return safety.SubReport{}, err
	}
	return c.getReport(ctx, request{
		dimension: safety.DimensionPoolSafety,
		method:    http.MethodGet,
		path:      fmt.Sprintf("/pool/safety/%s/%s", url.PathEscape(c.network), url.PathEscape(addr)),
		cacheable: true,
	})
}

// Website analyzes the project website at rawURL.
func (c *Client) Website(ctx context.Context, rawURL string) (safety.SubReport, error) {
	site, err := validation.ValidateWebsiteURL(rawURL)
	if err != nil {
		return safety.SubReport{}, &InvalidInputError{Field: "url", Value: rawURL, Reason: err.Error()}
	}
	return c.getReport(ctx, request{
		dimension: safety.DimensionWebsite,
		method:    http.MethodGet,
		path:      "/website/analyze",
		query:     url.Values{"url": {site.URL.String()}},
		cacheable: true,
	})
}

// Search looks tokens up by name, symbol or address. A limit of 0 lets the
// authority choose.
func (c *Client) Search(ctx context.Context, query string, limit int) (Payload, error) {
	if err := validation.ValidateSearch(query, limit); err != nil {
		return nil, &InvalidInputError{Field: "query", Value: query, Reason: err.Error()}
	}
	q := url.Values{"query": {strings.TrimSpace(query)}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.getPayload(ctx, request{
		dimension: safety.DimensionSearch,
		method:    http.MethodGet,
		path:      "/token/search",
		query:     q,
		cacheable: true,
	})
}

// Alerts lists the alerts raised for a token, optionally narrowed to one
// subscriber email.
func (c *Client) Alerts(ctx context.Context, address, email string) (Payload, error) {
	addr, err := c.checkAddress("token address", address)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	if email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, &InvalidInputError{Field: "email", Value: email, Reason: err.Error()}
		}
		q.Set("email", email)
	}
	return c.getPayload(ctx, request{
		dimension: safety.DimensionAlerts,
		method:    http.MethodGet,
		path:      fmt.Sprintf("/alerts/token/%s/%s", url.PathEscape(c.network), url.PathEscape(addr)),
		query:     q,
	})
}

// Subscribe registers email for alert delivery.
func (c *Client) Subscribe(ctx context.Context, email string) (Payload, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, &InvalidInputError{Field: "email", Value: email, Reason: err.Error()}
	}
	return c.getPayload(ctx, request{
		dimension: safety.DimensionSubscribe,
		method:    http.MethodPost,
		path:      "/alerts/subscribe",
		body:      map[string]string{"email": email},
	})
}

// Usage returns the account's API usage statistics.
func (c *Client) Usage(ctx context.Context) (Payload, error) {
	return c.getPayload(ctx, request{
		dimension: safety.DimensionUsage,
		method:    http.MethodGet,
		path:      "/account/usage",
	})
}

// Networks lists the chains the authority supports.
func (c *Client) Networks(ctx context.Context) (Payload, error) {
	return c.getPayload(ctx, request{
		dimension: safety.DimensionNetworks,
		method:    http.MethodGet,
		path:      "/meta/networks",
		cacheable: true,
	})
}

// Health reports the authority's own health.
func (c *Client) Health(ctx context.Context) (Payload, error) {
	return c.getPayload(ctx, request{
		dimension: safety.DimensionHealth,
		method:    http.MethodGet,
		path:      "/meta/health",
	})
}

// Login exchanges a signed wallet payload for a bearer token. It does not
// change c; use WithCredentials or Session.Login to adopt the token.
func (c *Client) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResult, error) {
	if req == nil || req.Payload.PublicKey == "" || req.Signature == "" {
		return nil, &InvalidInputError{Field: "login", Reason: "public key and signature are required"}
	}
	body, err := c.do(ctx, request{
		dimension: safety.DimensionAuth,
		method:    http.MethodPost,
		path:      "/auth/wallet",
		body:      req,
	})
	if err != nil {
		return nil, err
	}

	var res auth.LoginResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &RemoteFetchError{Dimension: safety.DimensionAuth, Cause: fmt.Errorf("auth: decode response: %w", err)}
	}
	if res.Token == "" {
		msg := res.Error
		if msg == "" {
			msg = "no token in response"
		}
		return nil, &RemoteFetchError{Dimension: safety.DimensionAuth, Cause: fmt.Errorf("auth: %s", msg)}
	}
	if exp, err := auth.TokenExpiry(res.Token); err == nil {
		res.ExpiresAt = exp
	}
	return &res, nil
}

func (c *Client) tokenPath(segment, address string) string {
	return fmt.Sprintf("/token/%s/%s/%s", segment, url.PathEscape(c.network), url.PathEscape(address))
}

// checkAddress rejects blank or malformed identifiers before any I/O and
// returns the normalized form.
func (c *Client) checkAddress(field, address string) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", &InvalidInputError{Field: field, Reason: "cannot be empty"}
	}
	res := validation.ValidateAddress(address, validation.RulesForNetwork(c.network))
	if !res.IsValid {
		return "", &InvalidInputError{Field: field, Value: address, Reason: res.Summary()}
	}
	return res.Normalized, nil
}

func (c *Client) getReport(ctx context.Context, r request) (safety.SubReport, error) {
	body, err := c.do(ctx, r)
	if err != nil {
		return safety.SubReport{}, err
	}
	report, err := safety.DecodeSubReport(r.dimension, body)
	if err != nil {
		return safety.SubReport{}, &RemoteFetchError{Dimension: r.dimension, Cause: err}
	}
	return report, nil
}

// getPayload decodes an object body; a top-level array is wrapped under
// "items".
func (c *Client) getPayload(ctx context.Context, r request) (Payload, error) {
	body, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &RemoteFetchError{Dimension: r.dimension, Cause: fmt.Errorf("%s: decode response: %w", r.dimension, err)}
	}
	switch t := v.(type) {
	case map[string]any:
		return Payload(t), nil
	case []any:
		return Payload{"items": t}, nil
	default:
		return nil, &RemoteFetchError{Dimension: r.dimension, Cause: fmt.Errorf("%s: decode response: unexpected %T body", r.dimension, v)}
	}
}
