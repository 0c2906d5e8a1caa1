package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cynit/hub/internal/hub/domain"
	"github.com/cynit/hub/pkg/jwkx"
	"github.com/cynit/hub/pkg/opclient"
)

var (
	// ErrNoKey means the caller supplied neither a JWK upload nor a vault kid.
	ErrNoKey = errors.New("service: no private JWK uploaded and no vault kid given")

	// ErrOPBaseNotAllowed means the requested authorization server is not on
	// the configured allowlist.
	ErrOPBaseNotAllowed = errors.New("service: authorization server is not on the allowlist")
)

// ExchangeService drives the full credentials flow: resolve the private JWK,
// build a client assertion, merge scopes, perform the exchange, and record
// the resulting session.
type ExchangeService struct {
	Sessions *SessionStore
	Vault    *VaultService
	Logger   *slog.Logger

	// MandatoryScopes is merged into every request. Nil means the default
	// set.
	MandatoryScopes []string

	// AllowedOPBases restricts which authorization servers may be targeted.
	// Empty allows any.
	AllowedOPBases []string
}

// ExchangeRequest carries one token request. Exactly one of JWK and
// VaultKid must be set; JWK wins when both are.
type ExchangeRequest struct {
	JWK      []byte // raw private JWK JSON as uploaded
	VaultKid string // or: kid of a vault entry
	Issuer   string // optional, defaults to the JWK's kid
	OPBase   string // authorization server base URL
	Scope    string // whitespace-separated extra scopes
}

// ExchangeResult is a session plus whether it was freshly exchanged or an
// existing live session was reused.
type ExchangeResult struct {
	Session domain.Session
	Reused  bool
}

// Exchange performs (or short-circuits) one token exchange. A live session
// for the same issuer and server is reused rather than burning another
// round trip; everything else results in exactly one outbound call, with no
// retry on denial.
func (s *ExchangeService) Exchange(ctx context.Context, req ExchangeRequest) (ExchangeResult, error) {
	if req.OPBase == "" {
		return ExchangeResult{}, fmt.Errorf("service: op_base is required")
	}
	if len(s.AllowedOPBases) > 0 && !slices.Contains(s.AllowedOPBases, req.OPBase) {
		return ExchangeResult{}, fmt.Errorf("%w: %s", ErrOPBaseNotAllowed, req.OPBase)
	}

	jwkJSON, err := s.resolveKey(ctx, req)
	if err != nil {
		return ExchangeResult{}, err
	}

	jwk, err := jwkx.Parse(jwkJSON)
	if err != nil {
		return ExchangeResult{}, err
	}
	key, err := jwkx.ParseSigningKey(jwk)
	if err != nil {
		return ExchangeResult{}, err
	}

	issuer := req.Issuer
	if issuer == "" {
		issuer = jwk.Kid
	}
	if issuer == "" {
		return ExchangeResult{}, jwkx.ErrMissingIssuer
	}

	if session, ok := s.Sessions.FindLive(issuer, req.OPBase); ok {
		s.log().Info("reusing live token session",
			"session_id", session.ID, "issuer", issuer, "op_base", req.OPBase)
		return ExchangeResult{Session: session, Reused: true}, nil
	}

	assertion, err := jwkx.BuildClientAssertion(key, issuer, req.OPBase)
	if err != nil {
		return ExchangeResult{}, err
	}

	merged := opclient.MergeScopes(s.mandatory(), req.Scope)

	// The form audience is the client's kid; the issuer only stands in for a
	// key that carries none.
	audience := jwk.Kid
	if audience == "" {
		audience = issuer
	}

	client := opclient.New(req.OPBase)
	resp, err := client.AssertionGrant(ctx, assertion, audience, merged)
	if err != nil {
		// Denials come back with the server's body intact; nothing is
		// recorded for them.
		return ExchangeResult{}, err
	}

	grantedScope := resp.Scope
	if grantedScope == "" {
		grantedScope = merged
	}

	session, err := s.Sessions.Create(issuer, req.OPBase, resp.AccessToken, grantedScope, resp.ExpiresIn)
	if err != nil {
		return ExchangeResult{}, err
	}

	s.log().Info("token exchange granted",
		"session_id", session.ID, "issuer", issuer, "op_base", req.OPBase,
		"alg", key.Alg, "expires_in", resp.ExpiresIn)

	return ExchangeResult{Session: session}, nil
}

func (s *ExchangeService) resolveKey(ctx context.Context, req ExchangeRequest) ([]byte, error) {
	if len(req.JWK) > 0 {
		return req.JWK, nil
	}
	if req.VaultKid != "" {
		entry, err := s.Vault.Get(ctx, req.VaultKid)
		if err != nil {
			return nil, err
		}
		return entry.JWK, nil
	}
	return nil, ErrNoKey
}

func (s *ExchangeService) mandatory() []string {
	if s.MandatoryScopes != nil {
		return s.MandatoryScopes
	}
	return opclient.DefaultMandatoryScopes
}

func (s *ExchangeService) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
