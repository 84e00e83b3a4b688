package linkedin

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Expected issuer for LinkedIn-minted ID tokens.
const IDTokenIssuer = "https://www.linkedin.com/oauth"

var ErrInvalidIDToken = errors.New("invalid ID token")

// jwks is the subset of RFC 7517 needed to rebuild LinkedIn's RSA keys.
type jwks struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

type idTokenClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	Locale  string `json:"locale"`
	jwt.RegisteredClaims
}

// VerifyIDToken is the opt-in safer counterpart to UntrustedClaims: it checks
// the RS256 signature against the provider's published keys plus issuer and
// audience before yielding any claims. Callers that need trusted identity must
// use this, not the payload decode.
func (o *OAuth) VerifyIDToken(ctx context.Context, raw string) (models.IdentityRecord, error) {
	keys, err := o.fetchJWKS(ctx)
	if err != nil {
		return models.IdentityRecord{}, fmt.Errorf("fetching provider keys: %w", err)
	}

	claims := &idTokenClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("no provider key for kid %q", kid)
		}
		return key, nil
	},
		jwt.WithIssuer(IDTokenIssuer),
		jwt.WithAudience(o.ClientID),
		jwt.WithValidMethods([]string{"RS256"}),
	)
	if err != nil {
		return models.IdentityRecord{}, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	if !tok.Valid {
		return models.IdentityRecord{}, ErrInvalidIDToken
	}
	return models.IdentityRecord{
		Sub:     claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
		Locale:  claims.Locale,
	}, nil
}

func (o *OAuth) fetchJWKS(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.authBase()+"/oauth/openid/jwks", nil)
	if err != nil {
		return nil, err
	}
	res, err := o.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("jwks_non_2xx status=%d body=%s", res.StatusCode, truncate(string(body), 600))
	}

	var set jwks
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, err
	}
	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := rsaKeyFromJWK(k.N, k.E)
		if err != nil {
			return nil, fmt.Errorf("bad provider key kid=%s: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, errors.New("provider JWKS contains no RSA keys")
	}
	return keys, nil
}

func rsaKeyFromJWK(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, err
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}
