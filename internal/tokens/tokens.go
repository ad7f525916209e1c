package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired   = errors.New("token expired")
	ErrMalformed = errors.New("token malformed")
)

// AccessClaims carries the identity claim of a bearer token: the subject
// username plus the registered expiry.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// IssuerTZ is the single canonical timezone for all expiry math. Issuing and
// validating in different default zones would silently skew token lifetimes.
const IssuerTZ = "Asia/Tashkent"

type Issuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	loc    *time.Location
	now    func() time.Time
}

func NewIssuer(secret []byte, algorithm string, ttl time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty signing secret")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	loc, err := time.LoadLocation(IssuerTZ)
	if err != nil {
		return nil, fmt.Errorf("load location %s: %w", IssuerTZ, err)
	}
	return &Issuer{
		secret: secret,
		method: method,
		ttl:    ttl,
		loc:    loc,
		now:    time.Now,
	}, nil
}

func (i *Issuer) Now() time.Time {
	return i.now().In(i.loc)
}

// Issue signs a claim bundle {subject, expiry: now + ttl}.
func (i *Issuer) Issue(subject string) (string, error) {
	return i.IssueWithTTL(subject, i.ttl)
}

func (i *Issuer) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(i.Now().Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(i.method, claims)
	return t.SignedString(i.secret)
}

// Parse verifies signature and expiry and returns the claims. ErrExpired and
// ErrMalformed are the only failure modes surfaced to callers.
func (i *Issuer) Parse(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != i.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.Now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}
	if !tkn.Valid {
		return nil, ErrMalformed
	}
	return &claims, nil
}

// Reissue signs a fresh token for the same subject with the expiry anchored
// to now. The presented token is left untouched and stays valid until its own
// expiry, so two tokens for one identity can coexist after this call.
func (i *Issuer) Reissue(tokenStr string) (string, error) {
	claims, err := i.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return i.Issue(claims.Subject)
}
