package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	iss := NewIssuer("s3cret", 7*24*time.Hour).WithClock(fixedClock(epoch))

	token, err := iss.Issue(IdentityClaims{Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)

	claims, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, IdentityClaims{Email: "ada@example.com", Name: "Ada"}, claims.Identity())
	assert.Equal(t, epoch.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, epoch.Unix(), claims.IssuedAt.Unix())
}

func TestIssueRequiresEmail(t *testing.T) {
	_, err := NewIssuer("s3cret", time.Hour).Issue(IdentityClaims{Name: "nobody"})
	assert.ErrorIs(t, err, ErrMissingEmail)
}

func TestVerifyRejects(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour).WithClock(fixedClock(epoch))
	valid, err := iss.Issue(IdentityClaims{Email: "ada@example.com"})
	require.NoError(t, err)

	expired := iss.WithClock(fixedClock(epoch.Add(2 * time.Hour)))
	otherSecret := NewIssuer("different", time.Hour).WithClock(fixedClock(epoch))

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "ada@example.com"}).
		SignedString([]byte("s3cret"))
	require.NoError(t, err)

	cases := map[string]struct {
		issuer *Issuer
		token  string
	}{
		"expired":        {expired, valid},
		"wrong secret":   {otherSecret, valid},
		"malformed":      {iss, "not.a.jwt"},
		"empty":          {iss, ""},
		"alg none":       {iss, noneToken},
		"missing expiry": {iss, noExpiry},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			claims, err := tc.issuer.Verify(tc.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
