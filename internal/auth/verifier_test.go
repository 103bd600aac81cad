package auth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transfers/internal/result"
)

func newVerifier(t *testing.T) *HMACVerifier {
	t.Helper()
	v, err := NewHMACVerifier([]byte("test-signing-key"))
	require.NoError(t, err)
	return v
}

func TestNewHMACVerifierEmptyKey(t *testing.T) {
	_, err := NewHMACVerifier(nil)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestSignAndVerify(t *testing.T) {
	v := newVerifier(t)

	token, err := v.Sign(Claims{Bucket: "uploads", Key: "a/b.txt"}, time.Hour)
	require.NoError(t, err)

	assert.True(t, v.Valid(token))
	claims, err := v.Claims(token)
	require.NoError(t, err)
	assert.Equal(t, "uploads", claims.Bucket)
	assert.Equal(t, "a/b.txt", claims.Key)
	require.NotNil(t, claims.ExpiresAt)
}

func TestClaimsRejectsBadTokens(t *testing.T) {
	v := newVerifier(t)
	other, err := NewHMACVerifier([]byte("another-key"))
	require.NoError(t, err)

	foreign, err := other.Sign(Claims{Bucket: "b", Key: "k"}, time.Hour)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Bucket: "b"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"Garbage", "not-a-jwt"},
		{"Wrong key", foreign},
		{"Expired", expired},
		{"Alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, v.Valid(tt.token))
			_, err := v.Claims(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		message string
	}{
		{"Valid", "Bearer abc.def.ghi", "abc.def.ghi", ""},
		{"Missing prefix", "abc.def.ghi", "", MsgInvalidAuthHeader},
		{"Lowercase prefix", "bearer abc", "", MsgInvalidAuthHeader},
		{"Empty", "", "", MsgInvalidAuthHeader},
		{"Prefix only", "Bearer  ", "", MsgTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, rerr := BearerToken(tt.header)
			if tt.message == "" {
				require.Nil(t, rerr)
				assert.Equal(t, tt.want, token)
				return
			}
			require.NotNil(t, rerr)
			assert.Equal(t, result.KindUnauthorized, rerr.Kind)
			assert.Equal(t, tt.message, rerr.Message)
		})
	}
}

func TestResolveToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		body   string
		want   string
	}{
		{"Header wins", "Bearer from-header", "from-body", "Bearer from-header"},
		{"Body normalized", "", "from-body", "Bearer from-body"},
		{"Body already prefixed", "", "Bearer from-body", "Bearer from-body"},
		{"Header normalized", "raw-header", "", "Bearer raw-header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, rerr := ResolveToken(tt.header, tt.body)
			require.Nil(t, rerr)
			assert.Equal(t, tt.want, token)
		})
	}

	_, rerr := ResolveToken("", "")
	require.NotNil(t, rerr)
	assert.Equal(t, result.KindUnauthorized, rerr.Kind)
	assert.Equal(t, MsgTokenRequired, rerr.Message)
}

type countingVerifier struct {
	valid bool
	calls int
}

func (c *countingVerifier) Valid(string) bool {
	c.calls++
	return c.valid
}

func (c *countingVerifier) Claims(string) (*Claims, error) {
	c.calls++
	return &Claims{Bucket: "b", Key: "k"}, nil
}

func TestAuthenticate(t *testing.T) {
	v := newVerifier(t)
	token, err := v.Sign(Claims{Bucket: "b", Key: "k"}, 0)
	require.NoError(t, err)

	claims, rerr := Authenticate(v, "Bearer "+token)
	require.Nil(t, rerr)
	assert.Equal(t, "b", claims.Bucket)

	_, rerr = Authenticate(v, "Bearer nope")
	require.NotNil(t, rerr)
	assert.Equal(t, result.KindUnauthorized, rerr.Kind)
	assert.Equal(t, MsgTokenInvalid, rerr.Message)

	cv := &countingVerifier{valid: true}
	_, rerr = Authenticate(cv, token)
	require.NotNil(t, rerr)
	assert.Equal(t, 0, cv.calls, "a malformed header never reaches the verifier")
}

func TestUploadTarget(t *testing.T) {
	target, rerr := (&Claims{Bucket: "b", Key: "k"}).UploadTarget()
	require.Nil(t, rerr)
	assert.Equal(t, "b", target.Bucket)
	assert.Equal(t, "k", target.Key)

	_, rerr = (&Claims{Bucket: "b"}).UploadTarget()
	require.NotNil(t, rerr)
	assert.Equal(t, result.KindBadRequest, rerr.Kind)
}

func TestManifest(t *testing.T) {
	files := json.RawMessage(`{"b1": [{"docs": [{"key": "k1", "fileName": "one.txt"}]}]}`)
	manifest, rerr := (&Claims{Files: files}).Manifest()
	require.Nil(t, rerr)
	require.Len(t, manifest.Buckets, 1)
	assert.Equal(t, "b1", manifest.Buckets[0].Bucket)
	assert.Equal(t, 1, manifest.FileCount())

	tests := []struct {
		name    string
		files   json.RawMessage
		message string
	}{
		{"Absent", nil, result.MsgNoFilesInToken},
		{"Null", json.RawMessage("null"), result.MsgNoFilesInToken},
		{"Empty object", json.RawMessage("{}"), result.MsgNoFilesInToken},
		{"Wrong shape", json.RawMessage(`["k1"]`), MsgInvalidFilesData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rerr := (&Claims{Files: tt.files}).Manifest()
			require.NotNil(t, rerr)
			assert.Equal(t, result.KindBadRequest, rerr.Kind)
			assert.Equal(t, tt.message, rerr.Message)
		})
	}
}

func TestFilesClaimRoundTrip(t *testing.T) {
	v := newVerifier(t)
	files := json.RawMessage(`{"b1":[{"docs":[{"key":"k1","fileName":"one.txt"}]}]}`)

	token, err := v.Sign(Claims{Files: files}, time.Minute)
	require.NoError(t, err)

	claims, err := v.Claims(token)
	require.NoError(t, err)
	manifest, rerr := claims.Manifest()
	require.Nil(t, rerr)
	assert.Equal(t, "one.txt", manifest.Buckets[0].Folders[0].Files[0].FileName)
}
