package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer  = "shelfsync-test"
	testSignKey = "test-sign-key"
)

func TestGenerateJWTToken_RoundTrip(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, 7, time.Hour, testSignKey)
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)

	parsed, err := ValidateAndParseJWTToken(token.SignedString, testSignKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, int64(7), parsed.AccountID)
}

func TestGenerateJWTToken_InvalidParams(t *testing.T) {
	tests := []struct {
		name     string
		issuer   string
		duration time.Duration
		signKey  string
	}{
		{name: "empty issuer", issuer: "", duration: time.Hour, signKey: testSignKey},
		{name: "zero duration", issuer: testIssuer, duration: 0, signKey: testSignKey},
		{name: "empty sign key", issuer: testIssuer, duration: time.Hour, signKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateJWTToken(tt.issuer, 1, tt.duration, tt.signKey)
			assert.Error(t, err)
		})
	}
}

func TestValidateAndParseJWTToken_WrongKey(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, 7, time.Hour, testSignKey)
	require.NoError(t, err)

	_, err = ValidateAndParseJWTToken(token.SignedString, "other-key", testIssuer)
	assert.Error(t, err)
}

func TestValidateAndParseJWTToken_WrongIssuer(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, 7, time.Hour, testSignKey)
	require.NoError(t, err)

	_, err = ValidateAndParseJWTToken(token.SignedString, testSignKey, "someone-else")
	assert.Error(t, err)
}

func TestValidateAndParseJWTToken_Expired(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, 7, -time.Minute, testSignKey)
	require.NoError(t, err)

	_, err = ValidateAndParseJWTToken(token.SignedString, testSignKey, testIssuer)
	assert.Error(t, err)
}

func TestParseBearerToken(t *testing.T) {
	got, err := ParseBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", got)

	_, err = ParseBearerToken("abc.def.ghi")
	assert.Error(t, err)

	_, err = ParseBearerToken("Bearer ")
	assert.Error(t, err)
}

func TestParseAccountIDFromJWT(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, 99, time.Hour, testSignKey)
	require.NoError(t, err)

	id, err := ParseAccountIDFromJWT(token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
}
