package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shelfsync/shelfsync/models"
)

// GenerateJWTToken creates a signed HMAC-SHA256 session token with the
// standard claims: Issuer, Subject (the account ID as a string), IssuedAt
// and ExpiresAt. All parameters are required.
func GenerateJWTToken(issuer string, accountID int64, tokenDuration time.Duration, signKey string) (models.AuthToken, error) {
	if issuer == "" || tokenDuration == 0 || signKey == "" {
		return models.AuthToken{}, errors.New("invalid params for generating JWT token")
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(accountID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.AuthToken{}, fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return models.AuthToken{Token: token, SignedString: tokenString, AccountID: accountID}, nil
}

// ValidateAndParseJWTToken verifies the signature, issuer and expiration of
// tokenString and extracts the account ID from the subject claim.
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (models.AuthToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AuthToken{}, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return models.AuthToken{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	accountIDStr, err := token.Claims.GetSubject()
	if err != nil {
		return models.AuthToken{}, fmt.Errorf("error occurred during getting subject from token: %w", err)
	}
	if accountIDStr == "" {
		return models.AuthToken{}, errors.New("empty subject error")
	}

	accountID, err := strconv.ParseInt(accountIDStr, 10, 64)
	if err != nil {
		return models.AuthToken{}, fmt.Errorf("error occurred during converting subject to account ID: %w", err)
	}

	return models.AuthToken{Token: token, AccountID: accountID}, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer ..."
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// ParseAccountIDFromJWT extracts the subject claim without verifying the
// signature. Only for use on tokens the client itself just received from a
// trusted response.
func ParseAccountIDFromJWT(tokenString string) (int64, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(sub, 10, 64)
}
