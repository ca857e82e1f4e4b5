package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/utils"
)

// authMiddleware enforces JWT bearer authentication.
//
// It extracts the token from the "Authorization" header, verifies its
// signature, issuer and expiration, and stores the account ID from the
// subject claim in the request context under [utils.AccountIDCtxKey].
// Requests without a valid token are rejected with 401.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(ErrInvalidAuthorizationHeader).Send()
			http.Error(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		token, err := utils.ValidateAndParseJWTToken(tokenString, h.auth.TokenSignKey, h.auth.TokenIssuer)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				log.Err(err).Msg("token expired")
				http.Error(w, "token expired", http.StatusUnauthorized)
			default:
				log.Err(err).Msg("error occurred during parsing token")
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			}
			return
		}

		// Downstream handlers read the account ID from the context instead
		// of re-parsing the token.
		ctx := context.WithValue(r.Context(), utils.AccountIDCtxKey, token.AccountID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
