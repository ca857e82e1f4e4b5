package http

import (
	"net/http"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

// getAccount reports the stable identity of the account the caller's token
// belongs to. Clients compare it against the identity they synced under to
// detect an account switch.
func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getAccount").Msg("no account ID in context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	account, err := h.services.Accounts.GetAccount(ctx, accountID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getAccount").Msg("account lookup failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, models.AccountResponse{
		Identity: models.AccountIdentity{RecordName: account.RecordName},
	}, http.StatusOK)
}

func (h *Handler) getServiceVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(h.version))
}
