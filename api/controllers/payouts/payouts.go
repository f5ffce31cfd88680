package payouts

import (
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/wassel-ops/wassel-backend/api/middleware"
	"github.com/wassel-ops/wassel-backend/api/responses"
	"github.com/wassel-ops/wassel-backend/api/validators"
	payoutsvc "github.com/wassel-ops/wassel-backend/internal/payouts"
	pkgerrors "github.com/wassel-ops/wassel-backend/pkg/errors"
	"github.com/wassel-ops/wassel-backend/pkg/logger"
)

// ListEligible returns the pending payout rows. Client-scoped tokens see only
// their own orders; operators may filter with ?client_id=.
func ListEligible(svc payoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}

		if scoped := middleware.ClientIDFromContext(r.Context()); scoped != "" {
			clientID, err := uuid.Parse(scoped)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid client scope"))
				return
			}
			payouts, err := svc.ListEligibleByClient(r.Context(), clientID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, payouts)
			return
		}

		filter, err := validators.ParseQueryUUID(r, "client_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if filter != nil {
			payouts, err := svc.ListEligibleByClient(r.Context(), *filter)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, payouts)
			return
		}

		payouts, err := svc.ListEligiblePayouts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payouts)
	}
}

// ListGrouped returns the per-client payout worksheet the operators settle from.
func ListGrouped(svc payoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}

		groups, err := svc.ListGrouped(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]*payoutsvc.ClientPayoutGroup, 0, len(groups))
		for _, group := range groups {
			out = append(out, group)
		}
		// Stable order so the worksheet does not reshuffle between reloads.
		sort.Slice(out, func(i, j int) bool {
			if out[i].Client.DisplayName != out[j].Client.DisplayName {
				return out[i].Client.DisplayName < out[j].Client.DisplayName
			}
			return out[i].Client.ID.String() < out[j].Client.ID.String()
		})
		responses.WriteSuccess(w, out)
	}
}
