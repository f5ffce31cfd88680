package payouts

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/wassel-ops/wassel-backend/internal/clients"
	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	pkgerrors "github.com/wassel-ops/wassel-backend/pkg/errors"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

// Service computes per-order payouts and the grouped per-client view the
// operators work from.
type Service interface {
	ListEligiblePayouts(ctx context.Context) ([]ClientPayout, error)
	ListEligibleByClient(ctx context.Context, clientID uuid.UUID) ([]ClientPayout, error)
	ListGrouped(ctx context.Context) (map[uuid.UUID]*ClientPayoutGroup, error)
}

type service struct {
	repo    Repository
	clients clients.Repository
}

// NewService builds a payouts service with the required dependencies.
func NewService(repo Repository, clientsRepo clients.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if clientsRepo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	return &service{repo: repo, clients: clientsRepo}, nil
}

func (s *service) ListEligiblePayouts(ctx context.Context) ([]ClientPayout, error) {
	orders, err := s.repo.ListEligible(ctx)
	if err != nil {
		return nil, err
	}
	return toPayouts(orders), nil
}

func (s *service) ListEligibleByClient(ctx context.Context, clientID uuid.UUID) ([]ClientPayout, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	orders, err := s.repo.ListEligibleByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return toPayouts(orders), nil
}

// ListGrouped returns every client's payout view: pending rows plus claimed
// rows awaiting settlement. Totals sum pending payouts only.
func (s *service) ListGrouped(ctx context.Context) (map[uuid.UUID]*ClientPayoutGroup, error) {
	eligible, err := s.repo.ListEligible(ctx)
	if err != nil {
		return nil, err
	}
	claimed, err := s.repo.ListClaimedUnsettled(ctx)
	if err != nil {
		return nil, err
	}

	groups := map[uuid.UUID]*ClientPayoutGroup{}
	for _, order := range append(eligible, claimed...) {
		group, ok := groups[order.ClientID]
		if !ok {
			group = &ClientPayoutGroup{
				Client:       ClientLabel{ID: order.ClientID},
				TotalPending: types.Zero(),
			}
			groups[order.ClientID] = group
		}

		payout := payoutFromOrder(order)
		group.Payouts = append(group.Payouts, payout)
		group.OrderCount++
		if payout.PayoutStatus == enums.PayoutStatusPending {
			group.TotalPending = group.TotalPending.Add(payout.NetPayout)
		}
	}

	if err := s.attachLabels(ctx, groups); err != nil {
		return nil, err
	}

	for _, group := range groups {
		sort.Slice(group.Payouts, func(i, j int) bool {
			return group.Payouts[i].CreatedAt.Before(group.Payouts[j].CreatedAt)
		})
	}
	return groups, nil
}

func (s *service) attachLabels(ctx context.Context, groups map[uuid.UUID]*ClientPayoutGroup) error {
	if len(groups) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}

	labels, err := s.clients.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for id, group := range groups {
		if c, ok := labels[id]; ok {
			group.Client.DisplayName = c.DisplayName
			group.Client.BusinessName = c.BusinessName
		}
	}
	return nil
}

func toPayouts(orders []models.Order) []ClientPayout {
	out := make([]ClientPayout, 0, len(orders))
	for _, order := range orders {
		out = append(out, payoutFromOrder(order))
	}
	return out
}
