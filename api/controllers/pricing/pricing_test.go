package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/wassel-ops/wassel-backend/api/middleware"
	pricingsvc "github.com/wassel-ops/wassel-backend/internal/pricing"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	"github.com/wassel-ops/wassel-backend/pkg/logger"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

// testPricingService embeds the interface so only the methods under test need
// real implementations.
type testPricingService struct {
	pricingsvc.Service
	resolveFn func(ctx context.Context, input pricingsvc.ResolveInput) (*pricingsvc.Resolution, error)
}

func (s *testPricingService) Resolve(ctx context.Context, input pricingsvc.ResolveInput) (*pricingsvc.Resolution, error) {
	return s.resolveFn(ctx, input)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestResolveSuccess(t *testing.T) {
	clientID := uuid.New()
	governorate := uuid.New()

	svc := &testPricingService{
		resolveFn: func(ctx context.Context, input pricingsvc.ResolveInput) (*pricingsvc.Resolution, error) {
			if input.ClientID != clientID {
				t.Fatalf("unexpected client %s", input.ClientID)
			}
			if input.GovernorateID == nil || *input.GovernorateID != governorate {
				t.Fatalf("governorate not forwarded")
			}
			if input.PackageType != enums.PackageTypeParcel {
				t.Fatalf("unexpected package type %s", input.PackageType)
			}
			return &pricingsvc.Resolution{
				Fee:  types.NewMoney("4.50", 150000),
				Tier: enums.PricingTierClientZone,
			}, nil
		},
	}

	body, _ := json.Marshal(map[string]any{
		"client_id":      clientID,
		"governorate_id": governorate,
		"package_type":   "parcel",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/resolve", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	Resolve(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Fee  types.Money `json:"fee"`
			Tier string      `json:"tier"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Tier != "client_zone" {
		t.Fatalf("unexpected tier %s", envelope.Data.Tier)
	}
	if !envelope.Data.Fee.Equal(types.NewMoney("4.50", 150000)) {
		t.Fatalf("unexpected fee %+v", envelope.Data.Fee)
	}
}

func TestResolveClientScopeOverridesBody(t *testing.T) {
	tokenClient := uuid.New()

	svc := &testPricingService{
		resolveFn: func(ctx context.Context, input pricingsvc.ResolveInput) (*pricingsvc.Resolution, error) {
			if input.ClientID != tokenClient {
				t.Fatalf("expected token client %s, got %s", tokenClient, input.ClientID)
			}
			return &pricingsvc.Resolution{Fee: types.Zero(), Tier: enums.PricingTierGlobal}, nil
		},
	}

	body, _ := json.Marshal(map[string]any{
		"client_id":    uuid.New(),
		"package_type": "parcel",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/resolve", bytes.NewReader(body))
	req = req.WithContext(middleware.WithClientID(req.Context(), tokenClient.String()))
	resp := httptest.NewRecorder()

	Resolve(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestResolveRejectsUnknownPackageType(t *testing.T) {
	body, _ := json.Marshal(map[string]any{
		"client_id":    uuid.New(),
		"package_type": "envelope",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/resolve", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	Resolve(&testPricingService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestResolveRejectsUnknownBodyField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/resolve", bytes.NewReader([]byte(`{"package":"parcel"}`)))
	resp := httptest.NewRecorder()

	Resolve(&testPricingService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
