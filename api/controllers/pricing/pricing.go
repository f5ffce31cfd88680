package pricing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wassel-ops/wassel-backend/api/middleware"
	"github.com/wassel-ops/wassel-backend/api/responses"
	"github.com/wassel-ops/wassel-backend/api/validators"
	pricingsvc "github.com/wassel-ops/wassel-backend/internal/pricing"
	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	pkgerrors "github.com/wassel-ops/wassel-backend/pkg/errors"
	"github.com/wassel-ops/wassel-backend/pkg/logger"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

// Resolve quotes the effective delivery fee for one shipment. Client-scoped
// tokens are always quoted against their own client regardless of the body.
func Resolve(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload resolveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if scoped := middleware.ClientIDFromContext(r.Context()); scoped != "" {
			clientID, err := uuid.Parse(scoped)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid client scope"))
				return
			}
			input.ClientID = clientID
		}

		res, err := svc.Resolve(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolveResponse{Fee: res.Fee, Tier: res.Tier.String()})
	}
}

func GetGlobal(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		global, err := svc.GetGlobalPricing(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newGlobalResponse(global))
	}
}

func SetGlobal(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload globalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fee, err := payload.Fee.toMoney()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		global, err := svc.SetGlobalPricing(r.Context(), pricingsvc.GlobalPricingInput{Fee: fee})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newGlobalResponse(global))
	}
}

func ListZoneRules(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules, err := svc.ListZoneRules(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]zoneRuleResponse, len(rules))
		for i := range rules {
			out[i] = newZoneRuleResponse(&rules[i])
		}
		responses.WriteSuccess(w, out)
	}
}

func UpsertZoneRule(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload zoneRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.UpsertZoneRule(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if payload.ID == nil {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, newZoneRuleResponse(rule))
	}
}

func DeleteZoneRule(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := validators.ParsePathUUID(chi.URLParam(r, "ruleID"), "ruleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteZoneRule(r.Context(), ruleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ListPackageTypes(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListPackageTypePricing(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]packageTypeResponse, len(rows))
		for i := range rows {
			out[i] = newPackageTypeResponse(&rows[i])
		}
		responses.WriteSuccess(w, out)
	}
}

func UpsertPackageType(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload packageTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.UpsertPackageTypePricing(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPackageTypeResponse(row))
	}
}

func GetClientConfiguration(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.GetClientConfiguration(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newClientConfigurationResponse(cfg))
	}
}

func UpsertClientDefault(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload feeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fee, err := payload.Fee.toMoney()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.UpsertClientDefault(r.Context(), pricingsvc.ClientDefaultInput{ClientID: clientID, Fee: fee})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newClientDefaultResponse(row))
	}
}

func UpsertClientZoneRule(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clientZoneRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.UpsertClientZoneRule(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if payload.ID == nil {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, newClientZoneRuleResponse(rule))
	}
}

func DeleteClientZoneRule(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ruleID, err := validators.ParsePathUUID(chi.URLParam(r, "ruleID"), "ruleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteClientZoneRule(r.Context(), clientID, ruleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func UpsertClientPackageExtra(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clientPackageExtraRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.UpsertClientPackageExtra(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newClientPackageExtraResponse(row))
	}
}

func DeleteClientConfiguration(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteClientConfiguration(r.Context(), clientID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type moneyPayload struct {
	USD string `json:"usd" validate:"required"`
	LBP int64  `json:"lbp"`
}

func (m moneyPayload) toMoney() (types.Money, error) {
	usd, err := decimal.NewFromString(m.USD)
	if err != nil {
		return types.Money{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid usd amount")
	}
	return types.Money{USD: usd, LBP: m.LBP}, nil
}

type resolveRequest struct {
	ClientID      *uuid.UUID `json:"client_id"`
	GovernorateID *uuid.UUID `json:"governorate_id"`
	CityID        *uuid.UUID `json:"city_id"`
	PackageType   string     `json:"package_type" validate:"required"`
}

func (r resolveRequest) toInput() (pricingsvc.ResolveInput, error) {
	pkg, err := enums.ParsePackageType(r.PackageType)
	if err != nil {
		return pricingsvc.ResolveInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid package type")
	}
	input := pricingsvc.ResolveInput{
		GovernorateID: r.GovernorateID,
		CityID:        r.CityID,
		PackageType:   pkg,
	}
	if r.ClientID != nil {
		input.ClientID = *r.ClientID
	}
	return input, nil
}

type resolveResponse struct {
	Fee  types.Money `json:"fee"`
	Tier string      `json:"tier"`
}

type globalRequest struct {
	Fee moneyPayload `json:"fee" validate:"required"`
}

type feeRequest struct {
	Fee moneyPayload `json:"fee" validate:"required"`
}

type globalResponse struct {
	Fee       types.Money `json:"fee"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func newGlobalResponse(g *models.GlobalPricing) globalResponse {
	return globalResponse{
		Fee:       types.Money{USD: g.DefaultFeeUSD, LBP: g.DefaultFeeLBP},
		UpdatedAt: g.UpdatedAt,
	}
}

type zoneRuleRequest struct {
	ID          *uuid.UUID   `json:"id"`
	Scope       string       `json:"scope" validate:"required,oneof=governorate city"`
	RegionID    uuid.UUID    `json:"region_id" validate:"required"`
	PackageType *string      `json:"package_type"`
	Fee         moneyPayload `json:"fee" validate:"required"`
	Active      bool         `json:"active"`
}

func (r zoneRuleRequest) toInput() (pricingsvc.ZoneRuleInput, error) {
	scope, err := enums.ParseZoneScope(r.Scope)
	if err != nil {
		return pricingsvc.ZoneRuleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scope")
	}
	fee, err := r.Fee.toMoney()
	if err != nil {
		return pricingsvc.ZoneRuleInput{}, err
	}

	var pkg *enums.PackageType
	if r.PackageType != nil {
		parsed, err := enums.ParsePackageType(*r.PackageType)
		if err != nil {
			return pricingsvc.ZoneRuleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid package type")
		}
		pkg = &parsed
	}

	return pricingsvc.ZoneRuleInput{
		ID:          r.ID,
		Scope:       scope,
		RegionID:    r.RegionID,
		PackageType: pkg,
		Fee:         fee,
		Active:      r.Active,
	}, nil
}

type zoneRuleResponse struct {
	ID          uuid.UUID   `json:"id"`
	Scope       string      `json:"scope"`
	RegionID    uuid.UUID   `json:"region_id"`
	PackageType *string     `json:"package_type,omitempty"`
	Fee         types.Money `json:"fee"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func newZoneRuleResponse(rule *models.ZonePricingRule) zoneRuleResponse {
	out := zoneRuleResponse{
		ID:        rule.ID,
		Scope:     rule.Scope.String(),
		RegionID:  rule.RegionID,
		Fee:       types.Money{USD: rule.FeeUSD, LBP: rule.FeeLBP},
		Active:    rule.Active,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
	if rule.PackageType != nil {
		s := rule.PackageType.String()
		out.PackageType = &s
	}
	return out
}

type packageTypeRequest struct {
	PackageType string       `json:"package_type" validate:"required"`
	Extra       moneyPayload `json:"extra" validate:"required"`
	Active      bool         `json:"active"`
}

func (r packageTypeRequest) toInput() (pricingsvc.PackageTypePricingInput, error) {
	pkg, err := enums.ParsePackageType(r.PackageType)
	if err != nil {
		return pricingsvc.PackageTypePricingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid package type")
	}
	extra, err := r.Extra.toMoney()
	if err != nil {
		return pricingsvc.PackageTypePricingInput{}, err
	}
	return pricingsvc.PackageTypePricingInput{
		PackageType: pkg,
		Fee:         extra,
		Active:      r.Active,
	}, nil
}

type packageTypeResponse struct {
	PackageType string      `json:"package_type"`
	Extra       types.Money `json:"extra"`
	Active      bool        `json:"active"`
}

func newPackageTypeResponse(row *models.PackageTypePricing) packageTypeResponse {
	return packageTypeResponse{
		PackageType: row.PackageType.String(),
		Extra:       types.Money{USD: row.ExtraUSD, LBP: row.ExtraLBP},
		Active:      row.Active,
	}
}

type clientZoneRuleRequest struct {
	ID           *uuid.UUID   `json:"id"`
	Name         *string      `json:"name"`
	Governorates []uuid.UUID  `json:"governorates"`
	Fee          moneyPayload `json:"fee" validate:"required"`
}

func (r clientZoneRuleRequest) toInput(clientID uuid.UUID) (pricingsvc.ClientZoneRuleInput, error) {
	fee, err := r.Fee.toMoney()
	if err != nil {
		return pricingsvc.ClientZoneRuleInput{}, err
	}
	return pricingsvc.ClientZoneRuleInput{
		ID:           r.ID,
		ClientID:     clientID,
		Name:         r.Name,
		Governorates: r.Governorates,
		Fee:          fee,
	}, nil
}

type clientZoneRuleResponse struct {
	ID           uuid.UUID   `json:"id"`
	ClientID     uuid.UUID   `json:"client_id"`
	Name         *string     `json:"name,omitempty"`
	Governorates []uuid.UUID `json:"governorates"`
	Fee          types.Money `json:"fee"`
}

func newClientZoneRuleResponse(rule *models.ClientZoneRule) clientZoneRuleResponse {
	return clientZoneRuleResponse{
		ID:           rule.ID,
		ClientID:     rule.ClientID,
		Name:         rule.Name,
		Governorates: []uuid.UUID(rule.Governorates),
		Fee:          types.Money{USD: rule.FeeUSD, LBP: rule.FeeLBP},
	}
}

type clientPackageExtraRequest struct {
	PackageType string       `json:"package_type" validate:"required"`
	Extra       moneyPayload `json:"extra" validate:"required"`
}

func (r clientPackageExtraRequest) toInput(clientID uuid.UUID) (pricingsvc.ClientPackageExtraInput, error) {
	pkg, err := enums.ParsePackageType(r.PackageType)
	if err != nil {
		return pricingsvc.ClientPackageExtraInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid package type")
	}
	extra, err := r.Extra.toMoney()
	if err != nil {
		return pricingsvc.ClientPackageExtraInput{}, err
	}
	return pricingsvc.ClientPackageExtraInput{
		ClientID:    clientID,
		PackageType: pkg,
		Fee:         extra,
	}, nil
}

type clientPackageExtraResponse struct {
	ClientID    uuid.UUID   `json:"client_id"`
	PackageType string      `json:"package_type"`
	Extra       types.Money `json:"extra"`
}

func newClientPackageExtraResponse(row *models.ClientPackageExtra) clientPackageExtraResponse {
	return clientPackageExtraResponse{
		ClientID:    row.ClientID,
		PackageType: row.PackageType.String(),
		Extra:       types.Money{USD: row.ExtraUSD, LBP: row.ExtraLBP},
	}
}

type clientDefaultResponse struct {
	ClientID uuid.UUID   `json:"client_id"`
	Fee      types.Money `json:"fee"`
}

func newClientDefaultResponse(row *models.ClientPricingDefault) clientDefaultResponse {
	return clientDefaultResponse{
		ClientID: row.ClientID,
		Fee:      types.Money{USD: row.FeeUSD, LBP: row.FeeLBP},
	}
}

type clientConfigurationResponse struct {
	Default       *clientDefaultResponse       `json:"default,omitempty"`
	ZoneRules     []clientZoneRuleResponse     `json:"zone_rules"`
	PackageExtras []clientPackageExtraResponse `json:"package_extras"`
}

func newClientConfigurationResponse(cfg *pricingsvc.ClientConfiguration) clientConfigurationResponse {
	out := clientConfigurationResponse{
		ZoneRules:     make([]clientZoneRuleResponse, len(cfg.ZoneRules)),
		PackageExtras: make([]clientPackageExtraResponse, len(cfg.PackageExtras)),
	}
	if cfg.Default != nil {
		def := newClientDefaultResponse(cfg.Default)
		out.Default = &def
	}
	for i := range cfg.ZoneRules {
		out.ZoneRules[i] = newClientZoneRuleResponse(&cfg.ZoneRules[i])
	}
	for i := range cfg.PackageExtras {
		out.PackageExtras[i] = newClientPackageExtraResponse(&cfg.PackageExtras[i])
	}
	return out
}
