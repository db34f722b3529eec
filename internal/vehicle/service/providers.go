package service

import (
	"context"
	"slices"

	"checklist/internal/upstream"
	"checklist/internal/vehicle/models"
	dErrors "checklist/pkg/domain-errors"
	"checklist/pkg/platform/validation"
)

// Provider lists vehicles for a scope.
type Provider interface {
	List(ctx context.Context, scope models.Scope) ([]models.Vehicle, error)
}

var mockFleet = []models.Vehicle{
	{ID: "1", LicensePlate: "ABC1D23", Plate: "ABC1D23", Model: "Actros 2651", Brand: "Mercedes-Benz", Year: 2021, Type: "truck"},
	{ID: "2", LicensePlate: "BRA2E19", Plate: "BRA2E19", Model: "FH 540", Brand: "Volvo", Year: 2022, Type: "truck"},
	{ID: "3", LicensePlate: "QWE4R56", Plate: "QWE4R56", Model: "Delivery 11.180", Brand: "Volkswagen", Year: 2020, Type: "truck"},
	{ID: "4", LicensePlate: "RTY7U89", Plate: "RTY7U89", Model: "Strada", Brand: "Fiat", Year: 2023, Type: "pickup"},
	{ID: "5", LicensePlate: "KLM3N45", Plate: "KLM3N45", Model: "Sprinter 416", Brand: "Mercedes-Benz", Year: 2019, Type: "van"},
}

// StaticProvider serves the built-in mock fleet for every tenant.
type StaticProvider struct{}

func (StaticProvider) List(context.Context, models.Scope) ([]models.Vehicle, error) {
	return slices.Clone(mockFleet), nil
}

// VehicleLister is the backend call used by UpstreamProvider.
type VehicleLister interface {
	Vehicles(ctx context.Context, tenant, token string) ([]upstream.Vehicle, error)
}

// UpstreamProvider lists the tenant's vehicles from the backend.
type UpstreamProvider struct {
	client VehicleLister
}

func NewUpstreamProvider(client VehicleLister) *UpstreamProvider {
	return &UpstreamProvider{client: client}
}

func (p *UpstreamProvider) List(ctx context.Context, scope models.Scope) ([]models.Vehicle, error) {
	remote, err := p.client.Vehicles(ctx, scope.ClientID, scope.Token)
	if err != nil {
		return nil, err
	}
	if err := validation.CheckSliceCount("vehicles", len(remote), validation.MaxVehicles); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "unexpected response from backend")
	}
	out := make([]models.Vehicle, 0, len(remote))
	for _, v := range remote {
		out = append(out, models.Vehicle{
			ID:           v.ID,
			LicensePlate: v.LicensePlate,
			Plate:        v.Plate,
			Model:        v.Model,
			Brand:        v.Brand,
			Year:         v.Year,
			Type:         v.Type,
		})
	}
	return out, nil
}
