// Package registration validates sign up forms and forwards them to the
// backend.
package registration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hackgods/clinidesk/internal/backend"
	"github.com/hackgods/clinidesk/internal/cep"
)

type Backend interface {
	CreateClinic(ctx context.Context, in backend.ClinicInput) (backend.Clinic, error)
	CreateHealthProfessional(ctx context.Context, in backend.HealthProfessionalInput) (backend.HealthProfessional, error)
	CreateLocation(ctx context.Context, in backend.LocationInput) (backend.Location, error)
}

type AddressLookup interface {
	Lookup(ctx context.Context, code string) (cep.Address, error)
}

// Autofill is what a CEP lookup fills in on an address form.
type Autofill struct {
	cep.Address
	FullAddress string `json:"full_address"`
	Country     string `json:"country"`
}

type Service struct {
	backend   Backend
	addresses AddressLookup
	validator *Validator
	log       *zap.Logger
}

func NewService(b Backend, addresses AddressLookup, v *Validator, log *zap.Logger) *Service {
	return &Service{backend: b, addresses: addresses, validator: v, log: log}
}

func (s *Service) RegisterClinic(ctx context.Context, form ClinicForm) (backend.Clinic, error) {
	if err := s.validator.Struct(form); err != nil {
		return backend.Clinic{}, err
	}

	clinic, err := s.backend.CreateClinic(ctx, form.input())
	if err != nil {
		return backend.Clinic{}, fmt.Errorf("create clinic: %w", err)
	}

	s.log.Info("clinic registered", zap.String("clinic_id", clinic.ID))
	return clinic, nil
}

func (s *Service) RegisterProfessional(ctx context.Context, form ProfessionalForm) (backend.HealthProfessional, error) {
	if err := s.validator.Struct(form); err != nil {
		return backend.HealthProfessional{}, err
	}

	in := form.input()
	if form.Location != nil {
		loc, err := s.backend.CreateLocation(ctx, form.Location.input())
		if err != nil {
			return backend.HealthProfessional{}, fmt.Errorf("create location: %w", err)
		}
		in.LocationID = loc.ID
	}

	hp, err := s.backend.CreateHealthProfessional(ctx, in)
	if err != nil {
		return backend.HealthProfessional{}, fmt.Errorf("create health professional: %w", err)
	}

	s.log.Info("health professional registered",
		zap.String("health_professional_id", hp.ID),
		zap.String("location_id", in.LocationID),
	)
	return hp, nil
}

// Autofill resolves zip and composes the one line address used by the clinic
// form. An empty number renders as "S/N".
func (s *Service) Autofill(ctx context.Context, zip, number string) (Autofill, error) {
	addr, err := s.addresses.Lookup(ctx, zip)
	if err != nil {
		return Autofill{}, err
	}
	if number == "" {
		number = "S/N"
	}
	return Autofill{
		Address:     addr,
		FullAddress: fmt.Sprintf("%s, %s - %s, %s - %s", addr.Street, number, addr.Neighborhood, addr.City, addr.State),
		Country:     DefaultCountry,
	}, nil
}
