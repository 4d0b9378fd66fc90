package schedule

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

const (
	// PrivatePayerValue is the payer selection meaning self-pay.
	PrivatePayerValue = "private"

	DefaultEventColor = "#3788d8"
	PrivatePayerColor = "#9C27B0"
)

var (
	ErrInvalidRange  = errors.New("event end must be after start")
	ErrInvalidStatus = errors.New("invalid appointment status")
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidPayer  = errors.New("payer cannot be both private and a health plan")
)

type Patient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AppointmentType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type HealthPlan struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Payer is either a health plan or private (self-pay). The zero value means
// nothing was chosen yet.
type Payer struct {
	Plan      *HealthPlan `json:"health_plan,omitempty"`
	IsPrivate bool        `json:"is_private"`
}

func PrivatePayer() Payer {
	return Payer{IsPrivate: true}
}

func PlanPayer(plan HealthPlan) Payer {
	return Payer{Plan: &plan}
}

func (p Payer) PlanID() string {
	if p.Plan == nil {
		return ""
	}
	return p.Plan.ID
}

// Color is the stripe colour drawn for the payer on the calendar.
func (p Payer) Color() string {
	if p.Plan != nil && !p.IsPrivate {
		return p.Plan.Color
	}
	return PrivatePayerColor
}

// Event is one appointment on the calendar.
type Event struct {
	ID                EventID   `json:"id"`
	Title             string    `json:"title"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Status            Status    `json:"status"`
	PatientID         string    `json:"patient_id"`
	PatientName       string    `json:"patient_name"`
	AppointmentTypeID string    `json:"appointment_type_id"`
	Payer             Payer     `json:"payer"`
	Notes             string    `json:"notes"`
	Color             string    `json:"color"`
}

// Validate checks the invariants every stored event must hold.
func (e Event) Validate() error {
	if e.ID.IsZero() {
		return ErrInvalidEventID
	}
	if !e.End.After(e.Start) {
		return ErrInvalidRange
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if e.Payer.IsPrivate && e.Payer.Plan != nil {
		return ErrInvalidPayer
	}
	return nil
}

func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// clone copies e so the caller can mutate it without touching the original plan.
func (e Event) clone() Event {
	if e.Payer.Plan != nil {
		plan := *e.Payer.Plan
		e.Payer.Plan = &plan
	}
	return e
}

// Catalog holds the reference data an editor resolves selections against.
type Catalog struct {
	Patients         []Patient         `json:"patients"`
	AppointmentTypes []AppointmentType `json:"appointment_types"`
	HealthPlans      []HealthPlan      `json:"health_plans"`
}

func (c Catalog) Patient(id string) (Patient, bool) {
	for _, p := range c.Patients {
		if p.ID == id {
			return p, true
		}
	}
	return Patient{}, false
}

func (c Catalog) AppointmentType(id string) (AppointmentType, bool) {
	for _, t := range c.AppointmentTypes {
		if t.ID == id {
			return t, true
		}
	}
	return AppointmentType{}, false
}

func (c Catalog) HealthPlan(id string) (HealthPlan, bool) {
	for _, p := range c.HealthPlans {
		if p.ID == id {
			return p, true
		}
	}
	return HealthPlan{}, false
}
