package registration

import (
	"github.com/hackgods/clinidesk/internal/backend"
	"github.com/hackgods/clinidesk/internal/document"
)

const DefaultCountry = "Brasil"

type ClinicForm struct {
	TradeName   string `json:"trade_name" validate:"required,min=2"`
	LegalName   string `json:"legal_name" validate:"required,min=2"`
	CNPJ        string `json:"cnpj" validate:"required,min=14,max=18,cnpj"`
	Address     string `json:"address" validate:"required,min=5"`
	ZipCode     string `json:"zip_code" validate:"required,min=8,cep"`
	PhoneNumber string `json:"phone_number" validate:"required,min=10"`
	BotPhone    string `json:"bot_phone,omitempty"`
}

func (f ClinicForm) input() backend.ClinicInput {
	return backend.ClinicInput{
		TradeName:   f.TradeName,
		LegalName:   f.LegalName,
		CNPJ:        document.OnlyDigits(f.CNPJ),
		Address:     f.Address,
		ZipCode:     document.OnlyDigits(f.ZipCode),
		PhoneNumber: f.PhoneNumber,
		BotPhone:    f.BotPhone,
	}
}

type LocationForm struct {
	ZipCode    string `json:"zip_code" validate:"required,min=8,cep"`
	Address    string `json:"address" validate:"required,min=5"`
	Number     string `json:"number" validate:"required,min=1"`
	City       string `json:"city" validate:"required,min=2"`
	State      string `json:"state" validate:"required,min=2"`
	Country    string `json:"country"`
	Complement string `json:"complement,omitempty"`
}

func (f LocationForm) input() backend.LocationInput {
	country := f.Country
	if country == "" {
		country = DefaultCountry
	}
	return backend.LocationInput{
		ZipCode:    document.OnlyDigits(f.ZipCode),
		Address:    f.Address,
		Number:     f.Number,
		City:       f.City,
		State:      f.State,
		Country:    country,
		Complement: f.Complement,
	}
}

// ProfessionalForm is the multi-step health professional sign up. Location,
// when present, is created first and linked through location_id.
type ProfessionalForm struct {
	Username               string        `json:"username" validate:"required,min=3"`
	Password               string        `json:"password" validate:"required,min=6"`
	PasswordConfirmation   string        `json:"password_confirmation" validate:"required,eqfield=Password"`
	IdentificationDocument string        `json:"identification_document" validate:"required,min=11,max=14,cpf"`
	FullName               string        `json:"full_name" validate:"required,min=2"`
	PhoneNumber            string        `json:"phone_number" validate:"required,min=10"`
	Email                  string        `json:"email" validate:"omitempty,email"`
	Specialization         string        `json:"specialization,omitempty"`
	CNAE                   string        `json:"cnae,omitempty"`
	IsIndependent          bool          `json:"is_independent"`
	BirthDate              string        `json:"birth_date" validate:"required,birthdate"`
	BotPhone               string        `json:"bot_phone,omitempty"`
	LocationID             string        `json:"location_id,omitempty"`
	Location               *LocationForm `json:"location,omitempty" validate:"omitempty"`
}

func (f ProfessionalForm) input() backend.HealthProfessionalInput {
	birth := f.BirthDate
	if t, ok := ParseBirthDate(f.BirthDate); ok {
		birth = t.Format("2006-01-02")
	}
	return backend.HealthProfessionalInput{
		Username:               f.Username,
		Password:               f.Password,
		IdentificationDocument: document.OnlyDigits(f.IdentificationDocument),
		FullName:               f.FullName,
		PhoneNumber:            f.PhoneNumber,
		Email:                  f.Email,
		Specialization:         f.Specialization,
		CNAE:                   f.CNAE,
		IsIndependent:          f.IsIndependent,
		BirthDate:              birth,
		BotPhone:               f.BotPhone,
		LocationID:             f.LocationID,
	}
}
