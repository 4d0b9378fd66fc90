package backend

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserType    string `json:"user_type"`
	UserID      string `json:"user_id"`
}

type UserData struct {
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ClinicInput struct {
	TradeName   string `json:"trade_name"`
	LegalName   string `json:"legal_name"`
	CNPJ        string `json:"cnpj"`
	Address     string `json:"address"`
	ZipCode     string `json:"zip_code"`
	PhoneNumber string `json:"phone_number"`
	BotPhone    string `json:"bot_phone,omitempty"`
}

type Clinic struct {
	ID string `json:"id"`
	ClinicInput
}

type HealthProfessionalInput struct {
	Username               string `json:"username"`
	Password               string `json:"password,omitempty"`
	IdentificationDocument string `json:"identification_document"`
	FullName               string `json:"full_name"`
	PhoneNumber            string `json:"phone_number"`
	Email                  string `json:"email"`
	Specialization         string `json:"specialization,omitempty"`
	CNAE                   string `json:"cnae,omitempty"`
	IsIndependent          bool   `json:"is_independent"`
	BirthDate              string `json:"birth_date"`
	BotPhone               string `json:"bot_phone,omitempty"`
	LocationID             string `json:"location_id,omitempty"`
}

type HealthProfessional struct {
	ID                     string `json:"id"`
	Username               string `json:"username"`
	IdentificationDocument string `json:"identification_document"`
	FullName               string `json:"full_name"`
	PhoneNumber            string `json:"phone_number"`
	Email                  string `json:"email"`
	Specialization         string `json:"specialization,omitempty"`
	CNAE                   string `json:"cnae,omitempty"`
	IsIndependent          bool   `json:"is_independent"`
	BirthDate              string `json:"birth_date"`
	BotPhone               string `json:"bot_phone,omitempty"`
	LocationID             string `json:"location_id,omitempty"`
	CreatedAt              string `json:"created_at"`
	UpdatedAt              string `json:"updated_at"`
}

// HealthProfessionalPage is one page of the paginated listing.
type HealthProfessionalPage struct {
	Total int                  `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
	Items []HealthProfessional `json:"items"`
}

type LocationInput struct {
	ZipCode    string `json:"zip_code"`
	Address    string `json:"address"`
	Number     string `json:"number"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	Complement string `json:"complement,omitempty"`
}

type Location struct {
	ID string `json:"id"`
	LocationInput
}
