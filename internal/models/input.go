package models

// ResourceInput is the POST /api/resources payload.
type ResourceInput struct {
	ResourceType ResourceType `json:"resourceType" validate:"required,oneof=material session"`
	Title        string       `json:"title" validate:"required,min=3,max=200"`
	Description  string       `json:"description" validate:"required,min=10,max=2000"`
	URL          string       `json:"url" validate:"required,url,max=500,resource_url"`
	Level        string       `json:"level" validate:"required,oneof=AL OL"`
	Stream       []string     `json:"stream" validate:"required,min=1,dive,required,max=50"`
	Subject      string       `json:"subject" validate:"required,min=1,max=100"`
	Language     string       `json:"language" validate:"required,oneof=Sinhala Tamil English"`
	IsAnonymous  bool         `json:"isAnonymous"`

	Category string `json:"category" validate:"required_if=ResourceType material,omitempty,oneof='Past Paper' Note Textbook 'Model Paper'"`

	SessionType SessionType `json:"sessionType" validate:"required_if=ResourceType session,omitempty,oneof=Live Recording"`
	SessionDate *string     `json:"sessionDate"`
	StartTime   *string     `json:"startTime"`
	EndTime     *string     `json:"endTime"`

	// honeypot fields, never filled by real users
	Website      string `json:"website"`
	EmailConfirm string `json:"email_confirm"`
}

func (in *ResourceInput) IsBot() bool {
	return in.Website != "" || in.EmailConfirm != ""
}

// DonationInput is the POST /api/donation-request payload.
type DonationInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Address     string `json:"address" validate:"required,min=10,max=500"`
	District    string `json:"district" validate:"required,min=2,max=50"`
	Grade       string `json:"grade" validate:"required,min=1,max=20"`
	School      string `json:"school" validate:"required,min=3,max=200"`
	PhoneNumber string `json:"phoneNumber" validate:"required,lk_phone"`
	Category    string `json:"category" validate:"required,oneof=Books Clothes Stationery Electronics Other"`
	Description string `json:"description" validate:"required,min=10,max=1000"`

	RecaptchaToken string `json:"recaptchaToken"`

	Website      string `json:"website"`
	EmailConfirm string `json:"email_confirm"`
}

func (in *DonationInput) IsBot() bool {
	return in.Website != "" || in.EmailConfirm != ""
}
