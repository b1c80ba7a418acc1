package model

import "time"

// Booking is a persisted, irreversible claim on one slot by one requester.
// At most one booking exists per start_time; the unique index on that field
// enforces it at the storage layer.
type Booking struct {
	ID          string    `bson:"_id,omitempty" json:"id,omitempty"`
	FirstName   string    `bson:"first_name" json:"first_name" validate:"required,min=1,max=100"`
	LastName    string    `bson:"last_name" json:"last_name" validate:"required,min=1,max=100"`
	Email       string    `bson:"email" json:"email" validate:"required,email"`
	BirthDate   string    `bson:"birth_date" json:"birth_date" validate:"required,datetime=2006-01-02"`
	Gender      string    `bson:"gender,omitempty" json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty,e164"`
	CountryCode string    `bson:"country_code,omitempty" json:"country_code,omitempty" validate:"omitempty,iso3166_1_alpha2"`
	StartTime   time.Time `bson:"start_time" json:"start_time"`
	EndTime     time.Time `bson:"end_time" json:"end_time"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// BookingRequest is the write-endpoint payload. Only the start instant is
// taken from the caller; the end instant is always derived server-side.
type BookingRequest struct {
	Start       string `json:"start"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	BirthDate   string `json:"birth_date"`
	Gender      string `json:"gender,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Details maps the request onto a Booking carrying only requester fields.
// Times are filled in by the service once the start is validated.
func (r *BookingRequest) Details() *Booking {
	return &Booking{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		BirthDate:   r.BirthDate,
		Gender:      r.Gender,
		Phone:       r.Phone,
		CountryCode: r.CountryCode,
	}
}

// SlotView is the merged availability row returned by the read endpoint.
type SlotView struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Taken bool      `json:"taken"`
	Past  bool      `json:"past"`
}
