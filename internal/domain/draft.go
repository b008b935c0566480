package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format the wizard accepts.
const DateLayout = "2006-01-02"

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (c Contact) Complete() bool {
	return strings.TrimSpace(c.Name) != "" &&
		strings.TrimSpace(c.Phone) != "" &&
		strings.TrimSpace(c.Email) != ""
}

// Draft is the in-progress booking being edited across wizard steps.
// Date and Time are kept as raw user input; they are only parsed when a
// transition guard or finalization needs them.
type Draft struct {
	ProductRef string     `json:"product_ref"`
	Date       string     `json:"date"`
	Time       string     `json:"time"`
	DurationID DurationID `json:"duration_id"`
	Address    string     `json:"address"`
	Contact    Contact    `json:"contact"`
}

func NewDraft() Draft {
	return Draft{DurationID: Duration4Hours}
}

// DraftPatch applies partial updates; nil fields are left untouched so
// back navigation never clears already-entered values.
type DraftPatch struct {
	ProductRef *string     `json:"product_ref,omitempty"`
	Date       *string     `json:"date,omitempty"`
	Time       *string     `json:"time,omitempty"`
	DurationID *DurationID `json:"duration_id,omitempty"`
	Address    *string     `json:"address,omitempty"`
	Name       *string     `json:"name,omitempty"`
	Phone      *string     `json:"phone,omitempty"`
	Email      *string     `json:"email,omitempty"`
}

func (d *Draft) Apply(p DraftPatch) {
	if p.ProductRef != nil {
		d.ProductRef = *p.ProductRef
	}
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.Time != nil {
		d.Time = *p.Time
	}
	if p.DurationID != nil {
		d.DurationID = *p.DurationID
	}
	if p.Address != nil {
		d.Address = *p.Address
	}
	if p.Name != nil {
		d.Contact.Name = *p.Name
	}
	if p.Phone != nil {
		d.Contact.Phone = *p.Phone
	}
	if p.Email != nil {
		d.Contact.Email = *p.Email
	}
}

// ParseDate parses the draft's raw date input.
func (d Draft) ParseDate() (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(d.Date))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// HasProductAndDate guards SelectingProduct -> EnteringDetails.
func (d Draft) HasProductAndDate() bool {
	if strings.TrimSpace(d.ProductRef) == "" {
		return false
	}
	_, err := d.ParseDate()
	return err == nil
}

// HasSchedule guards EnteringDetails -> Confirming.
func (d Draft) HasSchedule() bool {
	return strings.TrimSpace(d.Time) != "" && strings.TrimSpace(d.Address) != ""
}

// HasContact guards Confirming -> AwaitingPayment.
func (d Draft) HasContact() bool {
	return d.Contact.Complete()
}
