package models

import (
	"fmt"
	"strings"
	"time"
)

// Donor is a registered blood donor.
type Donor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BloodGroup   string    `json:"bloodGroup"`
	City         string    `json:"city"`
	Contact      string    `json:"contact"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// CreateDonorRequest is the payload for registering a donor.
type CreateDonorRequest struct {
	Name       string `json:"name"`
	BloodGroup string `json:"bloodGroup"`
	City       string `json:"city"`
	Contact    string `json:"contact"`
}

// Validate trims every field, upper-cases the blood group and requires all
// four fields.
func (r *CreateDonorRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.BloodGroup = NormalizeBloodGroup(r.BloodGroup)
	r.City = strings.TrimSpace(r.City)
	r.Contact = strings.TrimSpace(r.Contact)

	return requireFields(
		field{"Name", r.Name},
		field{"Blood group", r.BloodGroup},
		field{"City", r.City},
		field{"Contact", r.Contact},
	)
}

// UpdateDonorRequest is a partial update: blank fields are left unchanged.
type UpdateDonorRequest struct {
	Name       string `json:"name"`
	BloodGroup string `json:"bloodGroup"`
	City       string `json:"city"`
	Contact    string `json:"contact"`
}

// ApplyTo copies the non-blank fields of r onto d.
func (r *UpdateDonorRequest) ApplyTo(d *Donor) {
	if v := strings.TrimSpace(r.Name); v != "" {
		d.Name = v
	}
	if v := NormalizeBloodGroup(r.BloodGroup); v != "" {
		d.BloodGroup = v
	}
	if v := strings.TrimSpace(r.City); v != "" {
		d.City = v
	}
	if v := strings.TrimSpace(r.Contact); v != "" {
		d.Contact = v
	}
}

// SearchFilter narrows donor and blood request listings. Empty fields do
// not filter; non-empty ones match case-insensitively and exactly.
type SearchFilter struct {
	Name       string
	City       string
	BloodGroup string
}

// NormalizeBloodGroup trims and upper-cases a blood group ("o-" → "O-").
func NormalizeBloodGroup(bg string) string {
	return strings.ToUpper(strings.TrimSpace(bg))
}

type field struct {
	label string
	value string
}

func requireFields(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%s is required", f.label)
		}
	}
	return nil
}
