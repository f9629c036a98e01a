package models

import (
	"strings"
	"time"
)

// BloodRequest is a request for blood filed by a patient or hospital unit.
type BloodRequest struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	BloodGroup  string    `json:"bloodGroup"`
	City        string    `json:"city"`
	Contact     string    `json:"contact"`
	RequestDate time.Time `json:"requestDate"`
}

// CreateBloodRequestRequest is the payload for filing a blood request.
type CreateBloodRequestRequest struct {
	Name       string `json:"name"`
	BloodGroup string `json:"bloodGroup"`
	City       string `json:"city"`
	Contact    string `json:"contact"`
}

// Validate trims every field, upper-cases the blood group and requires all
// four fields.
func (r *CreateBloodRequestRequest) Validate() error {
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
