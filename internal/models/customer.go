package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Gender enumerates the accepted customer gender values.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is an accepted value.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// Address is stored as JSONB.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Value implements driver.Valuer.
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *Address) Scan(src any) error {
	return scanJSON(src, a)
}

// DoctorReference identifies the referring clinician. Stored as JSONB.
type DoctorReference struct {
	Name     string `json:"name"`
	Hospital string `json:"hospital"`
	Phone    string `json:"phone"`
}

// Value implements driver.Valuer.
func (d DoctorReference) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *DoctorReference) Scan(src any) error {
	return scanJSON(src, d)
}

// Customer represents a patient or buyer that sales can be attributed to.
type Customer struct {
	ID              int             `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Age             int             `db:"age" json:"age"`
	Gender          Gender          `db:"gender" json:"gender"`
	Phone           string          `db:"phone" json:"phone"`
	Email           string          `db:"email" json:"email"`
	Address         Address         `db:"address" json:"address"`
	DoctorReference DoctorReference `db:"doctor_reference" json:"doctorReference"`
	MedicalHistory  string          `db:"medical_history" json:"medicalHistory"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported JSONB source type")
	}
}
