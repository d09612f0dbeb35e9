package models

import (
	"time"

	"patientms/internal/bmi"
)

// Patient is the stored record. BMI and verdict are never persisted; they are
// derived from Weight and Height on every read.
type Patient struct {
	ID        string    `gorm:"primaryKey;size:50" json:"id" bson:"_id" example:"P001"`
	CreatedAt time.Time `gorm:"index" json:"-" bson:"created_at"`
	UpdatedAt time.Time `json:"-" bson:"updated_at"`
	Name      string    `gorm:"size:50;not null" json:"name" bson:"name" example:"Alice"`
	City      string    `gorm:"not null" json:"city" bson:"city" example:"NYC"`
	Age       int       `gorm:"not null" json:"age" bson:"age" example:"30"`
	Gender    string    `gorm:"size:10;not null" json:"gender" bson:"gender" example:"female"`
	Weight    float64   `gorm:"not null" json:"weight" bson:"weight" example:"70"`
	Height    float64   `gorm:"not null" json:"height" bson:"height" example:"1.75"`
}

func (p *Patient) TableName() string {
	return "patients"
}

func (p Patient) BMI() float64 {
	return bmi.Compute(p.Weight, p.Height)
}

func (p Patient) Verdict() bmi.Verdict {
	return bmi.Classify(p.BMI())
}

// View projects the record together with its derived metrics.
func (p Patient) View() PatientView {
	value, verdict := bmi.Derive(p.Weight, p.Height)
	return PatientView{
		ID:      p.ID,
		Name:    p.Name,
		City:    p.City,
		Age:     p.Age,
		Gender:  p.Gender,
		Weight:  p.Weight,
		Height:  p.Height,
		BMI:     value,
		Verdict: string(verdict),
	}
}

// PatientView is the response shape of a patient record.
type PatientView struct {
	ID      string  `json:"id" example:"P001"`
	Name    string  `json:"name" example:"Alice"`
	City    string  `json:"city" example:"NYC"`
	Age     int     `json:"age" example:"30"`
	Gender  string  `json:"gender" example:"female"`
	Weight  float64 `json:"weight" example:"70"`
	Height  float64 `json:"height" example:"1.75"`
	BMI     float64 `json:"bmi" example:"22.86"`
	Verdict string  `json:"verdict" example:"Normal"`
}

// PatientInput is the create-patient body. Pointer fields tell an absent
// field apart from a zero one.
type PatientInput struct {
	ID     *string  `json:"id" validate:"required,max=50" example:"P001"`
	Name   *string  `json:"name" validate:"required,max=50" example:"Alice"`
	City   *string  `json:"city" validate:"required" example:"NYC"`
	Age    *int     `json:"age" validate:"required,gt=0,lt=120" example:"30"`
	Gender *string  `json:"gender" validate:"required,oneof=male female others" example:"female"`
	Weight *float64 `json:"weight" validate:"required,gt=0" example:"70"`
	Height *float64 `json:"height" validate:"required,gt=0" example:"1.75"`

	BMI     *float64 `json:"bmi,omitempty" validate:"isdefault" swaggerignore:"true"`
	Verdict *string  `json:"verdict,omitempty" validate:"isdefault" swaggerignore:"true"`
}

// PatientUpdate is the partial update body. Only present fields are applied.
type PatientUpdate struct {
	ID     *string  `json:"id,omitempty" validate:"omitempty,max=50"`
	Name   *string  `json:"name,omitempty" validate:"omitempty,max=50"`
	City   *string  `json:"city,omitempty"`
	Age    *int     `json:"age,omitempty" validate:"omitempty,gt=0,lt=120"`
	Gender *string  `json:"gender,omitempty" validate:"omitempty,oneof=male female others"`
	Weight *float64 `json:"weight,omitempty" validate:"omitempty,gt=0"`
	Height *float64 `json:"height,omitempty" validate:"omitempty,gt=0"`

	BMI     *float64 `json:"bmi,omitempty" validate:"isdefault" swaggerignore:"true"`
	Verdict *string  `json:"verdict,omitempty" validate:"isdefault" swaggerignore:"true"`
}

// CityUpdate is the body of the narrow contact-update operation.
type CityUpdate struct {
	ID   *string `json:"id" validate:"required,max=50" example:"P001"`
	City *string `json:"city" validate:"required" example:"Boston"`
}

// Input returns the record as a full create candidate.
func (p Patient) Input() PatientInput {
	id, name, city, gender := p.ID, p.Name, p.City, p.Gender
	age, weight, height := p.Age, p.Weight, p.Height
	return PatientInput{
		ID:     &id,
		Name:   &name,
		City:   &city,
		Age:    &age,
		Gender: &gender,
		Weight: &weight,
		Height: &height,
	}
}

// Apply overlays every present field of u onto in. The ID is left alone.
func (u PatientUpdate) Apply(in PatientInput) PatientInput {
	if u.Name != nil {
		in.Name = u.Name
	}
	if u.City != nil {
		in.City = u.City
	}
	if u.Age != nil {
		in.Age = u.Age
	}
	if u.Gender != nil {
		in.Gender = u.Gender
	}
	if u.Weight != nil {
		in.Weight = u.Weight
	}
	if u.Height != nil {
		in.Height = u.Height
	}
	return in
}
