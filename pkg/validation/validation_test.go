package validation

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "campus/pkg/domain-errors"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,hasupper,hasdigit"`
	DNI      string `json:"dni" validate:"omitempty,dni"`
	Born     string `json:"dateOfBirth" validate:"omitempty,isodate"`
	Name     string `json:"firstName" validate:"omitempty,notblank"`
}

var sampleMessages = Messages{
	"email.required":    "El email es obligatorio",
	"email":             "Formato de email inválido",
	"password.required": "La contraseña es obligatoria",
	"password.min":      "Debe tener al menos 8 caracteres",
	"password.hasupper": "Debe contener al menos una mayúscula",
	"password.hasdigit": "Debe contener al menos un número",
}

type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

func (s *ValidationSuite) valid() sample {
	return sample{Email: "ana@colegio.es", Password: "Segura123", DNI: "12345678z", Born: "2008-04-01", Name: "Ana"}
}

func (s *ValidationSuite) TestValid() {
	s.NoError(Validate(s.valid(), sampleMessages))
}

func (s *ValidationSuite) TestFailures() {
	tests := []struct {
		name      string
		mutate    func(*sample)
		wantField string
		wantMsg   string
	}{
		{"missing email", func(r *sample) { r.Email = "" }, "email", "El email es obligatorio"},
		{"malformed email falls back to field message", func(r *sample) { r.Email = "nope" }, "email", "Formato de email inválido"},
		{"short password", func(r *sample) { r.Password = "Ab1" }, "password", "Debe tener al menos 8 caracteres"},
		{"no uppercase", func(r *sample) { r.Password = "segura123" }, "password", "Debe contener al menos una mayúscula"},
		{"no digit", func(r *sample) { r.Password = "SeguraSegura" }, "password", "Debe contener al menos un número"},
		{"bad dni letter", func(r *sample) { r.DNI = "12345678U" }, "dni", "dni is invalid"},
		{"dni too short", func(r *sample) { r.DNI = "1234567Z" }, "dni", "dni is invalid"},
		{"unparseable date", func(r *sample) { r.Born = "31/12/2008" }, "dateOfBirth", "dateOfBirth is invalid"},
		{"blank name", func(r *sample) { r.Name = "   " }, "firstName", "firstName is invalid"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := s.valid()
			tt.mutate(&req)
			err := Validate(req, sampleMessages)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Equal(tt.wantField, dErrors.FieldOf(err))
			s.Equal(tt.wantMsg, err.Error())
		})
	}
}

func (s *ValidationSuite) TestValidateVar() {
	s.NoError(ValidateVar("Segura123", "min=8,hasupper,hasdigit", "password", sampleMessages))

	err := ValidateVar("segura123", "min=8,hasupper,hasdigit", "password", sampleMessages)
	s.Equal("password", dErrors.FieldOf(err))
	s.Equal("Debe contener al menos una mayúscula", err.Error())
}
