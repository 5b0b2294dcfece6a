// Package form decodes submitted prediction and credential forms into
// domain types.
package form

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/attaboy/strokecheck/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Form keys of the prediction page.
const (
	FieldAge          = "age"
	FieldGlucose      = "avg_glucose_level"
	FieldBMI          = "bmi"
	FieldGender       = "gender"
	FieldHypertension = "hypertension"
	FieldHeartDisease = "disease"
	FieldMarried      = "married"
	FieldWork         = "work"
	FieldResidence    = "residence"
	FieldSmoking      = "smoking"
)

// Form keys of the login and register pages.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// Credentials is a submitted username/password pair.
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// Parser decodes prediction forms. In strict mode decoded features are
// also range-checked against the documented input bounds.
type Parser struct {
	strict   bool
	validate *validator.Validate
}

// NewParser creates a Parser.
func NewParser(strict bool) *Parser {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Parser{strict: strict, validate: v}
}

// Strict reports whether range checks are enabled.
func (p *Parser) Strict() bool { return p.strict }

// Parse decodes the ten prediction fields. A missing or malformed field
// yields a validation AppError naming the field.
func (p *Parser) Parse(values url.Values) (domain.PatientFeatures, error) {
	d := decoder{values: values}

	f := domain.PatientFeatures{
		Age:          d.int(FieldAge),
		AvgGlucose:   d.float(FieldGlucose),
		BMI:          d.float(FieldBMI),
		Gender:       d.int(FieldGender),
		Hypertension: d.int(FieldHypertension),
		HeartDisease: d.int(FieldHeartDisease),
		EverMarried:  d.int(FieldMarried),
		WorkType:     domain.WorkType(d.int(FieldWork)),
		Residence:    d.int(FieldResidence),
		Smoking:      domain.SmokingStatus(d.int(FieldSmoking)),
	}
	if d.err != nil {
		return domain.PatientFeatures{}, d.err
	}
	if err := p.Check(f); err != nil {
		return domain.PatientFeatures{}, err
	}
	return f, nil
}

// ParseJSON decodes a JSON object carrying the ten prediction fields.
// Values may be JSON numbers or numeric strings; they go through the same
// decoder as form posts so error messages match.
func (p *Parser) ParseJSON(r io.Reader) (domain.PatientFeatures, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		return domain.PatientFeatures{}, domain.ErrValidation("invalid JSON body")
	}

	values := make(url.Values, len(body))
	for key, v := range body {
		switch x := v.(type) {
		case json.Number:
			values.Set(key, x.String())
		case string:
			values.Set(key, x)
		default:
			return domain.PatientFeatures{}, domain.ErrValidation(fmt.Sprintf("field %q must be a number", key))
		}
	}
	return p.Parse(values)
}

// Check applies the strict-mode range rules. It is a no-op when strict
// mode is off.
func (p *Parser) Check(f domain.PatientFeatures) error {
	if !p.strict {
		return nil
	}
	return p.check(f)
}

// ValidateCredentials checks that username and password are present and
// within length limits. bcrypt rejects passwords longer than 72 bytes.
func (p *Parser) ValidateCredentials(c Credentials) error {
	return p.check(c)
}

func (p *Parser) check(v interface{}) error {
	err := p.validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.ErrValidation(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return domain.ErrValidation(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// decoder records the first failure and turns later reads into no-ops.
type decoder struct {
	values url.Values
	err    error
}

func (d *decoder) raw(key string) (string, bool) {
	if d.err != nil {
		return "", false
	}
	vs, ok := d.values[key]
	if !ok || len(vs) == 0 {
		d.err = domain.ErrValidation(fmt.Sprintf("missing field %q", key))
		return "", false
	}
	return strings.TrimSpace(vs[0]), true
}

func (d *decoder) int(key string) int {
	s, ok := d.raw(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		d.err = domain.ErrValidation(fmt.Sprintf("invalid integer for %q: %q", key, s))
		return 0
	}
	return n
}

func (d *decoder) float(key string) float64 {
	s, ok := d.raw(key)
	if !ok {
		return 0
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		d.err = domain.ErrValidation(fmt.Sprintf("invalid number for %q: %q", key, s))
		return 0
	}
	return x
}

// ParseCredentials reads the username and password form fields. Absent
// fields decode as empty strings.
func ParseCredentials(values url.Values) Credentials {
	return Credentials{
		Username: strings.TrimSpace(values.Get(FieldUsername)),
		Password: values.Get(FieldPassword),
	}
}
