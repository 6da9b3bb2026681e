package lead

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vantagecrm/vantage/pkg/constants"
	"github.com/vantagecrm/vantage/pkg/serrors"
)

type CreateDTO struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone"`
	Company        string `json:"company"`
	Notes          string `json:"notes"`
	Source         string `json:"source"`
	Status         string `json:"status"`
	EstimatedValue string `json:"estimated_value"`
}

func (d *CreateDTO) Normalize() {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	d.Company = strings.TrimSpace(d.Company)
	d.Source = strings.TrimSpace(d.Source)
	d.Status = strings.TrimSpace(d.Status)
	d.EstimatedValue = strings.TrimSpace(d.EstimatedValue)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()

	out := make(serrors.ValidationErrors)
	if errs := constants.Validate.Struct(d); errs != nil {
		for _, err := range errs.(validator.ValidationErrors) {
			out[err.Field()] = "validation failed on " + err.Tag()
		}
	}
	if d.Source != "" && !IsValidSource(d.Source) {
		out["Source"] = "invalid value: " + d.Source
	}
	if d.Status != "" && !IsValidStatus(d.Status) {
		out["Status"] = "invalid value: " + d.Status
	}
	if d.EstimatedValue != "" {
		if _, err := decimal.NewFromString(d.EstimatedValue); err != nil {
			out["EstimatedValue"] = "invalid value: " + d.EstimatedValue
		}
	}
	return out, len(out) == 0
}

func (d *CreateDTO) ToEntity() Lead {
	opts := []Option{}
	if d.Phone != "" {
		opts = append(opts, WithPhone(d.Phone))
	}
	if d.Company != "" {
		opts = append(opts, WithCompany(d.Company))
	}
	if d.Notes != "" {
		opts = append(opts, WithNotes(d.Notes))
	}
	if d.Source != "" {
		opts = append(opts, WithSource(Source(d.Source)))
	}
	if d.Status != "" {
		opts = append(opts, WithStatus(Status(d.Status)))
	}
	if d.EstimatedValue != "" {
		if v, err := decimal.NewFromString(d.EstimatedValue); err == nil {
			opts = append(opts, WithEstimatedValue(v))
		}
	}
	return New(d.FullName, d.Email, opts...)
}
