package controllers

import (
	"time"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
)

type LeadResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Company        string `json:"company,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Source         string `json:"source"`
	Status         string `json:"status"`
	EstimatedValue string `json:"estimated_value"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type ListLeadsResponse struct {
	Items []LeadResponse `json:"items"`
	Total int64          `json:"total"`
}

func toLeadResponse(l lead.Lead) LeadResponse {
	return LeadResponse{
		ID:             l.ID().String(),
		FullName:       l.FullName(),
		Email:          l.Email(),
		Phone:          l.Phone(),
		Company:        l.Company(),
		Notes:          l.Notes(),
		Source:         string(l.Source()),
		Status:         string(l.Status()),
		EstimatedValue: l.EstimatedValue().String(),
		CreatedAt:      l.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:      l.UpdatedAt().UTC().Format(time.RFC3339),
	}
}
