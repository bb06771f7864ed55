package http

import (
	"time"

	"github.com/Bid2Bid/bid2bid-backend/internal/currency"
	"github.com/Bid2Bid/bid2bid-backend/internal/draft"
	"github.com/Bid2Bid/bid2bid-backend/internal/projects/domain"
)

type createReq struct {
	Name string `json:"name" binding:"required"`
}

// saveReq is one explicit save of the edit screen's draft.
type saveReq struct {
	ProjectID    string      `json:"project_id"`
	Name         string      `json:"name"`
	Vendors      []vendorReq `json:"vendors"`
	SharedEmails []string    `json:"shared_emails"`
}

type vendorReq struct {
	ID          string `json:"id"`
	VendorName  string `json:"vendor_name"`
	PhoneNumber string `json:"phone_number"`
	StartDate   string `json:"start_date"`
	JobDuration string `json:"job_duration"`
	TotalCost   string `json:"total_cost"`
	IsFavorite  bool   `json:"is_favorite"`
}

func (r saveReq) toDraft() *draft.Draft {
	d := &draft.Draft{
		ProjectID:    r.ProjectID,
		Name:         r.Name,
		SharedEmails: r.SharedEmails,
	}
	if d.ProjectID == "" {
		d.ProjectID = draft.NewLocalID()
	}
	for _, v := range r.Vendors {
		id := v.ID
		if id == "" {
			id = draft.NewLocalID()
		}
		d.Vendors = append(d.Vendors, draft.Vendor{
			ID:          id,
			VendorName:  v.VendorName,
			PhoneNumber: v.PhoneNumber,
			StartDate:   v.StartDate,
			JobDuration: v.JobDuration,
			TotalCost:   v.TotalCost,
			IsFavorite:  v.IsFavorite,
		})
	}
	return d
}

type vendorResp struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"project_id"`
	VendorName       string     `json:"vendor_name"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	JobDuration      string     `json:"job_duration,omitempty"`
	TotalCost        float64    `json:"total_cost"`
	TotalCostDisplay string     `json:"total_cost_display"`
	IsFavorite       bool       `json:"is_favorite"`
	CreatedAt        time.Time  `json:"created_at"`
}

type bundleResp struct {
	Project domain.Project `json:"project"`
	Vendors []vendorResp   `json:"vendors"`
	Shares  []domain.Share `json:"shares"`
}

func toBundleResp(b *domain.Bundle) bundleResp {
	out := bundleResp{
		Project: b.Project,
		Vendors: make([]vendorResp, 0, len(b.Vendors)),
		Shares:  b.Shares,
	}
	for _, v := range b.Vendors {
		out.Vendors = append(out.Vendors, vendorResp{
			ID:               v.ID,
			ProjectID:        v.ProjectID,
			VendorName:       v.VendorName,
			PhoneNumber:      v.PhoneNumber,
			StartDate:        v.StartDate,
			JobDuration:      v.JobDuration,
			TotalCost:        v.TotalCost,
			TotalCostDisplay: currency.FormatValue(v.TotalCost),
			IsFavorite:       v.IsFavorite,
			CreatedAt:        v.CreatedAt,
		})
	}
	return out
}
