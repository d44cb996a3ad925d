package claim

import "time"

// Type categorizes the care event behind a claim.
type Type string

const (
	TypePharmacy        Type = "pharmacy"
	TypeConsultation    Type = "consultation"
	TypeHospitalization Type = "hospitalization"
)

// Claim is the reimbursement record whose status the state machine guards.
type Claim struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	ContractID    string    `json:"contractId"`
	ProviderID    string    `json:"providerId"`
	AdherentID    string    `json:"adherentId"`
	InsurerID     string    `json:"insurerId"`
	TotalAmount   int64     `json:"totalAmount"`
	CoveredAmount int64     `json:"coveredAmount"`
	CopayAmount   int64     `json:"copayAmount"`
	FraudScore    float64   `json:"fraudScore"`
	Status        Status    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	ValidatedAt   time.Time `json:"validatedAt,omitzero"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
