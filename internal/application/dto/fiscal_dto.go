package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DominioStatusResponse campos de integración Dominio de un registro.
type DominioStatusResponse struct {
	State         string `json:"state"`
	TransactionID string `json:"transaction_id,omitempty"`
	Code          string `json:"code,omitempty"`
	Message       string `json:"message,omitempty"`
}

// RecordOutcomeResponse estado final de un registro enviado.
type RecordOutcomeResponse struct {
	Record string                `json:"record"` // kind:id
	Status DominioStatusResponse `json:"status"`
}

// SyncReportResponse respuesta de POST /api/closings/:id/dominio.
type SyncReportResponse struct {
	ClosingID string                  `json:"closing_id"`
	Submitted int                     `json:"submitted"`
	Skipped   int                     `json:"skipped"`
	Unmapped  int                     `json:"unmapped"`
	Stored    int                     `json:"stored"`
	Existing  int                     `json:"existing"`
	Errors    int                     `json:"errors"`
	Outcomes  []RecordOutcomeResponse `json:"outcomes"`
}

// ClosingResponse cierre fiscal.
type ClosingResponse struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"company_id"`
	Period    string     `json:"period"`
	State     string     `json:"state"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// CategoryStatusResponse agregado de una categoría.
type CategoryStatusResponse struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
	Stored   int    `json:"stored"`
	Errors   int    `json:"errors"`
	Pending  int    `json:"pending"`
}

// PendingRecordResponse registro no almacenado en Dominio.
type PendingRecordResponse struct {
	Record   string                `json:"record"`
	Category string                `json:"category"`
	Number   string                `json:"number,omitempty"`
	Status   DominioStatusResponse `json:"status"`
}

// ClosingStatusResponse respuesta de GET /api/closings/:id/status.
type ClosingStatusResponse struct {
	Closing      ClosingResponse          `json:"closing"`
	ReadyToClose bool                     `json:"ready_to_close"`
	Categories   []CategoryStatusResponse `json:"categories"`
	Pending      []PendingRecordResponse  `json:"pending"`
}

// EndorsementEventResponse evento de averbação.
type EndorsementEventResponse struct {
	ID                string          `json:"id"`
	DocumentID        string          `json:"document_id"`
	State             string          `json:"state"`
	Message           string          `json:"message,omitempty"`
	ErrorMessage      string          `json:"error_message,omitempty"`
	CteID             string          `json:"cte_id,omitempty"`
	DocumentNumber    string          `json:"document_number,omitempty"`
	ProtocolNumber    string          `json:"protocol_number,omitempty"`
	EndorsementNumber string          `json:"endorsement_number,omitempty"`
	InsuranceCompany  string          `json:"insurance_company,omitempty"`
	PolicyNumber      string          `json:"policy_number,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	TotalInsured      decimal.Decimal `json:"total_insured"`
	Date              time.Time       `json:"date"`
}

// EndorsementHistoryResponse respuesta de GET /api/documents/:id/endorsement/events.
type EndorsementHistoryResponse struct {
	DocumentID string                     `json:"document_id"`
	State      string                     `json:"state"`
	LastSent   *time.Time                 `json:"last_sent,omitempty"`
	Events     []EndorsementEventResponse `json:"events"`
}
