package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// EndorsementState estado de averbação de un CT-e en NDD Averba.
type EndorsementState string

const (
	EndorsementStateUnset    EndorsementState = ""
	EndorsementStateEndorsed EndorsementState = "endorsed"
	EndorsementStateError    EndorsementState = "error"
	EndorsementStateCancel   EndorsementState = "cancel"
)

// EndorsementEvent registro de cada respuesta de NDD Averba sobre un documento.
type EndorsementEvent struct {
	ID                string
	CompanyID         string
	DocumentID        string
	State             EndorsementState
	Message           string
	ErrorMessage      string
	CteID             string
	DocumentNumber    string
	ProtocolNumber    string
	EndorsementNumber string
	InsuranceCompany  string
	PolicyNumber      string
	Amount            decimal.Decimal
	TotalInsured      decimal.Decimal
	Date              time.Time
}

// EndorsementSummary estado de averbação derivado del historial de eventos.
type EndorsementSummary struct {
	State    EndorsementState
	LastSent *time.Time
}

// SummarizeEndorsement deriva el estado del documento a partir de sus eventos:
// endorsed si algún evento lo está y ninguno es cancel; si no, el estado del más reciente.
func SummarizeEndorsement(events []*EndorsementEvent) EndorsementSummary {
	if len(events) == 0 {
		return EndorsementSummary{}
	}
	sorted := make([]*EndorsementEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	var endorsed, cancelled bool
	for _, ev := range sorted {
		switch ev.State {
		case EndorsementStateEndorsed:
			endorsed = true
		case EndorsementStateCancel:
			cancelled = true
		}
	}

	last := sorted[0].Date
	summary := EndorsementSummary{State: sorted[0].State, LastSent: &last}
	if endorsed && !cancelled {
		summary.State = EndorsementStateEndorsed
	}
	return summary
}
