package fiscal

import (
	"github.com/jhoicas/fiscal-bridge/internal/application/dto"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
)

// ToSyncReportResponse convierte el reporte de envío a DTO.
func ToSyncReportResponse(r *SyncReport) *dto.SyncReportResponse {
	out := &dto.SyncReportResponse{
		ClosingID: r.ClosingID,
		Submitted: r.Submitted,
		Skipped:   r.Skipped,
		Unmapped:  r.Unmapped,
		Stored:    r.Stored,
		Existing:  r.Existing,
		Errors:    r.Errors,
		Outcomes:  make([]dto.RecordOutcomeResponse, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		out.Outcomes = append(out.Outcomes, dto.RecordOutcomeResponse{Record: o.Ref.String(), Status: toDominioStatus(o.Status)})
	}
	return out
}

// ToClosingResponse convierte un cierre a DTO.
func ToClosingResponse(c *entity.Closing) *dto.ClosingResponse {
	return &dto.ClosingResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Period:    c.Period(),
		State:     c.State,
		ClosedAt:  c.ClosedAt,
	}
}

// ToClosingStatusResponse convierte el estado de conciliación a DTO.
func ToClosingStatusResponse(s *ClosingStatus) *dto.ClosingStatusResponse {
	out := &dto.ClosingStatusResponse{
		Closing:      *ToClosingResponse(s.Closing),
		ReadyToClose: s.ReadyToClose,
		Categories:   make([]dto.CategoryStatusResponse, 0, len(s.Categories)),
		Pending:      make([]dto.PendingRecordResponse, 0, len(s.Pending)),
	}
	for _, c := range s.Categories {
		out.Categories = append(out.Categories, dto.CategoryStatusResponse{
			Category: c.Category, Total: c.Total, Stored: c.Stored, Errors: c.Errors, Pending: c.Pending,
		})
	}
	for _, p := range s.Pending {
		out.Pending = append(out.Pending, dto.PendingRecordResponse{
			Record:   p.Ref.String(),
			Category: p.Category,
			Number:   p.Number,
			Status:   toDominioStatus(p.Status),
		})
	}
	return out
}

// ToEndorsementEventResponse convierte un evento de averbação a DTO.
func ToEndorsementEventResponse(ev *entity.EndorsementEvent) *dto.EndorsementEventResponse {
	return &dto.EndorsementEventResponse{
		ID:                ev.ID,
		DocumentID:        ev.DocumentID,
		State:             string(ev.State),
		Message:           ev.Message,
		ErrorMessage:      ev.ErrorMessage,
		CteID:             ev.CteID,
		DocumentNumber:    ev.DocumentNumber,
		ProtocolNumber:    ev.ProtocolNumber,
		EndorsementNumber: ev.EndorsementNumber,
		InsuranceCompany:  ev.InsuranceCompany,
		PolicyNumber:      ev.PolicyNumber,
		Amount:            ev.Amount,
		TotalInsured:      ev.TotalInsured,
		Date:              ev.Date,
	}
}

// ToEndorsementHistoryResponse convierte el historial a DTO.
func ToEndorsementHistoryResponse(h *EndorsementHistory) *dto.EndorsementHistoryResponse {
	out := &dto.EndorsementHistoryResponse{
		DocumentID: h.DocumentID,
		State:      string(h.Summary.State),
		LastSent:   h.Summary.LastSent,
		Events:     make([]dto.EndorsementEventResponse, 0, len(h.Events)),
	}
	for _, ev := range h.Events {
		out.Events = append(out.Events, *ToEndorsementEventResponse(ev))
	}
	return out
}

func toDominioStatus(st entity.DominioStatus) dto.DominioStatusResponse {
	return dto.DominioStatusResponse{
		State:         string(st.State),
		TransactionID: st.TransactionID,
		Code:          st.Code,
		Message:       st.Message,
	}
}
