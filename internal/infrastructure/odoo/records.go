package odoo

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

const (
	modelDocument   = "l10n_br_fiscal.document"
	modelMoveLine   = "account.move.line"
	modelAttachment = "ir.attachment"
)

// Campos de estado Dominio en documentos y líneas de asiento.
const (
	fieldDominioState       = "dominio_state"
	fieldDominioTransaction = "dominio_transaction"
	fieldDominioCode        = "dominio_code"
	fieldDominioResponse    = "dominio_response"
)

// categoryByModel categoría del cierre según el modelo del documento fiscal.
var categoryByModel = map[string]string{
	"55": entity.CategoryNFe,
	"65": entity.CategoryNFCe,
	"SE": entity.CategoryNFSe,
	"59": entity.CategoryCFe,
	"60": entity.CategoryCFeECF,
}

var documentFields = []string{
	"id", "company_id", "close_id", "document_type", "document_key", "document_number",
	"document_serie", "state_edoc", "amount_total", "document_date",
	"authorization_file_id", "send_file_id", "cancel_file_id",
	fieldDominioState, fieldDominioTransaction, fieldDominioCode, fieldDominioResponse,
}

var moveLineFields = []string{
	"id", "company_id", "move_name", "document_type", "document_number", "document_serie",
	"partner_id", "partner_cnpj_cpf", "debit", "credit", "date", "date_maturity", "payment_date",
	fieldDominioState, fieldDominioTransaction, fieldDominioCode, fieldDominioResponse,
}

// ── Documentos fiscales ───────────────────────────────────────────────────────

var _ repository.FiscalDocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos fiscales leídos de Odoo. companyID es el id de la
// empresa en este servicio; Odoo no lo conoce.
type DocumentRepo struct {
	client    *Client
	companyID string
}

// NewDocumentRepository construye el adaptador.
func NewDocumentRepository(client *Client, companyID string) *DocumentRepo {
	return &DocumentRepo{client: client, companyID: companyID}
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.FiscalDocument, error) {
	odooID, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	rows, err := r.client.SearchRead(ctx, modelDocument, []any{[]any{"id", "=", odooID}}, documentFields, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return r.toDocument(ctx, rows[0])
}

func (r *DocumentRepo) ListByClosing(ctx context.Context, closingID string) ([]*entity.FiscalDocument, error) {
	odooID, ok := parseID(closingID)
	if !ok {
		return nil, fmt.Errorf("%w: id de cierre Odoo %q", domain.ErrInvalidInput, closingID)
	}
	rows, err := r.client.SearchRead(ctx, modelDocument,
		[]any{[]any{"close_id", "=", odooID}}, documentFields, "document_date asc, id asc")
	if err != nil {
		return nil, err
	}
	out := make([]*entity.FiscalDocument, 0, len(rows))
	for _, row := range rows {
		d, err := r.toDocument(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *DocumentRepo) GetDominioState(ctx context.Context, id string) (entity.DominioState, error) {
	return readState(ctx, r.client, modelDocument, id)
}

func (r *DocumentRepo) UpdateDominioStatus(ctx context.Context, id string, st entity.DominioStatus) error {
	return writeStatus(ctx, r.client, modelDocument, id, st)
}

func (r *DocumentRepo) toDocument(ctx context.Context, row map[string]any) (*entity.FiscalDocument, error) {
	d := &entity.FiscalDocument{
		ID:               idString(row["id"]),
		CompanyID:        r.companyID,
		ClosingID:        idString(row["close_id"]),
		DocumentTypeCode: str(row["document_type"]),
		DocumentKey:      str(row["document_key"]),
		Number:           str(row["document_number"]),
		Serie:            str(row["document_serie"]),
		StateEdoc:        str(row["state_edoc"]),
		AmountTotal:      amount(row["amount_total"]),
		IssuedAt:         date(row["document_date"]),
		Dominio:          statusFromRow(row),
	}
	d.Category = categoryByModel[d.DocumentTypeCode]
	if d.Category == "" {
		d.Category = entity.CategoryRL
	}

	var err error
	if d.AuthorizationXML, err = r.attachment(ctx, row["authorization_file_id"]); err != nil {
		return nil, err
	}
	if d.SendXML, err = r.attachment(ctx, row["send_file_id"]); err != nil {
		return nil, err
	}
	if d.CancelXML, err = r.attachment(ctx, row["cancel_file_id"]); err != nil {
		return nil, err
	}
	return d, nil
}

// attachment descarga el contenido (base64) de un ir.attachment; nil si no hay archivo.
func (r *DocumentRepo) attachment(ctx context.Context, ref any) ([]byte, error) {
	attID := toID(ref)
	if attID == 0 {
		return nil, nil
	}
	rows, err := r.client.SearchRead(ctx, modelAttachment, []any{[]any{"id", "=", attID}}, []string{"datas"}, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	raw := str(rows[0]["datas"])
	if raw == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("odoo: decodificar adjunto %d: %w", attID, err)
	}
	return data, nil
}

// ── Líneas de pago ────────────────────────────────────────────────────────────

var _ repository.PaymentLineRepository = (*PaymentLineRepo)(nil)

// PaymentLineRepo líneas de asiento del cierre con fecha de pago.
type PaymentLineRepo struct {
	client    *Client
	companyID string
}

// NewPaymentLineRepository construye el adaptador.
func NewPaymentLineRepository(client *Client, companyID string) *PaymentLineRepo {
	return &PaymentLineRepo{client: client, companyID: companyID}
}

func (r *PaymentLineRepo) ListByClosing(ctx context.Context, closingID string) ([]*entity.PaymentLine, error) {
	odooID, ok := parseID(closingID)
	if !ok {
		return nil, fmt.Errorf("%w: id de cierre Odoo %q", domain.ErrInvalidInput, closingID)
	}
	dom := []any{
		[]any{"move_id.close_id", "=", odooID},
		[]any{"payment_date", "!=", false},
	}
	rows, err := r.client.SearchRead(ctx, modelMoveLine, dom, moveLineFields, "payment_date asc, id asc")
	if err != nil {
		return nil, err
	}
	out := make([]*entity.PaymentLine, 0, len(rows))
	for _, row := range rows {
		amt := amount(row["debit"])
		if amt.IsZero() {
			amt = amount(row["credit"])
		}
		out = append(out, &entity.PaymentLine{
			ID:               idString(row["id"]),
			CompanyID:        r.companyID,
			ClosingID:        closingID,
			MoveName:         str(row["move_name"]),
			DocumentTypeCode: str(row["document_type"]),
			DocumentNumber:   str(row["document_number"]),
			DocumentSerie:    str(row["document_serie"]),
			PartnerName:      many2oneName(row["partner_id"]),
			PartnerCNPJ:      str(row["partner_cnpj_cpf"]),
			Amount:           amt,
			IssueDate:        date(row["date"]),
			DueDate:          date(row["date_maturity"]),
			PaymentDate:      date(row["payment_date"]),
			Dominio:          statusFromRow(row),
		})
	}
	return out, nil
}

func (r *PaymentLineRepo) GetDominioState(ctx context.Context, id string) (entity.DominioState, error) {
	return readState(ctx, r.client, modelMoveLine, id)
}

func (r *PaymentLineRepo) UpdateDominioStatus(ctx context.Context, id string, st entity.DominioStatus) error {
	return writeStatus(ctx, r.client, modelMoveLine, id, st)
}

// ── Estado Dominio ────────────────────────────────────────────────────────────

func statusFromRow(row map[string]any) entity.DominioStatus {
	return entity.DominioStatus{
		State:         entity.DominioState(str(row[fieldDominioState])),
		TransactionID: str(row[fieldDominioTransaction]),
		Code:          str(row[fieldDominioCode]),
		Message:       str(row[fieldDominioResponse]),
	}
}

func readState(ctx context.Context, client *Client, model, recordID string) (entity.DominioState, error) {
	odooID, ok := parseID(recordID)
	if !ok {
		return "", domain.ErrNotFound
	}
	rows, err := client.SearchRead(ctx, model, []any{[]any{"id", "=", odooID}}, []string{fieldDominioState}, "")
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", domain.ErrNotFound
	}
	return entity.DominioState(str(rows[0][fieldDominioState])), nil
}

func writeStatus(ctx context.Context, client *Client, model, recordID string, st entity.DominioStatus) error {
	odooID, ok := parseID(recordID)
	if !ok {
		return domain.ErrNotFound
	}
	values := map[string]any{
		fieldDominioState:       falseIfEmpty(string(st.State)),
		fieldDominioTransaction: falseIfEmpty(st.TransactionID),
		fieldDominioCode:        falseIfEmpty(st.Code),
		fieldDominioResponse:    falseIfEmpty(st.Message),
	}
	return client.Write(ctx, model, []int64{odooID}, values)
}

// falseIfEmpty Odoo borra un campo con false.
func falseIfEmpty(s string) any {
	if s == "" {
		return false
	}
	return s
}
