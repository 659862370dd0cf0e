package nddaverba

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Estados de respuesta de NDD Averba.
const (
	StatusSuccess = "sucesso"
	StatusError   = "erro"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type loginResponse struct {
	AccessToken string `json:"token_acesso"`
	Message     string `json:"mensagem"`
}

// Response cuerpo de respuesta de averbação y cancelamento.
type Response struct {
	Status       string        `json:"status"`
	Message      string        `json:"mensagem"`
	Errors       []string      `json:"erros"`
	Document     *DocumentInfo `json:"documento"`
	Endorsements []Endorsement `json:"averbacoes"`
}

// DocumentInfo datos del CT-e según NDD Averba.
type DocumentInfo struct {
	Serie  flexString `json:"serie"`
	Number flexString `json:"numero"`
	Key    string     `json:"chave"`
	Status string     `json:"status"`
}

// Endorsement averbação registrada. Los montos pueden venir como número o string.
type Endorsement struct {
	Protocol          string          `json:"protocolo"`
	CteID             string          `json:"cte_id"`
	Number            flexString      `json:"numero"`
	EndorsementNumber string          `json:"numero_averbacao"`
	PolicyID          string          `json:"apolice_id"`
	InsurerID         string          `json:"seguradora_id"`
	CargoValue        decimal.Decimal `json:"valor_carga"`
	TotalInsured      decimal.Decimal `json:"total_segurado"`
}

// FirstEndorsement devuelve la primera averbação, si existe.
func (r *Response) FirstEndorsement() (Endorsement, bool) {
	if len(r.Endorsements) == 0 {
		return Endorsement{}, false
	}
	return r.Endorsements[0], true
}

// DocumentNumber número del documento informado por NDD Averba.
func (r *Response) DocumentNumber() string {
	if r.Document == nil {
		return ""
	}
	return r.Document.Number.String()
}

// flexString acepta string o número en el JSON.
type flexString string

func (f flexString) String() string { return string(f) }

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
