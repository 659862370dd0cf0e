package dominio

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Token respuesta del endpoint OAuth2 client-credentials.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// Session clave de integración activada + token, reutilizada en todo el lote.
type Session struct {
	IntegrationKey string
	AccessToken    string
}

type activationResponse struct {
	IntegrationKey string `json:"integrationKey"`
}

type submitResponse struct {
	ID flexibleID `json:"id"`
}

// APIStatus estado de procesamiento de un archivo.
type APIStatus struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FileStatus entrada de filesExpanded.
type FileStatus struct {
	APIStatus APIStatus `json:"apiStatus"`
}

// StatusResponse respuesta de GET {xml_url}/{id}.
type StatusResponse struct {
	ID            flexibleID   `json:"id"`
	FilesExpanded []FileStatus `json:"filesExpanded"`
}

// TransactionID id de la transacción en Dominio.
func (s *StatusResponse) TransactionID() string { return string(s.ID) }

// First devuelve el estado del primer archivo (cada envío lleva un único archivo).
func (s *StatusResponse) First() (APIStatus, bool) {
	if len(s.FilesExpanded) == 0 {
		return APIStatus{}, false
	}
	return s.FilesExpanded[0].APIStatus, true
}

// flexibleID acepta ids numéricos o string en el JSON.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
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
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id inválido %s: %w", string(b), err)
	}
	*f = flexibleID(n.String())
	return nil
}
