package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Etapas de las llamadas a servicios externos, usadas en UpstreamError.Stage.
const (
	StageToken         = "token"
	StageActivation    = "activation"
	StageCustomerCheck = "customer_check"
	StageSubmit        = "submit"
	StageStatus        = "status"
	StageLogin         = "login"
	StageUserCheck     = "user_check"
	StageEndorse       = "endorse"
	StageCancel        = "cancel"
	StageRetrieve      = "retrieve"
)

// Métodos de resolución de parámetros listados en ConfigurationError.
var ResolutionMethods = []string{
	"variable de entorno (ej. DOMINIO_XML_URL)",
	"archivo de configuración del proceso (ej. dominio_xml_url)",
	"parámetro almacenado (ej. dominio_xml_url)",
}

// ConfigurationError indica que faltan (o son inválidos) parámetros obligatorios
// de integración. Se devuelve antes de cualquier llamada de red.
type ConfigurationError struct {
	Integration string   // "Dominio" | "NDD Averba"
	Missing     []string // claves faltantes o inválidas
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "las URLs de la API %s no están configuradas correctamente.\n\nFaltan:\n", e.Integration)
	for _, m := range e.Missing {
		fmt.Fprintf(&b, "  - %s\n", m)
	}
	b.WriteString("\nConfigúrelas con alguno de estos métodos:\n")
	for i, m := range ResolutionMethods {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, m)
	}
	return strings.TrimRight(b.String(), "\n")
}

// UpstreamError falla de transporte o respuesta no exitosa de un servicio externo.
// Stage identifica la llamada (token, activation, submit, status, ...) y Record
// la referencia del registro en curso cuando aplica.
type UpstreamError struct {
	Stage      string
	Record     string
	StatusCode int    // 0 si no hubo respuesta HTTP
	Message    string // mensaje del servicio externo, si lo hay
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "upstream %s", e.Stage)
	if e.Record != "" {
		fmt.Fprintf(&b, " [%s]", e.Record)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MissingPayloadError el registro no tiene XML de autorización ni de envío.
type MissingPayloadError struct {
	Record string
}

func (e *MissingPayloadError) Error() string {
	return fmt.Sprintf("el registro %s no tiene XML de autorización ni de envío", e.Record)
}

// PendingCategory cantidad de registros sin almacenar en una categoría.
type PendingCategory struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ClosingBlockedError el cierre tiene registros que aún no fueron almacenados en Dominio.
type ClosingBlockedError struct {
	Pending []PendingCategory
}

func (e *ClosingBlockedError) Error() string {
	parts := make([]string, 0, len(e.Pending))
	for _, p := range e.Pending {
		parts = append(parts, fmt.Sprintf("%s: %d sin almacenar", p.Category, p.Count))
	}
	return "no se puede cerrar, hay registros no enviados a Dominio: " + strings.Join(parts, "; ")
}

// UpstreamStage devuelve la etapa de un UpstreamError envuelto en err, o "" si no lo hay.
func UpstreamStage(err error) string {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Stage
	}
	return ""
}
