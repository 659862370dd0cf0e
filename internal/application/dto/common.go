package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`  // etapa del servicio externo que falló
	Record  string `json:"record,omitempty"` // registro en curso cuando falló
}

// PendingCategoryResponse cantidad de registros sin almacenar en una categoría.
type PendingCategoryResponse struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ClosingBlockedResponse cuerpo de 409 CLOSING_BLOCKED.
type ClosingBlockedResponse struct {
	Code    string                    `json:"code"`
	Message string                    `json:"message"`
	Pending []PendingCategoryResponse `json:"pending"`
}

// ConfigurationErrorResponse cuerpo de 500 CONFIGURATION con las claves faltantes.
type ConfigurationErrorResponse struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Integration string   `json:"integration"`
	Missing     []string `json:"missing"`
}

// HealthResponse cuerpo de GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	App    string `json:"app"`
}
