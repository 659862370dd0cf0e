package entity

import "time"

// Company empresa emisora (tenant) con sus credenciales de integración.
type Company struct {
	ID        string
	Name      string
	CNPJ      string
	Status    string // active, inactive
	Dominio   DominioSettings
	NDD       NDDSettings
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DominioSettings credenciales de la API Dominio. El par client_id/client_secret es
// único por empresa; la clave de integración depende del ambiente.
type DominioSettings struct {
	Environment                Environment
	ClientID                   string
	ClientSecret               string
	ProductionIntegrationKey   string
	HomologationIntegrationKey string
	BoxE                       bool // marca "boxe/File" en cada envío
}

// NDDSettings credenciales de NDD Averba por ambiente.
type NDDSettings struct {
	Environment          Environment
	ProductionEmail      string
	ProductionPassword   string
	HomologationEmail    string
	HomologationPassword string
}

// ClientCredentials par client_id / client_secret para el flujo OAuth2 client-credentials.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// LoginCredentials par usuario / contraseña (NDD Averba).
type LoginCredentials struct {
	Email    string
	Password string
}

// DominioCredentials devuelve el par OAuth2 de la empresa.
func (c *Company) DominioCredentials() ClientCredentials {
	return ClientCredentials{ClientID: c.Dominio.ClientID, ClientSecret: c.Dominio.ClientSecret}
}

// DominioIntegrationKey devuelve la clave de integración del ambiente configurado.
func (c *Company) DominioIntegrationKey() string {
	if c.Dominio.Environment.Normalize() == EnvironmentProduction {
		return c.Dominio.ProductionIntegrationKey
	}
	return c.Dominio.HomologationIntegrationKey
}

// NDDCredentials devuelve usuario y contraseña de NDD Averba del ambiente configurado.
func (c *Company) NDDCredentials() LoginCredentials {
	if c.NDD.Environment.Normalize() == EnvironmentProduction {
		return LoginCredentials{Email: c.NDD.ProductionEmail, Password: c.NDD.ProductionPassword}
	}
	return LoginCredentials{Email: c.NDD.HomologationEmail, Password: c.NDD.HomologationPassword}
}

// Integraciones externas que una empresa puede tener habilitadas.
const (
	IntegrationDominio = "dominio"
	IntegrationNDD     = "ndd"
)

// HasIntegration indica si la empresa tiene credenciales para la integración.
func (c *Company) HasIntegration(name string) bool {
	switch name {
	case IntegrationDominio:
		return c.Dominio.ClientID != "" && c.DominioIntegrationKey() != ""
	case IntegrationNDD:
		return c.NDDCredentials().Email != ""
	default:
		return false
	}
}
