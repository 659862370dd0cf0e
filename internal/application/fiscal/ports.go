package fiscal

import (
	"context"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/dominio"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/nddaverba"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/settings"
)

// EndpointResolver resuelve las URLs de integración (env → archivo de proceso → parámetro).
type EndpointResolver interface {
	ResolveDominio(ctx context.Context) (settings.DominioEndpoints, error)
	ResolveNDD(ctx context.Context, env entity.Environment) (string, error)
}

// DominioGateway puerto de salida hacia la API Dominio. Lo implementa *dominio.Client.
type DominioGateway interface {
	Token(ctx context.Context, creds entity.ClientCredentials) (*dominio.Token, error)
	Activate(ctx context.Context, accessToken, integrationKey string) (*dominio.Session, error)
	CheckCustomer(ctx context.Context, accessToken, integrationKey string) (map[string]any, error)
	SubmitXML(ctx context.Context, s dominio.Session, filename string, payload []byte, boxE bool) (string, error)
	FetchStatus(ctx context.Context, s dominio.Session, externalID string) (*dominio.StatusResponse, error)
}

// DominioGatewayFactory construye un gateway ligado a URLs ya resueltas.
type DominioGatewayFactory func(endpoints settings.DominioEndpoints) DominioGateway

// EndorsementGateway puerto de salida hacia NDD Averba. Lo implementa *nddaverba.Client.
type EndorsementGateway interface {
	Login(ctx context.Context, baseURL string, creds entity.LoginCredentials) (string, error)
	CheckUser(ctx context.Context, baseURL, token string) (map[string]any, error)
	Endorse(ctx context.Context, baseURL, token string, xml []byte) (*nddaverba.Response, error)
	Cancel(ctx context.Context, baseURL, token string, xml []byte) (*nddaverba.Response, error)
	Retrieve(ctx context.Context, baseURL, token, documentKey string) ([]byte, error)
}

// ClosingTxRunner ejecuta fn con el repositorio de cierres atado a una transacción.
type ClosingTxRunner interface {
	RunClosing(ctx context.Context, fn func(closings repository.ClosingRepository) error) error
}

// ClosingReportGenerator genera el PDF de conciliación de un cierre.
type ClosingReportGenerator interface {
	GenerateClosingReport(ctx context.Context, company *entity.Company, status *ClosingStatus) ([]byte, error)
}

var (
	_ DominioGateway     = (*dominio.Client)(nil)
	_ EndorsementGateway = (*nddaverba.Client)(nil)
	_ EndpointResolver   = (*settings.Resolver)(nil)
)
