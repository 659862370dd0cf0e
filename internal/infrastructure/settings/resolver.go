package settings

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/pkg/logger"
)

// Claves de parámetros de integración.
const (
	KeyDominioTokenURL          = "dominio_token_url"
	KeyDominioKeyIntegrationURL = "dominio_key_integration_url"
	KeyDominioCheckCustomerURL  = "dominio_check_customer_url"
	KeyDominioXMLURL            = "dominio_xml_url"
	KeyDominioAudience          = "dominio_audience"
	KeyDominioCookie            = "dominio_cookie"
	KeyNDDProductionURL         = "ndd_averba_production_url"
	KeyNDDHomologationURL       = "ndd_averba_homologation_url"
)

// DominioEndpoints URLs y constantes de la API Dominio. XMLURL es a la vez el
// endpoint de envío y la base de la consulta de estado ({XMLURL}/{id}).
type DominioEndpoints struct {
	TokenURL          string `key:"dominio_token_url" validate:"required,url"`
	KeyIntegrationURL string `key:"dominio_key_integration_url" validate:"required,url"`
	CheckCustomerURL  string `key:"dominio_check_customer_url" validate:"required,url"`
	XMLURL            string `key:"dominio_xml_url" validate:"required,url"`
	Audience          string `key:"dominio_audience"`
	Cookie            string `key:"dominio_cookie"`
}

// Resolver consulta las fuentes en el orden recibido; gana el primer valor no vacío.
type Resolver struct {
	sources  []Source
	validate *validator.Validate
	log      *logger.Logger
}

// NewResolver construye el resolver. El orden habitual es env, process, stored.
func NewResolver(log *logger.Logger, sources ...Source) *Resolver {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if k := f.Tag.Get("key"); k != "" {
			return k
		}
		return f.Name
	})
	return &Resolver{sources: sources, validate: v, log: log}
}

// Value devuelve el primer valor no vacío de key. Un fallo de una fuente aborta la resolución.
func (r *Resolver) Value(ctx context.Context, key string) (string, error) {
	for _, s := range r.sources {
		v, err := s.Lookup(ctx, key)
		if err != nil {
			return "", fmt.Errorf("resolver %s desde %s: %w", key, s.Name(), err)
		}
		if v != "" {
			r.log.Debug().Str("key", key).Str("source", s.Name()).Msg("parámetro resuelto")
			return v, nil
		}
	}
	return "", nil
}

// ResolveDominio resuelve y valida las URLs de Dominio. Si falta alguna devuelve
// ConfigurationError antes de cualquier llamada de red.
func (r *Resolver) ResolveDominio(ctx context.Context) (DominioEndpoints, error) {
	var ep DominioEndpoints
	targets := []struct {
		key string
		dst *string
	}{
		{KeyDominioTokenURL, &ep.TokenURL},
		{KeyDominioKeyIntegrationURL, &ep.KeyIntegrationURL},
		{KeyDominioCheckCustomerURL, &ep.CheckCustomerURL},
		{KeyDominioXMLURL, &ep.XMLURL},
		{KeyDominioAudience, &ep.Audience},
		{KeyDominioCookie, &ep.Cookie},
	}
	for _, t := range targets {
		v, err := r.Value(ctx, t.key)
		if err != nil {
			return DominioEndpoints{}, err
		}
		*t.dst = v
	}

	if err := r.validate.Struct(ep); err != nil {
		return DominioEndpoints{}, r.configurationError("Dominio", err)
	}
	return ep, nil
}

// ResolveNDD resuelve la URL base de NDD Averba del ambiente indicado.
func (r *Resolver) ResolveNDD(ctx context.Context, env entity.Environment) (string, error) {
	key := KeyNDDHomologationURL
	if env.Normalize() == entity.EnvironmentProduction {
		key = KeyNDDProductionURL
	}
	v, err := r.Value(ctx, key)
	if err != nil {
		return "", err
	}
	if err := r.validate.Var(v, "required,url"); err != nil {
		return "", &domain.ConfigurationError{Integration: "NDD Averba", Missing: []string{describe(key, v)}}
	}
	return v, nil
}

func (r *Resolver) configurationError(integration string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validar configuración %s: %w", integration, err)
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		v, _ := fe.Value().(string)
		missing = append(missing, describe(fe.Field(), v))
	}
	return &domain.ConfigurationError{Integration: integration, Missing: missing}
}

func describe(key, value string) string {
	if value == "" {
		return key
	}
	return key + " (URL inválida)"
}
