// Package settings resuelve los parámetros de integración (URLs de Dominio y
// NDD Averba) consultando fuentes en orden de prioridad: variables de entorno,
// archivo de configuración del proceso y parámetros almacenados.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/spf13/viper"

	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

// Source fuente de parámetros. Lookup devuelve "" sin error si la clave no está definida.
type Source interface {
	Name() string
	Lookup(ctx context.Context, key string) (string, error)
}

// ── Variables de entorno ──────────────────────────────────────────────────────

// EnvSource lee la clave en mayúsculas (dominio_xml_url → DOMINIO_XML_URL).
type EnvSource struct {
	lookup func(string) (string, bool)
}

// NewEnvSource construye la fuente sobre os.LookupEnv.
func NewEnvSource() *EnvSource {
	return &EnvSource{lookup: os.LookupEnv}
}

// NewEnvSourceFromMap fuente de entorno fija, para tests.
func NewEnvSourceFromMap(vars map[string]string) *EnvSource {
	return &EnvSource{lookup: func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}}
}

func (s *EnvSource) Name() string { return "env" }

func (s *EnvSource) Lookup(_ context.Context, key string) (string, error) {
	v, _ := s.lookup(strings.ToUpper(key))
	return strings.TrimSpace(v), nil
}

// ── Archivo de configuración del proceso ──────────────────────────────────────

// ProcessSource lee del Viper cargado con config.LoadProcessFile.
type ProcessSource struct {
	v *viper.Viper
}

// NewProcessSource construye la fuente. v nil equivale a un archivo vacío.
func NewProcessSource(v *viper.Viper) *ProcessSource {
	if v == nil {
		v = viper.New()
	}
	return &ProcessSource{v: v}
}

func (s *ProcessSource) Name() string { return "process" }

func (s *ProcessSource) Lookup(_ context.Context, key string) (string, error) {
	return strings.TrimSpace(s.v.GetString(key)), nil
}

// ── Parámetros almacenados en base de datos ───────────────────────────────────

// StoredSource lee de la tabla de parámetros del sistema.
type StoredSource struct {
	repo repository.ParameterRepository
}

// NewStoredSource construye la fuente sobre el repositorio de parámetros.
func NewStoredSource(repo repository.ParameterRepository) *StoredSource {
	return &StoredSource{repo: repo}
}

func (s *StoredSource) Name() string { return "stored" }

func (s *StoredSource) Lookup(ctx context.Context, key string) (string, error) {
	v, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("parámetro %s: %w", key, err)
	}
	return strings.TrimSpace(v), nil
}

// ── AWS SSM Parameter Store ───────────────────────────────────────────────────

// SSMClient subconjunto del cliente SSM (permite mocks en tests).
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMSource lee parámetros almacenados en AWS Systems Manager bajo un prefijo
// (ej. /fiscal-bridge/prod/dominio_xml_url). Un parámetro inexistente equivale a vacío.
type SSMSource struct {
	client SSMClient
	prefix string
}

// NewSSMSource construye la fuente con un cliente ya configurado.
func NewSSMSource(client SSMClient, prefix string) *SSMSource {
	return &SSMSource{client: client, prefix: strings.TrimRight(prefix, "/")}
}

// NewSSMSourceFromRegion carga la configuración AWS por defecto (credenciales del
// entorno, perfil o rol) para la región indicada.
func NewSSMSourceFromRegion(ctx context.Context, region, prefix string) (*SSMSource, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("ssm: cargar configuración AWS: %w", err)
	}
	return NewSSMSource(ssm.NewFromConfig(cfg), prefix), nil
}

func (s *SSMSource) Name() string { return "ssm" }

func (s *SSMSource) Lookup(ctx context.Context, key string) (string, error) {
	name := s.prefix + "/" + key
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("ssm GetParameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", nil
	}
	return strings.TrimSpace(*out.Parameter.Value), nil
}
