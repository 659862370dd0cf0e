// Package dominio implementa el cliente HTTP de la API Dominio (token OAuth2,
// activación de la clave de integración, envío de XML y consulta de estado)
// y el generador del XML de baixa para líneas de pago.
package dominio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/settings"
)

const (
	headerIntegrationKey = "x-integration-key"
	maxResponseBytes     = 1 << 20 // 1 MB
	maxMessageChars      = 300
)

// Client cliente de la API Dominio ligado a un conjunto de URLs ya resueltas.
// No guarda tokens: cada operación de alto nivel obtiene uno nuevo.
type Client struct {
	httpClient *http.Client
	endpoints  settings.DominioEndpoints
}

// Option configura el cliente.
type Option func(*Client)

// WithHTTPClient reemplaza el http.Client (tests, proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient construye el cliente con un timeout de red de 60 s.
func NewClient(endpoints settings.DominioEndpoints, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoints:  endpoints,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ── Token ─────────────────────────────────────────────────────────────────────

// Token obtiene un access token con el flujo client-credentials.
func (c *Client) Token(ctx context.Context, creds entity.ClientCredentials) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)
	form.Set("audience", c.endpoints.Audience)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &domain.UpstreamError{Stage: domain.StageToken, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.endpoints.Cookie != "" {
		req.Header.Set("Cookie", c.endpoints.Cookie)
	}

	var tok Token
	if err := c.do(req, domain.StageToken, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, &domain.UpstreamError{Stage: domain.StageToken, Message: "respuesta sin access_token"}
	}
	return &tok, nil
}

// ── Activación ────────────────────────────────────────────────────────────────

// Activate activa la clave de integración del ambiente y devuelve la sesión del lote.
func (c *Client) Activate(ctx context.Context, accessToken, integrationKey string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.KeyIntegrationURL, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Stage: domain.StageActivation, Err: err}
	}
	setAuth(req, accessToken, integrationKey)

	var out activationResponse
	if err := c.do(req, domain.StageActivation, &out); err != nil {
		return nil, err
	}
	if out.IntegrationKey == "" {
		return nil, &domain.UpstreamError{Stage: domain.StageActivation, Message: "respuesta sin integrationKey"}
	}
	return &Session{IntegrationKey: out.IntegrationKey, AccessToken: accessToken}, nil
}

// CheckCustomer consulta la información de activación del cliente en Dominio.
// Usa la clave de integración del ambiente tal cual, sin activarla.
func (c *Client) CheckCustomer(ctx context.Context, accessToken, integrationKey string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.CheckCustomerURL, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Stage: domain.StageCustomerCheck, Err: err}
	}
	setAuth(req, accessToken, integrationKey)

	out := map[string]any{}
	if err := c.do(req, domain.StageCustomerCheck, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Envío ─────────────────────────────────────────────────────────────────────

// SubmitXML envía un XML como multipart (file[] + query) y devuelve el id asignado.
func (c *Client) SubmitXML(ctx context.Context, s Session, filename string, payload []byte, boxE bool) (string, error) {
	body, contentType, err := buildMultipart(filename, payload, boxE)
	if err != nil {
		return "", &domain.UpstreamError{Stage: domain.StageSubmit, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.XMLURL, body)
	if err != nil {
		return "", &domain.UpstreamError{Stage: domain.StageSubmit, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	setAuth(req, s.AccessToken, s.IntegrationKey)

	var out submitResponse
	if err := c.do(req, domain.StageSubmit, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &domain.UpstreamError{Stage: domain.StageSubmit, Message: "respuesta sin id"}
	}
	return string(out.ID), nil
}

func buildMultipart(filename string, payload []byte, boxE bool) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fh := textproto.MIMEHeader{}
	fh.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file[]"; filename=%q`, filename))
	fh.Set("Content-Type", "application/xml")
	fw, err := mw.CreatePart(fh)
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(payload); err != nil {
		return nil, "", err
	}

	query, err := json.Marshal(map[string]bool{"boxe/File": boxE})
	if err != nil {
		return nil, "", err
	}
	qh := textproto.MIMEHeader{}
	qh.Set("Content-Disposition", `form-data; name="query"`)
	qh.Set("Content-Type", "application/json")
	qw, err := mw.CreatePart(qh)
	if err != nil {
		return nil, "", err
	}
	if _, err := qw.Write(query); err != nil {
		return nil, "", err
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// ── Estado ────────────────────────────────────────────────────────────────────

// FetchStatus consulta GET {xml_url}/{id}.
func (c *Client) FetchStatus(ctx context.Context, s Session, externalID string) (*StatusResponse, error) {
	endpoint := strings.TrimRight(c.endpoints.XMLURL, "/") + "/" + url.PathEscape(externalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Stage: domain.StageStatus, Err: err}
	}
	setAuth(req, s.AccessToken, s.IntegrationKey)

	var out StatusResponse
	if err := c.do(req, domain.StageStatus, &out); err != nil {
		return nil, err
	}
	if _, ok := out.First(); !ok {
		return nil, &domain.UpstreamError{Stage: domain.StageStatus, Message: "respuesta sin filesExpanded"}
	}
	return &out, nil
}

// ── HTTP ──────────────────────────────────────────────────────────────────────

func setAuth(req *http.Request, accessToken, integrationKey string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set(headerIntegrationKey, integrationKey)
	req.Header.Set("Accept", "application/json")
}

// do ejecuta la petición y decodifica el JSON en out. Respuestas no 2xx y fallos de
// transporte se devuelven como UpstreamError de la etapa indicada.
func (c *Client) do(req *http.Request, stage string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return &domain.UpstreamError{Stage: stage, Message: "timeout o cancelación", Err: ctxErr}
		}
		return &domain.UpstreamError{Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &domain.UpstreamError{Stage: stage, StatusCode: resp.StatusCode, Err: fmt.Errorf("leer respuesta: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.UpstreamError{Stage: stage, StatusCode: resp.StatusCode, Message: upstreamMessage(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.UpstreamError{Stage: stage, StatusCode: resp.StatusCode, Err: fmt.Errorf("decodificar respuesta: %w", err)}
	}
	return nil
}

// upstreamMessage extrae un mensaje legible del cuerpo de error.
func upstreamMessage(raw []byte) string {
	var body map[string]any
	if json.Unmarshal(raw, &body) == nil {
		for _, k := range []string{"message", "error_description", "error", "detail"} {
			if s, ok := body[k].(string); ok && s != "" {
				return s
			}
		}
	}
	msg := []rune(strings.TrimSpace(string(raw)))
	if len(msg) > maxMessageChars {
		return string(msg[:maxMessageChars]) + "..."
	}
	return string(msg)
}
