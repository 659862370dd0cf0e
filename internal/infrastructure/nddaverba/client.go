// Package nddaverba implementa el cliente HTTP de NDD Averba (averbação de CT-e).
package nddaverba

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
)

const maxResponseBytes = 1 << 20 // 1 MB

// Client cliente de NDD Averba. La URL base depende del ambiente de la empresa y se
// pasa en cada llamada.
type Client struct {
	httpClient *http.Client
}

// NewClient construye el cliente. hc nil usa un cliente con timeout de 60 s.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{httpClient: hc}
}

// Login autentica al usuario y devuelve token_acesso.
func (c *Client) Login(ctx context.Context, baseURL string, creds entity.LoginCredentials) (string, error) {
	body, err := json.Marshal(loginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return "", &domain.UpstreamError{Stage: domain.StageLogin, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, join(baseURL, "/auth/login"), bytes.NewReader(body))
	if err != nil {
		return "", &domain.UpstreamError{Stage: domain.StageLogin, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	status, raw, err := c.send(req, domain.StageLogin)
	if err != nil {
		return "", err
	}
	var out loginResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &domain.UpstreamError{Stage: domain.StageLogin, StatusCode: status, Err: err}
	}
	if !ok(status) {
		return "", &domain.UpstreamError{Stage: domain.StageLogin, StatusCode: status, Message: out.Message}
	}
	if out.AccessToken == "" {
		return "", &domain.UpstreamError{Stage: domain.StageLogin, StatusCode: status, Message: "respuesta sin token_acesso"}
	}
	return out.AccessToken, nil
}

// CheckUser verifica la autorización del usuario (GET /user).
func (c *Client) CheckUser(ctx context.Context, baseURL, token string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, join(baseURL, "/user"), nil)
	if err != nil {
		return nil, &domain.UpstreamError{Stage: domain.StageUserCheck, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	status, raw, err := c.send(req, domain.StageUserCheck)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &domain.UpstreamError{Stage: domain.StageUserCheck, StatusCode: status, Err: err}
	}
	if !ok(status) {
		msg, _ := out["mensagem"].(string)
		return nil, &domain.UpstreamError{Stage: domain.StageUserCheck, StatusCode: status, Message: msg}
	}
	return out, nil
}

// Endorse envía el XML del CT-e para averbação (POST /cte/xml).
// Respuestas 4xx con JSON se devuelven sin error: el llamador registra el evento.
func (c *Client) Endorse(ctx context.Context, baseURL, token string, xml []byte) (*Response, error) {
	return c.postXML(ctx, join(baseURL, "/cte/xml"), token, xml, domain.StageEndorse)
}

// Cancel envía el XML de cancelamento (POST /cte/xml/cancel).
func (c *Client) Cancel(ctx context.Context, baseURL, token string, xml []byte) (*Response, error) {
	return c.postXML(ctx, join(baseURL, "/cte/xml/cancel"), token, xml, domain.StageCancel)
}

func (c *Client) postXML(ctx context.Context, endpoint, token string, xml []byte, stage string) (*Response, error) {
	form := url.Values{}
	form.Set("xml", base64.StdEncoding.EncodeToString(xml))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &domain.UpstreamError{Stage: stage, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, raw, err := c.send(req, stage)
	if err != nil {
		return nil, err
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &domain.UpstreamError{Stage: stage, StatusCode: status, Message: "respuesta no es JSON", Err: err}
	}
	return &out, nil
}

// Retrieve descarga el XML averbado del CT-e y lo devuelve indentado.
func (c *Client) Retrieve(ctx context.Context, baseURL, token, documentKey string) ([]byte, error) {
	endpoint := join(baseURL, "/cte/"+url.PathEscape(documentKey)+"/retrieve")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Stage: domain.StageRetrieve, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	status, raw, err := c.send(req, domain.StageRetrieve)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, &domain.UpstreamError{Stage: domain.StageRetrieve, StatusCode: status, Message: strings.TrimSpace(string(raw))}
	}
	return PrettyXML(raw)
}

// PrettyXML reindenta un XML con dos espacios.
func PrettyXML(raw []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimSpace(raw)); err != nil {
		return nil, fmt.Errorf("nddaverba: parsear XML: %w", err)
	}
	doc.Indent(2)
	return doc.WriteToBytes()
}

func (c *Client) send(req *http.Request, stage string) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return 0, nil, &domain.UpstreamError{Stage: stage, Message: "timeout o cancelación", Err: ctxErr}
		}
		return 0, nil, &domain.UpstreamError{Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, &domain.UpstreamError{Stage: stage, StatusCode: resp.StatusCode, Err: err}
	}
	return resp.StatusCode, raw, nil
}

func ok(status int) bool { return status >= 200 && status <= 299 }

func join(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
