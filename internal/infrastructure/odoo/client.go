// Package odoo lee documentos fiscales y líneas de pago de un ERP Odoo vía XML-RPC
// y escribe de vuelta los campos de estado Dominio.
package odoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"

	"github.com/jhoicas/fiscal-bridge/pkg/logger"
)

// ErrAuthentication credenciales rechazadas por Odoo.
var ErrAuthentication = errors.New("odoo: autenticación fallida")

// authTTL tiempo tras el cual se vuelve a autenticar.
const authTTL = 6 * time.Hour

// Client cliente XML-RPC de Odoo (common/authenticate + object/execute_kw).
type Client struct {
	url       string
	db        string
	username  string
	password  string
	transport http.RoundTripper
	log       *logger.Logger

	mu       sync.Mutex
	uid      int64
	object   *xmlrpc.Client
	lastAuth time.Time
}

// NewClient valida la URL y construye el cliente; la autenticación es perezosa.
func NewClient(url, db, username, password string, transport http.RoundTripper, log *logger.Logger) (*Client, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("odoo: URL inválida %q (debe ser http o https)", url)
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		url:       strings.TrimRight(url, "/"),
		db:        db,
		username:  username,
		password:  password,
		transport: transport,
		log:       log.Component("odoo"),
	}, nil
}

// connection devuelve uid y cliente object, autenticando si hace falta.
func (c *Client) connection(ctx context.Context) (int64, *xmlrpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uid != 0 && c.object != nil && time.Since(c.lastAuth) < authTTL {
		return c.uid, c.object, nil
	}
	if c.object != nil {
		_ = c.object.Close()
		c.object = nil
	}

	common, err := xmlrpc.NewClient(c.url+"/xmlrpc/2/common", c.transport)
	if err != nil {
		return 0, nil, fmt.Errorf("odoo: conectar common: %w", err)
	}
	defer common.Close()

	var uid int64
	args := []any{c.db, c.username, c.password, map[string]any{}}
	if err := call(ctx, common, "authenticate", args, &uid); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if uid == 0 {
		return 0, nil, ErrAuthentication
	}

	object, err := xmlrpc.NewClient(c.url+"/xmlrpc/2/object", c.transport)
	if err != nil {
		return 0, nil, fmt.Errorf("odoo: conectar object: %w", err)
	}
	c.uid, c.object, c.lastAuth = uid, object, time.Now()
	c.log.Info().Int64("uid", uid).Str("db", c.db).Msg("autenticado en Odoo")
	return uid, object, nil
}

// Execute llama execute_kw(model, method, args, kwargs).
func (c *Client) Execute(ctx context.Context, model, method string, args []any, kwargs map[string]any, reply any) error {
	uid, object, err := c.connection(ctx)
	if err != nil {
		return err
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	params := []any{c.db, uid, c.password, model, method, args, kwargs}
	if err := call(ctx, object, "execute_kw", params, reply); err != nil {
		c.log.Error().Err(err).Str("model", model).Str("method", method).Msg("llamada XML-RPC fallida")
		return fmt.Errorf("odoo: %s.%s: %w", model, method, err)
	}
	return nil
}

// SearchRead ejecuta search_read con el dominio y los campos indicados.
func (c *Client) SearchRead(ctx context.Context, model string, domain []any, fields []string, order string) ([]map[string]any, error) {
	kwargs := map[string]any{"fields": fields}
	if order != "" {
		kwargs["order"] = order
	}
	var rows []map[string]any
	if err := c.Execute(ctx, model, "search_read", []any{domain}, kwargs, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Write actualiza los registros ids con values.
func (c *Client) Write(ctx context.Context, model string, ids []int64, values map[string]any) error {
	var ok bool
	return c.Execute(ctx, model, "write", []any{ids, values}, nil, &ok)
}

// Close libera la conexión object.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.object == nil {
		return nil
	}
	err := c.object.Close()
	c.object = nil
	return err
}

// call ejecuta la llamada bloqueante respetando la cancelación del contexto:
// kolo/xmlrpc no recibe context, así que la llamada corre en una goroutine.
func call(ctx context.Context, client *xmlrpc.Client, method string, args, reply any) error {
	done := make(chan error, 1)
	go func() { done <- client.Call(method, args, reply) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
