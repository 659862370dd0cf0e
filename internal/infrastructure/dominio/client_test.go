package dominio_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/dominio"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/settings"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newClient(t *testing.T, h http.Handler) *dominio.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return dominio.NewClient(settings.DominioEndpoints{
		TokenURL:          srv.URL + "/token",
		KeyIntegrationURL: srv.URL + "/activation",
		CheckCustomerURL:  srv.URL + "/activation/info",
		XMLURL:            srv.URL + "/xml",
		Audience:          "aud-1",
		Cookie:            "did=abc",
	}, dominio.WithHTTPClient(srv.Client()))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var session = dominio.Session{IntegrationKey: "K", AccessToken: "T"}

// ──────────────────────────────────────────────────────────────────────────────
// Token
// ──────────────────────────────────────────────────────────────────────────────

func TestToken_EnviaFormularioClientCredentials(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id-1", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret-1", r.PostForm.Get("client_secret"))
		assert.Equal(t, "aud-1", r.PostForm.Get("audience"))
		assert.Equal(t, "did=abc", r.Header.Get("Cookie"))
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "T", "expires_in": 3600})
	}))

	tok, err := c.Token(context.Background(), entity.ClientCredentials{ClientID: "id-1", ClientSecret: "secret-1"})
	require.NoError(t, err)
	assert.Equal(t, "T", tok.AccessToken)
}

func TestToken_RespuestaNoExitosa_UpstreamError(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "access_denied", "error_description": "cliente inválido"})
	}))

	_, err := c.Token(context.Background(), entity.ClientCredentials{ClientID: "x"})

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, domain.StageToken, ue.Stage)
	assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
	assert.Equal(t, "access_denied", ue.Message)
}

// ──────────────────────────────────────────────────────────────────────────────
// Activación y cliente
// ──────────────────────────────────────────────────────────────────────────────

func TestActivate_EnviaBearerYClaveDeIntegracion(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/activation", r.URL.Path)
		assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		assert.Equal(t, "env-key", r.Header.Get("x-integration-key"))
		writeJSON(w, http.StatusOK, map[string]string{"integrationKey": "K"})
	}))

	s, err := c.Activate(context.Background(), "T", "env-key")
	require.NoError(t, err)
	assert.Equal(t, dominio.Session{IntegrationKey: "K", AccessToken: "T"}, *s)
}

func TestActivate_SinIntegrationKey_Error(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	}))

	_, err := c.Activate(context.Background(), "T", "env-key")
	assert.Equal(t, domain.StageActivation, domain.UpstreamStage(err))
}

func TestCheckCustomer_DevuelveInformacion(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/activation/info", r.URL.Path)
		assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		assert.Equal(t, "env-key", r.Header.Get("x-integration-key"))
		writeJSON(w, http.StatusOK, map[string]any{"status": "ACTIVE", "cnpj": "123"})
	}))

	info, err := c.CheckCustomer(context.Background(), "T", "env-key")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", info["status"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Envío
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitXML_MultipartConArchivoYQuery(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/xml", r.URL.Path)
		assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		assert.Equal(t, "K", r.Header.Get("x-integration-key"))

		mr, err := r.MultipartReader()
		require.NoError(t, err)

		part, err := mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "file[]", part.FormName())
		assert.Equal(t, "document-1.xml", part.FileName())
		assert.Equal(t, "application/xml", part.Header.Get("Content-Type"))
		content, _ := io.ReadAll(part)
		assert.Equal(t, "<nfeProc/>", string(content))

		part, err = mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "query", part.FormName())
		assert.Equal(t, "application/json", part.Header.Get("Content-Type"))
		query, _ := io.ReadAll(part)
		assert.JSONEq(t, `{"boxe/File": true}`, string(query))

		writeJSON(w, http.StatusOK, map[string]any{"id": 42})
	}))

	id, err := c.SubmitXML(context.Background(), session, "document-1.xml", []byte("<nfeProc/>"), true)
	require.NoError(t, err)
	assert.Equal(t, "42", id, "los ids numéricos se normalizan a string")
}

func TestSubmitXML_ErrorDeServidor(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 500), http.StatusInternalServerError)
	}))

	_, err := c.SubmitXML(context.Background(), session, "a.xml", []byte("<a/>"), false)

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, domain.StageSubmit, ue.Stage)
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	assert.LessOrEqual(t, len(ue.Message), 303, "el mensaje del upstream se trunca")
}

func TestSubmitXML_MensajeLargoSeRecortaSinPartirCaracteres(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("não ", 200), http.StatusBadGateway)
	}))

	_, err := c.SubmitXML(context.Background(), session, "a.xml", []byte("<a/>"), false)

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.True(t, utf8.ValidString(ue.Message), "el recorte no debe partir runas multibyte")
	assert.Equal(t, 303, utf8.RuneCountInString(ue.Message))
	assert.True(t, strings.HasSuffix(ue.Message, "..."))
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado
// ──────────────────────────────────────────────────────────────────────────────

func TestFetchStatus_ParseaPrimerArchivo(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/xml/42", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "tx-42",
			"filesExpanded": []any{
				map[string]any{"apiStatus": map[string]string{"code": "SA2", "message": "Armazenado"}},
			},
		})
	}))

	st, err := c.FetchStatus(context.Background(), session, "42")
	require.NoError(t, err)
	assert.Equal(t, "tx-42", st.TransactionID())
	first, ok := st.First()
	require.True(t, ok)
	assert.Equal(t, dominio.APIStatus{Code: "SA2", Message: "Armazenado"}, first)
}

func TestFetchStatus_SinArchivos_Error(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "tx", "filesExpanded": []any{}})
	}))

	_, err := c.FetchStatus(context.Background(), session, "42")
	assert.Equal(t, domain.StageStatus, domain.UpstreamStage(err))
}

func TestFetchStatus_ContextoCancelado(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchStatus(ctx, session, "42")

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, context.Canceled)
}
