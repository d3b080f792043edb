package vault

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddr = "http://vault.test:8200"

func newMockedClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)
	c, err := NewClient(context.Background(),
		append([]Option{WithAddress(testAddr), WithToken("root"), WithHTTPClient(client)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestReadField_KVv2(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, testAddr+"/v1/secret/data/backupwatch",
		httpmock.NewStringResponder(200, `{"data":{"data":{"token":"pp-123"},"metadata":{"version":1}}}`))

	token, err := c.ReadField(context.Background(), "secret/data/backupwatch", "token")
	require.NoError(t, err)
	assert.Equal(t, "pp-123", token)
}

func TestReadField_KVv1(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, testAddr+"/v1/kv/backupwatch",
		httpmock.NewStringResponder(200, `{"data":{"pushplus":"pp-456"}}`))

	token, err := c.ReadField(context.Background(), "kv/backupwatch", "pushplus")
	require.NoError(t, err)
	assert.Equal(t, "pp-456", token)
}

func TestReadField_MissingField(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, testAddr+"/v1/kv/backupwatch",
		httpmock.NewStringResponder(200, `{"data":{"other":"x"}}`))

	_, err := c.ReadField(context.Background(), "kv/backupwatch", "token")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestFieldFromData(t *testing.T) {
	_, err := fieldFromData(map[string]any{"token": 12}, "p", "token")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	v, err := fieldFromData(map[string]any{"token": "abc"}, "p", "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestNewClient_AppRoleLogin(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodPut, testAddr+"/v1/auth/approle/role/backupwatch/secret-id",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "root", req.Header.Get("X-Vault-Token"))
			return httpmock.NewStringResponse(200, `{"data":{"secret_id":"sid-1","secret_id_accessor":"acc"}}`), nil
		})

	var login map[string]any
	httpmock.RegisterResponder(http.MethodPut, testAddr+"/v1/auth/approle/login",
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&login); err != nil {
				return httpmock.NewStringResponse(400, `{"errors":["bad body"]}`), nil
			}
			return httpmock.NewStringResponse(200, `{"auth":{"client_token":"s.approle","lease_duration":3600}}`), nil
		})

	httpmock.RegisterResponder(http.MethodGet, testAddr+"/v1/kv/backupwatch",
		func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("X-Vault-Token") != "s.approle" {
				return httpmock.NewStringResponse(403, `{"errors":["permission denied"]}`), nil
			}
			return httpmock.NewStringResponse(200, `{"data":{"token":"pp-789"}}`), nil
		})

	c, err := NewClient(context.Background(),
		WithAddress(testAddr),
		WithToken("root"),
		WithHTTPClient(client),
		WithAppRole("role-123", "backupwatch"),
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"role_id": "role-123", "secret_id": "sid-1"}, login)

	token, err := c.ReadField(context.Background(), "kv/backupwatch", "token")
	require.NoError(t, err)
	assert.Equal(t, "pp-789", token)
}

func TestNewClient_AppRoleWithoutSecretID(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodPut, testAddr+"/v1/auth/approle/role/backupwatch/secret-id",
		httpmock.NewStringResponder(200, `{"data":{}}`))

	_, err := NewClient(context.Background(),
		WithAddress(testAddr),
		WithToken("root"),
		WithHTTPClient(client),
		WithAppRole("role-123", "backupwatch"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no secret_id returned")
	assert.Zero(t, httpmock.GetCallCountInfo()["PUT "+testAddr+"/v1/auth/approle/login"])
}
