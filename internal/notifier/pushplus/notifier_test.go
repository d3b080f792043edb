package pushplus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebairia/backupwatch/internal/config"
	"github.com/kebairia/backupwatch/internal/logger"
	"github.com/kebairia/backupwatch/internal/notifier"
	"github.com/kebairia/backupwatch/internal/report"
)

const testEndpoint = "https://push.test/send"

func newMocked(t *testing.T, topic string) *Notifier {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	return New(
		config.PushPlusConfig{Token: "tok", Topic: topic, Endpoint: testEndpoint},
		WithHTTPClient(client),
		WithLogger(logger.Nop()),
	)
}

var testMessage = report.Message{Title: "✅ Nextcloud backup succeeded", Body: "<div>ok</div>", Format: report.FormatHTML}

func TestNotify_SendsExpectedPayload(t *testing.T) {
	n := newMocked(t, "ops")

	var got map[string]any
	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			raw, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(raw, &got))
			return httpmock.NewStringResponse(200, `{"code":200,"msg":"请求成功","data":"abc"}`), nil
		})

	require.NoError(t, n.Notify(context.Background(), testMessage))

	assert.Equal(t, map[string]any{
		"token":    "tok",
		"title":    testMessage.Title,
		"content":  testMessage.Body,
		"template": "html",
		"topic":    "ops",
	}, got)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestNotify_SendsNullTopicWhenUnset(t *testing.T) {
	n := newMocked(t, "")

	var got map[string]any
	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(raw, &got)
			return httpmock.NewStringResponse(200, `{"code":200,"msg":"ok"}`), nil
		})

	require.NoError(t, n.Notify(context.Background(), testMessage))
	require.Contains(t, got, "topic")
	assert.Nil(t, got["topic"])
}

func TestNotify_Failures(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		wantInErr string
	}{
		{
			name:      "service code not 200",
			responder: httpmock.NewStringResponder(200, `{"code":903,"msg":"用户token不存在"}`),
			wantInErr: "用户token不存在",
		},
		{
			name:      "service code without message",
			responder: httpmock.NewStringResponder(200, `{"code":500}`),
			wantInErr: "unknown error",
		},
		{
			name:      "http status not 200",
			responder: httpmock.NewStringResponder(502, `bad gateway`),
			wantInErr: "status code 502",
		},
		{
			name:      "body is not json",
			responder: httpmock.NewStringResponder(200, `<html>`),
			wantInErr: "decode response",
		},
		{
			name:      "transport error",
			responder: httpmock.NewErrorResponder(errors.New("connection refused")),
			wantInErr: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newMocked(t, "")
			httpmock.RegisterResponder(http.MethodPost, testEndpoint, tt.responder)

			err := n.Notify(context.Background(), testMessage)

			require.Error(t, err)
			assert.ErrorIs(t, err, notifier.ErrDeliveryFailed)
			assert.Contains(t, err.Error(), tt.wantInErr)
			assert.Equal(t, 1, httpmock.GetTotalCallCount(), "no retry")
		})
	}
}

func TestDecodeResponse_WeakCode(t *testing.T) {
	r, err := decodeResponse([]byte(`{"code":"200","msg":"ok"}`))
	require.NoError(t, err)
	assert.Equal(t, 200, r.Code)
	assert.Equal(t, "ok", r.Msg)
}

func TestNew_DefaultEndpoint(t *testing.T) {
	n := New(config.PushPlusConfig{Token: "tok"})
	assert.Equal(t, config.DefaultPushPlusEndpoint, n.cfg.Endpoint)
	assert.Equal(t, Driver, n.Name())
	assert.Equal(t, report.FormatHTML, n.Format())
}

func TestNew_TimeoutAppliesToDefaultClientOnly(t *testing.T) {
	n := New(config.PushPlusConfig{Token: "tok"}, WithTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, n.client.Timeout)

	shared := &http.Client{}
	n = New(config.PushPlusConfig{Token: "tok"}, WithHTTPClient(shared), WithTimeout(3*time.Second))
	assert.Same(t, shared, n.client)
	assert.Zero(t, shared.Timeout)

	n = New(config.PushPlusConfig{Token: "tok"})
	assert.Equal(t, DefaultTimeout, n.client.Timeout)
}
