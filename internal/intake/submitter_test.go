package intake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediation-cms/internal/platform/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSubmitter(t *testing.T) {
	var gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/submit-service-request", r.URL.Path)
		gotKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"submissionId":"abc"}`))
	}))
	defer srv.Close()

	client, err := httpclient.New(srv.URL, time.Second)
	require.NoError(t, err)

	id, err := NewHTTPSubmitter(client).SubmitServiceRequest(context.Background(), Payload{
		ServiceType:    "Mediation",
		FormData:       map[string]any{"firstName": "Jane"},
		IdempotencyKey: "k-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
	assert.Equal(t, "k-1", gotKey)
	assert.Equal(t, "Mediation", gotBody["serviceType"])
}

func TestHTTPSubmitter_ServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Missing serviceType or formData"}`))
	}))
	defer srv.Close()

	client, err := httpclient.New(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = NewHTTPSubmitter(client).SubmitServiceRequest(context.Background(), Payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}
