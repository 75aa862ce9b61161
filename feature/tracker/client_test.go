package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gearsync/core/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	c := NewClient(&Config{Name: "test", BaseURL: url, Token: "tok", PageSize: 2, TimeoutSeconds: 5}, zap.NewNop())
	c.retry = retry.Config{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, MaxAttempts: 2}
	return c
}

func TestGear_FollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gear/", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		switch r.URL.Query().Get("page") {
		case "":
			require.Equal(t, "2", r.URL.Query().Get("page_size"))
			require.Equal(t, "deployed", r.URL.Query().Get("state"))
			fmt.Fprintf(w, `{"data": {"results": [
				{"id": "g1", "display_id": "D1", "status": "deployed", "last_updated": "2024-01-01T00:00:00Z", "devices": [], "manufacturer": "edgetech"},
				{"id": "g2", "display_id": "D2", "status": "deployed", "last_updated": "2024-01-01T00:00:00Z", "devices": [], "manufacturer": "edgetech"}
			], "next": "%s/gear/?page=2"}}`, srv.URL)
		case "2":
			fmt.Fprint(w, `{"data": {"results": [
				{"id": "g3", "display_id": "D3", "status": "hauled", "last_updated": "2024-01-02T00:00:00Z",
				 "devices": [{"device_id": "dev3", "mfr_device_id": "MFR3", "label": "a",
				              "location": {"latitude": 44.1, "longitude": -66.2},
				              "last_updated": "2024-01-02T00:00:00Z", "last_deployed": null}],
				 "manufacturer": "rmwhub", "additional": {"rmwhub_set_id": "S3"}}
			], "next": null}}`)
		default:
			t.Fatalf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	gear, err := testClient(t, srv.URL).Gear(context.Background(), GearDeployed)
	require.NoError(t, err)
	require.Len(t, gear, 3)

	assert.Equal(t, "g1", gear[0].ID)
	assert.Equal(t, "S3", gear[2].HubSetID())
	assert.True(t, gear[2].IsHubMirror())
	require.Len(t, gear[2].Devices, 1)
	assert.Equal(t, "MFR3", gear[2].Devices[0].MatchID())
	assert.Nil(t, gear[2].Devices[0].LastDeployed)
}

func TestGear_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Gear(context.Background(), "")
	assert.Error(t, err)
}

func TestCreateGear(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/gear/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := testClient(t, srv.URL).CreateGear(context.Background(), map[string]any{"set_id": "S1"})
	require.NoError(t, err)
	assert.Equal(t, "S1", got["set_id"])
}

func TestUpdateGear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/gear/g1/", r.URL.Path)
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	err := testClient(t, srv.URL).UpdateGear(context.Background(), "g1", map[string]any{"status": "hauled"})
	require.NoError(t, err)
}

func TestUpdateGear_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := testClient(t, srv.URL).UpdateGear(context.Background(), "missing", nil)
	assert.Error(t, err)
}
