package provider_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/stretchr/testify/require"

	"github.com/YohanTz/starknet-query/provider"
)

func versionServer(t *testing.T, method, version string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.Unmarshal(body, &req))

		if req.Method == method {
			fmt.Fprintf(w, `{"jsonrpc": "2.0", "result": %q, "id": 1}`, version)

			return
		}
		fmt.Fprint(w, `{"jsonrpc": "2.0", "error": {"code": -32601, "message": "Method not found"}, "id": 1}`)
	}))
	t.Cleanup(server.Close)

	return server
}

func TestDetectNodeType(t *testing.T) {
	logger := junoUtils.NewNopZapLogger()

	t.Run("Recognizes a juno node", func(t *testing.T) {
		server := versionServer(t, "juno_version", "0.15.1")
		require.Equal(t, provider.Juno, provider.DetectNodeType(server.URL, logger))
	})

	t.Run("Recognizes a pathfinder node", func(t *testing.T) {
		server := versionServer(t, "pathfinder_version", "0.20.3")
		require.Equal(t, provider.Pathfinder, provider.DetectNodeType(server.URL, logger))
	})

	t.Run("Anything else is reported as other", func(t *testing.T) {
		server := versionServer(t, "different_version", "1.0.0")
		require.Equal(t, provider.Other, provider.DetectNodeType(server.URL, logger))
	})

	t.Run("A garbage version string is not a match", func(t *testing.T) {
		server := versionServer(t, "juno_version", "not a version")
		require.Equal(t, provider.Other, provider.DetectNodeType(server.URL, logger))
	})
}

func TestNodeTypeString(t *testing.T) {
	require.Equal(t, "juno", provider.Juno.String())
	require.Equal(t, "pathfinder", provider.Pathfinder.String())
	require.Equal(t, "other", provider.Other.String())
}
