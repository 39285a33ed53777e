//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusServer(t *testing.T) {
	const cmdName = "api-server"

	ctx := t.Context()

	istat := initInfra(t, cmdName)
	defer istat.Close(ctx)

	istat.PreparePostgres(t)
	istat.PrepareConfig(t)

	commandCtx, cancelCommand := context.WithTimeout(ctx, 30*time.Second)
	defer cancelCommand()

	cmd := istat.Command(t, commandCtx, cmdName)
	require.NoError(t, cmd.Start(), "could not start command")
	defer func() {
		cancelCommand()
		_ = cmd.Wait()
	}()

	// give the server some time to start before running the test
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://localhost:8888/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 10*time.Second, 100*time.Millisecond, "could not connect to the status server")

	for _, endpoint := range []string{"version", "probe/readiness", "probe/liveness"} {
		t.Run(endpoint, func(t *testing.T) {
			resp, err := http.Get("http://localhost:8888/" + endpoint)
			require.NoError(t, err, "could not send request")
			defer resp.Body.Close()

			got, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "could not read response body")

			var js json.RawMessage
			assert.NoError(t, json.Unmarshal(got, &js), "response is not valid json: %s", got)
		})
	}
}
