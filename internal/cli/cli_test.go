package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"jobsite-timeclock/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	runErr := fn()
	os.Stdout = orig
	require.NoError(t, w.Close())

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String(), runErr
}

func TestTokenCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
jwt:
  secret: cli-test-secret
  issuer: cli-test
database:
  driver: sqlite
  path: `+filepath.Join(dir, "db.sqlite")+`
`), 0o600))

	rootCmd.SetArgs([]string{"token", "worker-7", "--role", "manager", "--config", cfgPath, "--json"})
	out, err := captureStdout(t, rootCmd.Execute)
	require.NoError(t, err)

	var got struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "worker-7", got.UserID)
	assert.Equal(t, "approver", got.Role)

	claims, err := util.ParseToken("cli-test-secret", got.Token)
	require.NoError(t, err)
	assert.Equal(t, "worker-7", claims.UserID)
	assert.Equal(t, "cli-test", claims.Issuer)
}

func TestTokenCommand_RequiresUser(t *testing.T) {
	rootCmd.SetArgs([]string{"token"})
	err := rootCmd.Execute()
	require.Error(t, err)
}
