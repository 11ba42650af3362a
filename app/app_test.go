package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocinema/gocinema/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", "../etc/"))

	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()

	return out.String(), err
}

func TestConfigDump(t *testing.T) {
	out, err := run(t, "config", "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "GoCinema")

	out, err = run(t, "config", "dump", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Title": "GoCinema"`)

	dumpJSON = false
}

func TestUserCreate(t *testing.T) {
	t.Setenv(config.EnvConfigJSON, `{"DB":{"GormEngine":"sqlite","Path":"file:cli-user-create?mode=memory&cache=shared","MaxOpenConns":1}}`)

	out, err := run(t, "user", "create", "--username", "alice", "--email", "alice@x.com", "--password", "password1", "--admin")
	require.NoError(t, err)
	assert.Contains(t, out, "created user alice")
	assert.Contains(t, out, "admin")

	newUserAdmin = false
}

func TestUserCreateInvalid(t *testing.T) {
	t.Setenv(config.EnvConfigJSON, `{"DB":{"GormEngine":"sqlite","Path":"file:cli-user-invalid?mode=memory&cache=shared","MaxOpenConns":1}}`)

	_, err := run(t, "user", "create", "--username", "bob", "--email", "bob@x.com", "--password", "short")
	require.Error(t, err)
}

func TestRoleSeed(t *testing.T) {
	t.Setenv(config.EnvConfigJSON, `{"DB":{"GormEngine":"sqlite","Path":"file:cli-role-seed?mode=memory&cache=shared","MaxOpenConns":1}}`)

	out, err := run(t, "role", "seed", "critic")
	require.NoError(t, err)
	assert.Contains(t, out, "admin\n")
	assert.Contains(t, out, "user\n")
	assert.Contains(t, out, "critic\n")
}
