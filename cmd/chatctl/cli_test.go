package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/roomchat/server/internal/auth"
	"codeberg.org/roomchat/server/internal/storage"
)

// runs chatctl against a shared in-memory store, recording the connection string it was given
type testCLI struct {
	store      *storage.Client
	connString string
}

func newTestCLI() *testCLI {
	return &testCLI{store: storage.NewMemoryClient()}
}

func (tc *testCLI) execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmdWithApp(&app{
		cfg:    viper.New(),
		hasher: auth.NewPasswordHasherWithCost(bcrypt.MinCost),
		open: func(_ context.Context, connString string) (*storage.Client, error) {
			tc.connString = connString
			return tc.store, nil
		},
	})

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestUserAdd(t *testing.T) {
	tc := newTestCLI()

	stdout, _, err := tc.execute(t, "user", "add", "--username", "alice", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, stdout, "created user alice")

	user, err := tc.store.Users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$2a$"))
	assert.True(t, auth.NewPasswordHasher().Verify("secret", user.PasswordHash))

	_, _, err = tc.execute(t, "user", "add", "-u", "alice", "-p", "other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestUserAddRequiresFlags(t *testing.T) {
	tc := newTestCLI()

	_, _, err := tc.execute(t, "user", "add", "--username", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "password" not set`)

	_, _, err = tc.execute(t, "user", "add", "--username", "  ", "--password", "x")
	require.Error(t, err)
}

func TestRoomAddAndList(t *testing.T) {
	tc := newTestCLI()

	stdout, _, err := tc.execute(t, "room", "add", "--id", "general", "--name", "General", "--image", "g.png")
	require.NoError(t, err)
	assert.Contains(t, stdout, "created room general (General)")

	stdout, _, err = tc.execute(t, "room", "add", "--name", "Random")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(Random)")

	_, _, err = tc.execute(t, "room", "add", "--id", "general", "--name", "Again")
	require.Error(t, err)

	stdout, _, err = tc.execute(t, "room", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "general")
	assert.Contains(t, stdout, "g.png")
	assert.Contains(t, stdout, "Random")
}

func TestDatabaseURLFromFlagAndEnv(t *testing.T) {
	tc := newTestCLI()

	t.Setenv("DATABASE_URL", "postgres://env/chat")

	_, _, err := tc.execute(t, "room", "list")
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/chat", tc.connString)

	_, _, err = tc.execute(t, "room", "list", "--database-url", "postgres://flag/chat")
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag/chat", tc.connString)
}

func TestOpenDatabaseRequiresURL(t *testing.T) {
	_, err := openDatabase(context.Background(), "")
	assert.ErrorIs(t, err, errNoDatabase)
}

func TestHash(t *testing.T) {
	tc := newTestCLI()

	stdout, _, err := tc.execute(t, "hash", "--password", "secret")
	require.NoError(t, err)

	hash := strings.TrimSpace(stdout)
	assert.True(t, auth.NewPasswordHasher().Verify("secret", hash))

	stdout, _, err = tc.execute(t, "hash", "--password", "secret", "--legacy-salt", "abcdefghijklmnopqrst")
	require.NoError(t, err)

	legacy := strings.TrimSpace(stdout)
	assert.Equal(t, auth.LegacyHash("secret", "abcdefghijklmnopqrst"), legacy)
	assert.True(t, auth.NewPasswordHasher().Verify("secret", legacy))

	_, _, err = tc.execute(t, "hash", "--password", "secret", "--legacy-salt", "short")
	assert.Error(t, err)
}
