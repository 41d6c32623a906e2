package seeders

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebridge/tradebridge/app/repositories"
	"github.com/tradebridge/tradebridge/config"
	"github.com/tradebridge/tradebridge/pkg/auth"
)

func TestSeedAdminIsIdempotent(t *testing.T) {
	users := repositories.NewMemory().Users()
	env := Env{Users: users, Seed: config.SeedConfig{AdminEmail: " Admin@Shop.test ", AdminPassword: "changeme"}}

	var out bytes.Buffer
	require.NoError(t, RunAll(context.Background(), env, &out))
	require.NoError(t, RunAll(context.Background(), env, &out))
	assert.Contains(t, out.String(), "Running seeder: admin")

	admins, err := users.ListByRole(context.Background(), auth.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@shop.test", admins[0].Email)

	u, err := users.FindByEmail(context.Background(), "admin@shop.test")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(u.Password, "changeme"))
}

func TestSeedAdminSkipsWithoutEmail(t *testing.T) {
	users := repositories.NewMemory().Users()
	require.NoError(t, SeedAdmin(context.Background(), Env{Users: users}))

	admins, err := users.ListByRole(context.Background(), auth.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestSeedAdminRejectsShortPassword(t *testing.T) {
	env := Env{Users: repositories.NewMemory().Users(), Seed: config.SeedConfig{AdminEmail: "a@b.c", AdminPassword: "x"}}
	assert.Error(t, SeedAdmin(context.Background(), env))
}
