package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteList(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"route:list"})

	require.NoError(t, root.Execute())
	assert.Regexp(t, `POST\s+/api/signup\s+auth.signup`, out.String())
	assert.Regexp(t, `DELETE\s+/api/products/\{id\}\s+products.destroy`, out.String())
}

func TestCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "route:list", "migrate", "migrate:rollback", "migrate:status", "seed"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("memory"))
}
