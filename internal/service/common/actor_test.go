//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"
	"os/user"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDetectActor checks the local actor renders as user@host in store logs.
func TestDetectActor(t *testing.T) {
	t.Parallel()

	hostname, err := os.Hostname()
	require.NoError(t, err)

	currentUser, err := user.Current()
	require.NoError(t, err)

	actor, err := DetectActor()
	require.NoError(t, err)
	require.Equal(t, currentUser.Username+"@"+hostname, actor.String())
}

// TestWithActor_SendsWireActor checks the detected actor reaches requests intact.
func TestWithActor_SendsWireActor(t *testing.T) {
	t.Parallel()

	actor, err := DetectActor()
	require.NoError(t, err)

	c := &Client{}
	WithActor(actor)(c)
	require.Equal(t, actor.Hostname, c.actor.GetHostname())
	require.Equal(t, actor.Username, c.actor.GetUsername())

	WithActor(nil)(c)
	require.NotNil(t, c.actor, "nil actor must not clear a configured one")
}
