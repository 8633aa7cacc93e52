package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantedFailsClosed(t *testing.T) {
	var nilFlags PermissionFlags
	assert.False(t, nilFlags.Granted(CapViewMembers))

	empty := PermissionFlags{}
	assert.False(t, empty.Granted(CapViewMembers))

	partial := PermissionFlags{CapViewMembers: true}
	assert.True(t, partial.Granted(CapViewMembers))
	assert.False(t, partial.Granted(CapViewServiceStats))

	denied := PermissionFlags{CapViewMembers: false}
	assert.False(t, denied.Granted(CapViewMembers))
}

func TestPermissionFlagsValueAndScan(t *testing.T) {
	flags := PermissionFlags{
		CapViewMembers:      true,
		CapViewServiceStats: false,
	}

	val, err := flags.Value()
	require.NoError(t, err)

	var scanned PermissionFlags
	require.NoError(t, scanned.Scan(val))

	assert.True(t, scanned.Granted(CapViewMembers))
	assert.False(t, scanned.Granted(CapViewServiceStats))
	assert.False(t, scanned.Granted(CapViewEvents))
}

func TestPermissionFlagsScanVariants(t *testing.T) {
	var flags PermissionFlags
	require.NoError(t, flags.Scan(nil))
	assert.NotNil(t, flags)
	assert.False(t, flags.Granted(CapViewMembers))

	require.NoError(t, flags.Scan([]byte(`{"view_members":true}`)))
	assert.True(t, flags.Granted(CapViewMembers))

	require.NoError(t, flags.Scan(`{"view_events":true}`))
	assert.True(t, flags.Granted(CapViewEvents))

	assert.Error(t, flags.Scan(42))
}

func TestNilFlagsValueIsEmptyObject(t *testing.T) {
	var flags PermissionFlags
	val, err := flags.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", val)
}

func TestIsKnownCapability(t *testing.T) {
	for _, c := range AllCapabilities() {
		assert.True(t, IsKnownCapability(c))
	}
	assert.False(t, IsKnownCapability("view_everything"))
}
