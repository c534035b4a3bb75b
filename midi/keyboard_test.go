package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyboardController_WithoutPort(t *testing.T) {
	kb, err := NewKeyboardController("virtual", nil, func([]byte) {})
	require.NoError(t, err)

	var c Controller = kb
	assert.Equal(t, "virtual", c.ID())
	assert.Equal(t, ControllerKeyboard, c.Type())
	assert.Zero(t, c.Received())
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close(), "close is idempotent")
}

func TestDeviceManager_Defaults(t *testing.T) {
	dm := NewDeviceManager(NewRegistry(), func([]byte) {}, DefaultExcluded, 0)
	assert.Equal(t, DefaultExcluded, dm.excluded)
	assert.NotZero(t, dm.pollRate)
	assert.Empty(t, dm.Controllers())
}
