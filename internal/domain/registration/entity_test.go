package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistration(t *testing.T) {
	reg := NewRegistration("visitor-1", "instance-1", "車椅子対応をお願いします")

	require.NotNil(t, reg)
	assert.Equal(t, "visitor-1", reg.VisitorID)
	assert.Equal(t, "instance-1", reg.EventInstanceID)
	assert.Equal(t, StatusRegistered, reg.Status)
	assert.False(t, reg.RegistrationDate.IsZero())
}

func TestRegistration_Cancel(t *testing.T) {
	t.Run("registeredからcancelledへ遷移できる", func(t *testing.T) {
		reg := NewRegistration("visitor-1", "instance-1", "")
		require.NoError(t, reg.Cancel())
		assert.Equal(t, StatusCancelled, reg.Status)
	})

	t.Run("二重キャンセルはエラー", func(t *testing.T) {
		reg := NewRegistration("visitor-1", "instance-1", "")
		require.NoError(t, reg.Cancel())
		assert.ErrorIs(t, reg.Cancel(), ErrAlreadyCancelled)
	})
}
