package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireProjectPath(t *testing.T) {
	cmd := &cobra.Command{Use: "load <project_path>"}

	t.Run("returns error when no args", func(t *testing.T) {
		err := RequireProjectPath(cmd, []string{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required argument: <project_path>")
		assert.Contains(t, err.Error(), "Example:")
	})

	t.Run("returns nil when arg provided", func(t *testing.T) {
		assert.NoError(t, RequireProjectPath(cmd, []string{"./cricket"}))
	})

	t.Run("returns error when too many args", func(t *testing.T) {
		err := RequireProjectPath(cmd, []string{"./cricket", "./loans"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accepts 1 arg")
	})
}

func TestOptionalVariant(t *testing.T) {
	cmd := &cobra.Command{Use: "schema [variant]"}

	assert.NoError(t, OptionalVariant(cmd, nil))
	assert.NoError(t, OptionalVariant(cmd, []string{"loan"}))
	assert.Error(t, OptionalVariant(cmd, []string{"loan", "cricket"}))
}
