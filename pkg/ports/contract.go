package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapflow/zapflow/pkg/domain"
)

// RunFlowStoreContract runs a suite of tests to verify that a FlowStore
// implementation adheres to the defined interface contract.
func RunFlowStoreContract(t *testing.T, store FlowStore) {
	ctx := context.Background()
	flowID := "contract-test-flow-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		spec := domain.NewSpec()
		spec.Screens[0].Title = domain.LiteralText("Boas-vindas")
		spec.Screens[0].Data = map[string]any{"foo": "bar"}

		err := store.Save(ctx, flowID, spec)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Boas-vindas", loaded.Screens[0].Title.Display())
		assert.Equal(t, "bar", loaded.Screens[0].Data["foo"])
		assert.Equal(t, spec.DefaultNext, loaded.DefaultNext)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, flowID, domain.NewSpec())
		require.NoError(t, err)

		err = store.Delete(ctx, flowID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound, "Load after Delete should return ErrFlowNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := flowID + "-1"
		id2 := flowID + "-2"
		_ = store.Save(ctx, id1, domain.NewSpec())
		_ = store.Save(ctx, id2, domain.NewSpec())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		flows, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, flows, id1)
		assert.Contains(t, flows, id2)
	})
}
