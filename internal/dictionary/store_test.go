package dictionary

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/nlstn/go-cmisql/internal/observability"
)

func openTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	store, err := OpenStore(DriverSQLite, dsn, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSaveLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	m, err := LoadModel(strings.NewReader(testModel))
	require.NoError(t, err)
	reg := NewRegistry()
	require.NoError(t, m.Apply(reg))
	require.NoError(t, store.Save(ctx, reg))

	loaded := NewRegistry()
	require.NoError(t, store.Load(ctx, loaded))
	assert.Equal(t, reg.Properties(), loaded.Properties())
	assert.Equal(t, reg.DataTypes(), loaded.DataTypes())
	assert.Equal(t, reg.Namespaces(), loaded.Namespaces())
}

func TestStoreSaveIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	reg := newContentRegistry(t)
	require.NoError(t, store.Save(ctx, reg))

	require.NoError(t, reg.RegisterProperty(PropertyDefinition{
		Name:        NewQName(ContentNamespace, "name"),
		DataType:    DataTypeMLText,
		Tokenised:   TokeniseFalse,
		MultiValued: true,
	}))
	require.NoError(t, store.Save(ctx, reg))

	loaded := NewRegistry()
	require.NoError(t, store.Load(ctx, loaded))
	require.Len(t, loaded.Properties(), 2)
	def, ok := loaded.Property(NewQName(ContentNamespace, "name"))
	require.True(t, ok)
	assert.Equal(t, DataTypeMLText, def.DataType)
	assert.Equal(t, TokeniseFalse, def.Tokenised)
	assert.True(t, def.MultiValued)
}

func TestStoreLoadFailureLeavesRegistryUnchanged(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newContentRegistry(t)))
	require.NoError(t, store.db.Create(&propertyRecord{
		URI:           ContentNamespace,
		Local:         "zzz",
		DataTypeURI:   DataTypeText.URI,
		DataTypeLocal: DataTypeText.Local,
		Tokenised:     "never",
	}).Error)

	reg := NewRegistry()
	err := store.Load(ctx, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tokenisation mode")

	assert.Empty(t, reg.Properties())
	assert.Equal(t, NewRegistry().Namespaces(), reg.Namespaces())
	_, err = reg.NamespaceURI("cm")
	assert.ErrorIs(t, err, ErrUnknownPrefix)
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"", DriverSQLite, DriverPostgres} {
		d, err := Dialector(driver, "dsn")
		require.NoError(t, err)
		assert.NotNil(t, d)
	}
	_, err := Dialector("oracle", "dsn")
	assert.Error(t, err)
}

func TestStorePhaseTimings(t *testing.T) {
	store := openTestStore(t, WithStorePhaseTimings())
	ctx, timings := observability.ContextWithPhaseTimings(context.Background())

	require.NoError(t, store.Save(ctx, newContentRegistry(t)))
	require.NoError(t, store.Load(ctx, NewRegistry()))

	assert.Greater(t, int64(observability.PhaseDuration(timings, observability.PhaseDB)), int64(0))
	assert.Contains(t, timings.String(), observability.PhaseDB)
}

func TestStoreWithTracing(t *testing.T) {
	cfg := observability.NewConfig(
		observability.WithTracerProvider(tracenoop.NewTracerProvider()),
		observability.WithDetailedDBTracing(),
	)
	require.NoError(t, cfg.Initialize())
	store := openTestStore(t, WithStoreObservability(cfg))
	ctx := context.Background()

	reg := newContentRegistry(t)
	require.NoError(t, store.Save(ctx, reg))
	loaded := NewRegistry()
	require.NoError(t, store.Load(ctx, loaded))
	assert.Equal(t, reg.Properties(), loaded.Properties())
}
