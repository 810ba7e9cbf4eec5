package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	got, err := Resolve("purchases.store")
	require.NoError(t, err)
	assert.Equal(t, "/purchases", got)

	got, err = Resolve("sales.update", int64(42))
	require.NoError(t, err)
	assert.Equal(t, "/sales/42", got)

	got, err = Resolve("reports.export", "margin-by-product")
	require.NoError(t, err)
	assert.Equal(t, "/reports/margin-by-product/export", got)
}

func TestResolveErrors(t *testing.T) {
	_, err := Resolve("nope.index")
	assert.ErrorIs(t, err, ErrUnknownRoute)

	_, err = Resolve("customers.destroy")
	assert.ErrorIs(t, err, ErrMissingParam)
}

func TestNamesCoversResources(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "customers.destroy")
	assert.Contains(t, names, "users.index")
	assert.IsIncreasing(t, names)
}
