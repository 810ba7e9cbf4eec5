package categories

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimarket/minimarket/internal/masterdata/shared"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

type mockRepo struct {
	created   Category
	deleteErr error
	createErr error
}

func (m *mockRepo) List(context.Context, shared.ListFilters) ([]Category, int, error) {
	return nil, 0, nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (Category, error) {
	return Category{ID: id}, nil
}

func (m *mockRepo) Create(_ context.Context, c Category) (Category, error) {
	if m.createErr != nil {
		return Category{}, m.createErr
	}
	c.ID = 1
	m.created = c
	return c, nil
}

func (m *mockRepo) Update(_ context.Context, c Category) (Category, error) {
	return c, nil
}

func (m *mockRepo) Delete(context.Context, int64) error {
	return m.deleteErr
}

func TestCreateTrimsAndValidates(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CategoryForm{Name: "   "})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "is required", fields["name"])

	c, err := svc.Create(context.Background(), CategoryForm{Name: "  Obat  ", Description: " bebas "})
	require.NoError(t, err)
	assert.Equal(t, "Obat", c.Name)
	assert.Equal(t, "bebas", repo.created.Description)
}

func TestCreateDuplicateName(t *testing.T) {
	svc := NewService(&mockRepo{createErr: &pgconn.PgError{Code: "23505"}})
	_, err := svc.Create(context.Background(), CategoryForm{Name: "Obat"})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "name")
}

func TestDeleteInUse(t *testing.T) {
	svc := NewService(&mockRepo{deleteErr: &pgconn.PgError{Code: "23503"}})
	err := svc.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, shared.ErrInUse)
	assert.ErrorIs(t, err, httpx.ErrConflict)

	assert.ErrorIs(t, svc.Delete(context.Background(), 0), httpx.ErrValidation)
}
