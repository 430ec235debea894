package profiles_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Was1f/UrbanFix-sub001/databases/memstore"
	"github.com/Was1f/UrbanFix-sub001/models"
	"github.com/Was1f/UrbanFix-sub001/profiles"
)

func TestResolver_DisplayName(t *testing.T) {
	ctx := context.Background()
	r := profiles.New(memstore.New().Users())

	_, err := r.Register(ctx, "+15550001", "Alice", "alice@example.com")
	require.NoError(t, err)

	name, registered, err := r.DisplayName(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
	assert.True(t, registered)

	name, registered, err = r.DisplayName(ctx, "+15559999")
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousName, name)
	assert.False(t, registered)
}

func TestResolver_RegisterValidation(t *testing.T) {
	r := profiles.New(memstore.New().Users())

	_, err := r.Register(context.Background(), "", "Anonymous", "not-an-email")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"identity", "name", "email"}, verr.Fields)
}

func TestResolver_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	r := profiles.New(memstore.New().Users())

	_, err := r.Register(ctx, "alice", "Alice", "")
	require.NoError(t, err)

	_, err = r.Register(ctx, "alice", "Alice Again", "")
	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.ConflictAlreadyExists, conflict.Reason)
}

func TestResolver_Rename(t *testing.T) {
	ctx := context.Background()
	r := profiles.New(memstore.New().Users())

	_, err := r.Register(ctx, "alice", "Alice", "")
	require.NoError(t, err)

	u, err := r.Rename(ctx, "alice", "Alicia")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.Name)

	_, err = r.Rename(ctx, "ghost", "Casper")
	var nf *models.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = r.Rename(ctx, "alice", "")
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}
