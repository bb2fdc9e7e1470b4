package session

import (
	"context"
	"testing"
	"time"

	"github.com/openfleet/fleetgate/internal/common/cnst"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	sess := New(3, RoleFleetManager, 12, "alice", time.Hour)
	require.NoError(t, s.Save(ctx, sess))

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, uint(3), got.TenantAccountID)
	assert.Equal(t, RoleFleetManager, got.Role)
	assert.Equal(t, uint(12), got.SubjectID)
	assert.Equal(t, "alice", got.SubjectName)

	require.NoError(t, s.Delete(ctx, sess.ID))
	_, err = s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, cnst.ErrSessionNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	sess := New(1, RoleDriver, 5, "bob", -time.Second)
	require.NoError(t, s.Save(ctx, sess))

	_, err := s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, cnst.ErrSessionNotFound)
}

func TestMemoryStore_UnknownID(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, cnst.ErrSessionNotFound)

	// deleting an unknown id is fine
	assert.NoError(t, s.Delete(context.Background(), "no-such-session"))
}

func TestSession_ActorID(t *testing.T) {
	owner := New(1, RoleTenantOwner, 0, "acme", time.Hour)
	assert.Equal(t, int64(-1), owner.ActorID())

	manager := New(1, RoleFleetManager, 7, "alice", time.Hour)
	assert.Equal(t, int64(7), manager.ActorID())

	super := New(1, RoleSuperadmin, 0, "Superadmin", time.Hour)
	assert.Equal(t, int64(-1), super.ActorID())
}

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RoleTenantOwner, RoleFleetManager, RoleDriver, RoleSuperadmin} {
		assert.Equal(t, r, ParseRole(r.String()))
	}
	assert.Equal(t, RoleUnknown, ParseRole("root"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
}
