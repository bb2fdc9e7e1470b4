package auth

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openfleet/fleetgate/internal/apiserver/database"
	"github.com/openfleet/fleetgate/internal/auth/jwt"
	"github.com/openfleet/fleetgate/internal/auth/session"
	"github.com/openfleet/fleetgate/internal/common/config"
	"github.com/openfleet/fleetgate/internal/common/errorx"
	"github.com/openfleet/fleetgate/internal/tenant"
	"github.com/openfleet/fleetgate/internal/vault"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db       database.Database
	cipher   *vault.Cipher
	conn     *tenant.Connector
	sessions session.Store
	authn    *Authenticator
	cfg      *config.APIServerConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewDatabase(&config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(dir, "control.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cipher, err := vault.NewCipher(config.CipherConfig{
		Key: base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
		IV:  base64.StdEncoding.EncodeToString([]byte("fedcba9876543210")),
	})
	require.NoError(t, err)

	v := vault.New(db, cipher)
	cfg := &config.APIServerConfig{
		Tenant:  config.TenantConfig{PanelAccountID: 1},
		Session: config.SessionConfig{Type: "memory", TTL: time.Hour},
	}
	opener := func(dsn string) gorm.Dialector {
		name := dsn
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		if i := strings.Index(name, "?"); i >= 0 {
			name = name[:i]
		}
		return sqlite.Open(filepath.Join(dir, name+".db"))
	}
	conn := tenant.NewConnectorWithOpener(v, cfg.Tenant, opener, zap.NewNop())

	sessions := session.NewMemoryStore()
	jwtSvc, err := jwt.NewService(jwt.Config{
		SecretKey: "0123456789abcdef0123456789abcdef",
		Duration:  time.Hour,
	})
	require.NoError(t, err)

	return &fixture{
		db:       db,
		cipher:   cipher,
		conn:     conn,
		sessions: sessions,
		authn:    NewAuthenticator(db, conn, cipher, sessions, jwtSvc, cfg, zap.NewNop()),
		cfg:      cfg,
	}
}

// addTenant provisions a tenant account whose owner password is ownerPW.
func (f *fixture) addTenant(t *testing.T, name, ownerPW string) uint {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(ownerPW), bcrypt.MinCost)
	require.NoError(t, err)
	account := &database.TenantAccount{
		DatabaseName:      name,
		DatabaseUser:      name + "_user",
		PasswordHash:      string(hash),
		EncryptedPassword: f.cipher.Encrypt("dbpw-" + name),
		StorageFolder:     name,
	}
	require.NoError(t, f.db.CreateTenantAccount(context.Background(), account))
	require.NoError(t, f.conn.Migrate(context.Background(), account.ID))
	return account.ID
}

func (f *fixture) seedTenant(t *testing.T, id uint, fn func(db *gorm.DB) error) {
	t.Helper()
	require.NoError(t, f.conn.With(context.Background(), id, fn))
}

func TestLoginOwner(t *testing.T) {
	f := newFixture(t)
	f.addTenant(t, "acme", "owner-pw")

	res, err := f.authn.LoginOwner(context.Background(), "acme_user", "owner-pw")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, session.RoleTenantOwner, res.Session.Role)

	// a valid token resolves back to the same session
	sess, err := f.authn.Resolve(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, sess.ID)
}

func TestLoginOwner_FailuresIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.addTenant(t, "acme", "owner-pw")

	_, wrongPW := f.authn.LoginOwner(context.Background(), "acme_user", "nope")
	require.Error(t, wrongPW)
	assert.True(t, errorx.IsKind(wrongPW, errorx.KindUnauthenticated))

	_, unknown := f.authn.LoginOwner(context.Background(), "ghost_user", "nope")
	require.Error(t, unknown)
	assert.True(t, errorx.IsKind(unknown, errorx.KindUnauthenticated))

	assert.Equal(t, wrongPW.Error(), unknown.Error(),
		"wrong password and unknown user must be indistinguishable")
}

func TestLoginManager(t *testing.T) {
	f := newFixture(t)
	id := f.addTenant(t, "acme", "owner-pw")
	f.seedTenant(t, id, func(db *gorm.DB) error {
		return tenant.CreateManager(db,
			&tenant.FleetManager{Name: "alice", Password: f.cipher.Encrypt("alice-pw")},
			&tenant.FleetManagerRights{Drivers: true})
	})

	owner, err := f.authn.LoginOwner(context.Background(), "acme_user", "owner-pw")
	require.NoError(t, err)

	res, err := f.authn.LoginManager(context.Background(), owner.Session, "alice", "alice-pw")
	require.NoError(t, err)
	assert.Equal(t, session.RoleFleetManager, res.Session.Role)
	assert.Equal(t, "alice", res.Session.SubjectName)
	assert.Equal(t, id, res.Session.TenantAccountID)

	// wrong password and unknown manager both fail closed
	_, err = f.authn.LoginManager(context.Background(), owner.Session, "alice", "bad")
	assert.True(t, errorx.IsKind(err, errorx.KindUnauthenticated))
	_, err = f.authn.LoginManager(context.Background(), owner.Session, "ghost", "alice-pw")
	assert.True(t, errorx.IsKind(err, errorx.KindUnauthenticated))

	// no owner session at all
	_, err = f.authn.LoginManager(context.Background(), nil, "alice", "alice-pw")
	assert.True(t, errorx.IsKind(err, errorx.KindUnauthenticated))

	// a manager session cannot stand in for an owner session
	_, err = f.authn.LoginManager(context.Background(), res.Session, "alice", "alice-pw")
	assert.True(t, errorx.IsKind(err, errorx.KindUnauthenticated))
}

func TestLoginDriver(t *testing.T) {
	f := newFixture(t)
	id := f.addTenant(t, "acme", "owner-pw")
	require.Equal(t, f.cfg.Tenant.PanelAccountID, id)

	f.seedTenant(t, id, func(db *gorm.DB) error {
		if err := tenant.CreateDriver(db, &tenant.Driver{
			Name: "bob", Password: f.cipher.Encrypt("bob-pw"), Active: true,
		}); err != nil {
			return err
		}
		return tenant.CreateDriver(db, &tenant.Driver{
			Name: "carl", Password: f.cipher.Encrypt("carl-pw"), Active: false,
		})
	})

	res, err := f.authn.LoginDriver(context.Background(), "bob", "bob-pw")
	require.NoError(t, err)
	assert.Equal(t, session.RoleDriver, res.Session.Role)
	assert.Equal(t, "bob", res.Session.SubjectName)

	// inactive drivers cannot log in
	_, err = f.authn.LoginDriver(context.Background(), "carl", "carl-pw")
	assert.True(t, errorx.IsKind(err, errorx.KindUnauthenticated))

	_, err = f.authn.LoginDriver(context.Background(), "bob", "wrong")
	assert.True(t, errorx.IsKind(err, errorx.KindUnauthenticated))
}

func TestLoginSuperadmin(t *testing.T) {
	f := newFixture(t)
	id := f.addTenant(t, "acme", "owner-pw")

	hash, err := bcrypt.GenerateFromPassword([]byte("master-pw"), bcrypt.MinCost)
	require.NoError(t, err)
	f.seedTenant(t, id, func(db *gorm.DB) error {
		return db.Create(&tenant.MasterLogin{MasterPassword: string(hash)}).Error
	})

	owner, err := f.authn.LoginOwner(context.Background(), "acme_user", "owner-pw")
	require.NoError(t, err)

	res, err := f.authn.LoginSuperadmin(context.Background(), owner.Session, "master-pw")
	require.NoError(t, err)
	assert.Equal(t, session.RoleSuperadmin, res.Session.Role)
	assert.Equal(t, int64(-1), res.Session.ActorID())

	_, err = f.authn.LoginSuperadmin(context.Background(), owner.Session, "wrong")
	assert.True(t, errorx.IsKind(err, errorx.KindUnauthenticated))
}

func TestLoginSuperadmin_NoMasterProvisioned(t *testing.T) {
	f := newFixture(t)
	f.addTenant(t, "acme", "owner-pw")

	owner, err := f.authn.LoginOwner(context.Background(), "acme_user", "owner-pw")
	require.NoError(t, err)

	_, err = f.authn.LoginSuperadmin(context.Background(), owner.Session, "anything")
	assert.True(t, errorx.IsKind(err, errorx.KindUnauthenticated))
}

func TestResolveAndLogout(t *testing.T) {
	f := newFixture(t)
	f.addTenant(t, "acme", "owner-pw")

	res, err := f.authn.LoginOwner(context.Background(), "acme_user", "owner-pw")
	require.NoError(t, err)

	require.NoError(t, f.authn.Logout(context.Background(), res.Token))

	// a structurally valid token no longer backed by a session is dead
	_, err = f.authn.Resolve(context.Background(), res.Token)
	assert.True(t, errorx.IsKind(err, errorx.KindUnauthenticated))

	// garbage tokens fail the same way
	_, err = f.authn.Resolve(context.Background(), "garbage")
	assert.True(t, errorx.IsKind(err, errorx.KindUnauthenticated))

	// logging out an invalid token is a no-op
	assert.NoError(t, f.authn.Logout(context.Background(), "garbage"))
}
