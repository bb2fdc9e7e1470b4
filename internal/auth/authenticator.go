package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/openfleet/fleetgate/internal/apiserver/database"
	"github.com/openfleet/fleetgate/internal/auth/jwt"
	"github.com/openfleet/fleetgate/internal/auth/session"
	"github.com/openfleet/fleetgate/internal/common/cnst"
	"github.com/openfleet/fleetgate/internal/common/config"
	"github.com/openfleet/fleetgate/internal/common/errorx"
	"github.com/openfleet/fleetgate/internal/tenant"
	"github.com/openfleet/fleetgate/internal/vault"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Authenticator verifies credentials for every access tier and issues
// session-backed bearer tokens. Every failure path returns the same
// unauthenticated error so callers cannot distinguish an unknown account
// from a wrong password.
type Authenticator struct {
	db        database.Database
	connector *tenant.Connector
	cipher    *vault.Cipher
	sessions  session.Store
	jwt       *jwt.Service
	cfg       *config.APIServerConfig
	logger    *zap.Logger
}

// NewAuthenticator creates an authenticator over the control database and
// the tenant connector.
func NewAuthenticator(db database.Database, connector *tenant.Connector, cipher *vault.Cipher, sessions session.Store, jwtSvc *jwt.Service, cfg *config.APIServerConfig, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		db:        db,
		connector: connector,
		cipher:    cipher,
		sessions:  sessions,
		jwt:       jwtSvc,
		cfg:       cfg,
		logger:    logger.Named("auth"),
	}
}

// LoginResult carries the issued token and its session.
type LoginResult struct {
	Token   string
	Session *session.Session
}

func errInvalidCredentials() error {
	return errorx.Unauthenticated("invalid credentials")
}

// issue saves a new session and signs a token for it.
func (a *Authenticator) issue(ctx context.Context, tenantAccountID uint, role session.Role, subjectID uint, subjectName string) (*LoginResult, error) {
	sess := session.New(tenantAccountID, role, subjectID, subjectName, a.cfg.Session.TTL)
	if err := a.sessions.Save(ctx, sess); err != nil {
		return nil, errorx.Internal(err)
	}
	token, err := a.jwt.GenerateToken(sess.ID, sess.Role.String())
	if err != nil {
		return nil, errorx.Internal(err)
	}
	a.logger.Info("session issued",
		zap.String("session_id", sess.ID),
		zap.String("role", sess.Role.String()),
		zap.Uint("tenant_account_id", tenantAccountID))
	return &LoginResult{Token: token, Session: sess}, nil
}

// LoginOwner authenticates a tenant owner against the control database.
func (a *Authenticator) LoginOwner(ctx context.Context, dbUser, password string) (*LoginResult, error) {
	account, err := a.db.GetTenantAccountByUser(ctx, dbUser)
	if err != nil {
		if errors.Is(err, cnst.ErrTenantNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, errorx.Database("control database lookup failed", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, errInvalidCredentials()
	}
	return a.issue(ctx, account.ID, session.RoleTenantOwner, 0, account.DatabaseUser)
}

// cipherMatch re-encrypts the candidate password and compares the
// ciphertexts. The cipher is deterministic so equal plaintexts always
// yield equal ciphertexts.
func (a *Authenticator) cipherMatch(stored, password string) bool {
	candidate := a.cipher.Encrypt(password)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// LoginManager authenticates a fleet manager within the tenant of an
// established owner session.
func (a *Authenticator) LoginManager(ctx context.Context, owner *session.Session, name, password string) (*LoginResult, error) {
	if owner == nil || owner.Role != session.RoleTenantOwner {
		return nil, errorx.Unauthenticated("tenant owner session required")
	}

	var manager *tenant.FleetManager
	err := a.connector.With(ctx, owner.TenantAccountID, func(db *gorm.DB) error {
		m, err := tenant.GetManagerByName(db, name)
		if err != nil {
			return err
		}
		manager = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if manager == nil || !a.cipherMatch(manager.Password, password) {
		return nil, errInvalidCredentials()
	}
	return a.issue(ctx, owner.TenantAccountID, session.RoleFleetManager, manager.ID, manager.Name)
}

// LoginDriver authenticates a driver against the configured panel tenant.
func (a *Authenticator) LoginDriver(ctx context.Context, name, password string) (*LoginResult, error) {
	tenantID := a.cfg.Tenant.PanelAccountID

	var driver *tenant.Driver
	err := a.connector.With(ctx, tenantID, func(db *gorm.DB) error {
		d, err := tenant.GetDriverByName(db, name)
		if err != nil {
			return err
		}
		driver = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	if driver == nil || !driver.Active || !a.cipherMatch(driver.Password, password) {
		return nil, errInvalidCredentials()
	}
	return a.issue(ctx, tenantID, session.RoleDriver, driver.ID, driver.Name)
}

// LoginSuperadmin elevates an established owner session by checking the
// master password stored in the tenant database.
func (a *Authenticator) LoginSuperadmin(ctx context.Context, owner *session.Session, password string) (*LoginResult, error) {
	if owner == nil || owner.Role != session.RoleTenantOwner {
		return nil, errorx.Unauthenticated("tenant owner session required")
	}

	var hash string
	err := a.connector.With(ctx, owner.TenantAccountID, func(db *gorm.DB) error {
		h, err := tenant.GetMasterPasswordHash(db)
		if err != nil {
			return err
		}
		hash = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, errInvalidCredentials()
	}
	return a.issue(ctx, owner.TenantAccountID, session.RoleSuperadmin, 0, "Superadmin")
}

// Resolve maps a bearer token to its live session. A valid signature
// over a session that no longer exists still resolves to nothing.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*session.Session, error) {
	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return nil, errorx.Unauthenticated("invalid token")
	}
	sess, err := a.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, cnst.ErrSessionNotFound) {
			return nil, errorx.Unauthenticated("session expired")
		}
		return nil, errorx.Internal(err)
	}
	return sess, nil
}

// Logout deletes the session behind a token. An already invalid token is
// not an error.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return nil
	}
	return a.sessions.Delete(ctx, claims.SessionID)
}
