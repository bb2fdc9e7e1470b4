package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openfleet/fleetgate/internal/apiserver/database"
	"github.com/openfleet/fleetgate/internal/apiserver/middleware"
	"github.com/openfleet/fleetgate/internal/auth"
	"github.com/openfleet/fleetgate/internal/auth/session"
	"github.com/openfleet/fleetgate/internal/blob"
	"github.com/openfleet/fleetgate/internal/common/config"
	"github.com/openfleet/fleetgate/internal/common/errorx"
	"github.com/openfleet/fleetgate/internal/tenant"
	"github.com/openfleet/fleetgate/internal/vault"
)

// Handler serves the HTTP API. Every tenant-scoped method opens the
// caller's tenant database for the duration of one request and closes it
// before responding.
type Handler struct {
	db        database.Database
	connector *tenant.Connector
	vault     *vault.Vault
	authn     *auth.Authenticator
	blobs     *blob.Store
	errs      *errorx.Handler
	cfg       *config.APIServerConfig
	logger    *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(db database.Database, connector *tenant.Connector, v *vault.Vault, authn *auth.Authenticator, blobs *blob.Store, cfg *config.APIServerConfig, logger *zap.Logger) *Handler {
	return &Handler{
		db:        db,
		connector: connector,
		vault:     v,
		authn:     authn,
		blobs:     blobs,
		errs:      errorx.NewHandler(logger),
		cfg:       cfg,
		logger:    logger.Named("handler"),
	}
}

// session returns the caller's session or responds with unauthorized.
func (h *Handler) session(c *gin.Context) *session.Session {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		h.errs.Respond(c, errorx.Unauthenticated("session required"))
		return nil
	}
	return sess
}

// withTenant runs fn against the tenant database of the caller's session.
func (h *Handler) withTenant(c *gin.Context, fn func(db *gorm.DB) error) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return errorx.Unauthenticated("session required")
	}
	return h.connector.With(c.Request.Context(), sess.TenantAccountID, fn)
}

// inTenantTx runs fn in one transaction on the caller's tenant database.
// Mutations and their audit entries go through here so both commit or
// neither does.
func (h *Handler) inTenantTx(c *gin.Context, fn func(tx *gorm.DB) error) error {
	return h.withTenant(c, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}

// ok sends a success response with an optional payload.
func ok(c *gin.Context, data any) {
	body := gin.H{"success": true}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}
