package handler

import (
	"crypto/subtle"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/openfleet/fleetgate/internal/apiserver/database"
	"github.com/openfleet/fleetgate/internal/common/cnst"
	"github.com/openfleet/fleetgate/internal/common/dto"
	"github.com/openfleet/fleetgate/internal/common/errorx"
)

// HandleCreateTenant provisions a tenant account in the control database.
// The plaintext database password is stored twice: hashed for owner
// login checks and reversibly encrypted so tenant connections can be
// opened later.
func (h *Handler) HandleCreateTenant(c *gin.Context) {
	h.createTenant(c)
}

// HandleBootstrapTenant provisions the first tenant account without a
// session. Superadmin login rides on an owner session, so on an empty
// control database no token chain can reach the gated tenant route;
// this endpoint breaks that cycle, gated on a deployment secret
// presented in the X-Bootstrap-Secret header. It is disabled when no
// secret is configured.
func (h *Handler) HandleBootstrapTenant(c *gin.Context) {
	secret := h.cfg.Tenant.BootstrapSecret
	presented := c.GetHeader("X-Bootstrap-Secret")
	if secret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) != 1 {
		h.errs.Respond(c, errorx.Unauthenticated("invalid bootstrap secret"))
		return
	}
	h.createTenant(c)
}

func (h *Handler) createTenant(c *gin.Context) {
	var req dto.SaveTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid tenant request"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.errs.Respond(c, errorx.Internal(err))
		return
	}

	account := &database.TenantAccount{
		DatabaseName:      req.DatabaseName,
		DatabaseUser:      req.DatabaseUser,
		PasswordHash:      string(hash),
		EncryptedPassword: h.vault.Cipher().Encrypt(req.Password),
		StorageFolder:     req.Folder,
	}
	if err := h.db.CreateTenantAccount(c.Request.Context(), account); err != nil {
		if errors.Is(err, cnst.ErrDuplicateTenantUser) {
			h.errs.Respond(c, errorx.Validation("database user already exists"))
			return
		}
		h.errs.Respond(c, errorx.Database("failed to create tenant account", err))
		return
	}

	h.logger.Info("tenant account created",
		zap.Uint("id", account.ID),
		zap.String("db_user", account.DatabaseUser))
	ok(c, gin.H{"id": account.ID})
}

// HandleListTenants lists tenant accounts without their secrets.
func (h *Handler) HandleListTenants(c *gin.Context) {
	accounts, err := h.db.ListTenantAccounts(c.Request.Context())
	if err != nil {
		h.errs.Respond(c, errorx.Database("failed to list tenant accounts", err))
		return
	}
	out := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, gin.H{
			"id":           a.ID,
			"databaseName": a.DatabaseName,
			"databaseUser": a.DatabaseUser,
			"folder":       a.StorageFolder,
		})
	}
	ok(c, out)
}
