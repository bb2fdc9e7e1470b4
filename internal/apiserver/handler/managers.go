package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openfleet/fleetgate/internal/audit"
	"github.com/openfleet/fleetgate/internal/common/cnst"
	"github.com/openfleet/fleetgate/internal/common/dto"
	"github.com/openfleet/fleetgate/internal/common/errorx"
	"github.com/openfleet/fleetgate/internal/tenant"
)

// HandleSaveManager creates or updates a fleet manager. The password is
// stored as a ciphertext under the system cipher so manager login can
// compare ciphertexts.
func (h *Handler) HandleSaveManager(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var req dto.SaveManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid manager request"))
		return
	}
	if !h.overrideID(c, &req.ID) {
		return
	}

	m := &tenant.FleetManager{
		ID:        req.ID,
		Name:      req.Name,
		Password:  h.vault.Cipher().Encrypt(req.Password),
		Telephone: req.Telephone,
		Email:     req.Email,
	}
	rights := &tenant.FleetManagerRights{
		Superadmin:  req.Rights.Superadmin,
		Managers:    req.Rights.Managers,
		Drivers:     req.Rights.Drivers,
		Vehicles:    req.Rights.Vehicles,
		VehicleData: req.Rights.VehicleData,
		ManagerLogs: req.Rights.ManagerLogs,
		DriverLogs:  req.Rights.DriverLogs,
		VehicleLogs: req.Rights.VehicleLogs,
		Expenses:    req.Rights.Expenses,
		Categories:  req.Rights.Categories,
	}

	err := h.inTenantTx(c, func(tx *gorm.DB) error {
		if req.ID == 0 {
			if err := tenant.CreateManager(tx, m, rights); err != nil {
				return errorx.Database("failed to create manager", err)
			}
			return audit.Record(tx, sess.ActorID(), cnst.ActionNewManagerCreated, m.Name, c.ClientIP())
		}
		if err := tenant.UpdateManager(tx, m, rights); err != nil {
			return errorx.Database("failed to update manager", err)
		}
		return audit.Record(tx, sess.ActorID(), cnst.ActionManagerUpdated, m.Name, c.ClientIP())
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, gin.H{"id": m.ID})
}

// HandleListManagers lists fleet managers without their passwords.
func (h *Handler) HandleListManagers(c *gin.Context) {
	var managers []*tenant.FleetManager
	err := h.withTenant(c, func(db *gorm.DB) error {
		ms, err := tenant.ListManagers(db)
		if err != nil {
			return errorx.Database("failed to list managers", err)
		}
		managers = ms
		return nil
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, managers)
}
