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

// storageFolder resolves the caller tenant's blob folder.
func (h *Handler) storageFolder(c *gin.Context) (string, error) {
	sess := h.session(c)
	if sess == nil {
		return "", errorx.Unauthenticated("session required")
	}
	return h.vault.StorageFolder(c.Request.Context(), sess.TenantAccountID)
}

// HandleSaveDriver creates or updates a driver. The request is multipart;
// an optional "licence" file carries the driving licence photo.
func (h *Handler) HandleSaveDriver(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var req dto.SaveDriverRequest
	if err := c.ShouldBind(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid driver request"))
		return
	}
	if !h.overrideID(c, &req.ID) {
		return
	}

	d := &tenant.Driver{
		ID:                req.ID,
		Name:              req.Name,
		Password:          h.vault.Cipher().Encrypt(req.Password),
		Telephone:         req.Telephone,
		Email:             req.Email,
		Birthdate:         req.Birthdate,
		LicenceValidity:   req.LicenceValidity,
		LicenceCategories: req.LicenceCategories,
		Active:            req.Active,
		Remarks:           req.Remarks,
		VehicleID:         req.VehicleID,
	}

	withLicence := false
	if fh, err := c.FormFile("licence"); err == nil {
		folder, err := h.storageFolder(c)
		if err != nil {
			h.errs.Respond(c, err)
			return
		}
		path, err := h.blobs.Save(folder, fh)
		if err != nil {
			h.errs.Respond(c, err)
			return
		}
		d.Licence = path
		withLicence = true
	}

	err := h.inTenantTx(c, func(tx *gorm.DB) error {
		if req.ID == 0 {
			if err := tenant.CreateDriver(tx, d); err != nil {
				return errorx.Database("failed to create driver", err)
			}
			return audit.Record(tx, sess.ActorID(), cnst.ActionNewDriverCreated, d.Name, c.ClientIP())
		}
		if err := tenant.UpdateDriver(tx, d, withLicence); err != nil {
			return errorx.Database("failed to update driver", err)
		}
		return audit.Record(tx, sess.ActorID(), cnst.ActionDriverUpdated, d.Name, c.ClientIP())
	})
	if err != nil {
		if withLicence {
			h.blobs.Remove(d.Licence)
		}
		h.errs.Respond(c, err)
		return
	}
	ok(c, gin.H{"id": d.ID})
}

// HandleListDrivers lists drivers without their passwords.
func (h *Handler) HandleListDrivers(c *gin.Context) {
	var drivers []*tenant.Driver
	err := h.withTenant(c, func(db *gorm.DB) error {
		var ds []*tenant.Driver
		if err := db.Order("name").Find(&ds).Error; err != nil {
			return errorx.Database("failed to list drivers", err)
		}
		drivers = ds
		return nil
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, drivers)
}
