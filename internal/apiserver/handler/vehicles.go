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

// HandleSaveVehicle creates or updates a vehicle. The request is
// multipart; an optional "certificate" file carries the registration
// certificate photo.
func (h *Handler) HandleSaveVehicle(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var req dto.SaveVehicleRequest
	if err := c.ShouldBind(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid vehicle request"))
		return
	}
	if !h.overrideID(c, &req.ID) {
		return
	}

	v := &tenant.Vehicle{
		ID:          req.ID,
		Name:        req.Name,
		Numberplate: req.Numberplate,
		Fuel:        req.Fuel,
		StartDate:   req.StartDate,
		TyreSize:    req.TyreSize,
		Oil:         req.Oil,
	}

	withCertificate := false
	if fh, err := c.FormFile("certificate"); err == nil {
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
		v.RegistrationCertificate = path
		withCertificate = true
	}

	err := h.inTenantTx(c, func(tx *gorm.DB) error {
		if req.ID == 0 {
			if err := tenant.CreateVehicle(tx, v); err != nil {
				return errorx.Database("failed to create vehicle", err)
			}
			return audit.Record(tx, sess.ActorID(), cnst.ActionNewVehicleCreated, v.Name+" ("+v.Numberplate+")", c.ClientIP())
		}
		if err := tenant.UpdateVehicle(tx, v, withCertificate); err != nil {
			return errorx.Database("failed to update vehicle", err)
		}
		return audit.Record(tx, sess.ActorID(), cnst.ActionVehicleUpdated, v.Name+" ("+v.Numberplate+")", c.ClientIP())
	})
	if err != nil {
		if withCertificate {
			h.blobs.Remove(v.RegistrationCertificate)
		}
		h.errs.Respond(c, err)
		return
	}
	ok(c, gin.H{"id": v.ID})
}

// HandleListVehicles lists vehicles.
func (h *Handler) HandleListVehicles(c *gin.Context) {
	var vehicles []*tenant.Vehicle
	err := h.withTenant(c, func(db *gorm.DB) error {
		vs, err := tenant.ListVehicles(db)
		if err != nil {
			return errorx.Database("failed to list vehicles", err)
		}
		vehicles = vs
		return nil
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, vehicles)
}
