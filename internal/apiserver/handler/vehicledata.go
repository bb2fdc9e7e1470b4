package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openfleet/fleetgate/internal/audit"
	"github.com/openfleet/fleetgate/internal/common/cnst"
	"github.com/openfleet/fleetgate/internal/common/dto"
	"github.com/openfleet/fleetgate/internal/common/errorx"
	"github.com/openfleet/fleetgate/internal/tenant"
)

// HandleFilterVehicleData returns vehicle data rows matching the filter.
func (h *Handler) HandleFilterVehicleData(c *gin.Context) {
	var req dto.VehicleDataFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid filter request"))
		return
	}

	var rows []*tenant.VehicleDataRow
	err := h.withTenant(c, func(db *gorm.DB) error {
		rs, err := tenant.FilterVehicleData(db, tenant.VehicleDataFilter{
			From:    req.From,
			To:      req.To,
			Vehicle: req.Vehicle,
			Type:    req.Type,
			Status:  req.Status,
		})
		if err != nil {
			return errorx.Database("failed to filter vehicle data", err)
		}
		rows = rs
		return nil
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, rows)
}

// HandleSaveVehicleData creates or updates a vehicle data row. The
// request is multipart; an optional "photo" file is stored alongside.
func (h *Handler) HandleSaveVehicleData(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var req dto.SaveVehicleDataRequest
	if err := c.ShouldBind(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid vehicle data request"))
		return
	}

	vd := &tenant.VehicleData{
		ID:        req.ID,
		VehicleID: req.VehicleID,
		Type:      req.Type,
		Km:        req.Km,
		DateStart: req.DateStart,
		DateEnd:   req.DateEnd,
		Remarks:   req.Remarks,
	}

	withPhoto := false
	if fh, err := c.FormFile("photo"); err == nil {
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
		vd.Photo = path
		withPhoto = true
	}

	err := h.inTenantTx(c, func(tx *gorm.DB) error {
		details := vd.Type + " #" + strconv.FormatUint(uint64(vd.VehicleID), 10)
		if req.ID == 0 {
			if err := tenant.CreateVehicleData(tx, vd); err != nil {
				return errorx.Database("failed to create vehicle data", err)
			}
			return audit.Record(tx, sess.ActorID(), cnst.ActionNewVehicleDataCreated, details, c.ClientIP())
		}
		if err := tenant.UpdateVehicleData(tx, vd, withPhoto); err != nil {
			return errorx.Database("failed to update vehicle data", err)
		}
		return audit.Record(tx, sess.ActorID(), cnst.ActionVehicleDataUpdated, details, c.ClientIP())
	})
	if err != nil {
		if withPhoto {
			h.blobs.Remove(vd.Photo)
		}
		h.errs.Respond(c, err)
		return
	}
	ok(c, gin.H{"id": vd.ID})
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errorx.Validation("invalid id")
	}
	return uint(id), nil
}

// overrideID replaces a body-supplied id with the path id on update
// routes. Returns false after responding when the path id is malformed.
func (h *Handler) overrideID(c *gin.Context, id *uint) bool {
	if c.Param("id") == "" {
		return true
	}
	pid, err := pathID(c)
	if err != nil {
		h.errs.Respond(c, err)
		return false
	}
	*id = pid
	return true
}

// HandleRemoveVehicleDataPhoto detaches and deletes the photo of a
// vehicle data row.
func (h *Handler) HandleRemoveVehicleDataPhoto(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}

	var photo string
	err = h.inTenantTx(c, func(tx *gorm.DB) error {
		vd, err := tenant.GetVehicleData(tx, id)
		if err != nil {
			return errorx.NotFound("vehicle data not found")
		}
		photo = vd.Photo
		if err := tenant.ClearVehicleDataPhoto(tx, id); err != nil {
			return errorx.Database("failed to clear photo", err)
		}
		return audit.Record(tx, sess.ActorID(), cnst.ActionVehicleDataPhotoRemoved, strconv.FormatUint(uint64(id), 10), c.ClientIP())
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if photo != "" {
		h.blobs.Remove(photo)
	}
	ok(c, nil)
}

// HandleDeleteVehicleData removes a vehicle data row and its photo.
func (h *Handler) HandleDeleteVehicleData(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}

	var photo string
	err = h.inTenantTx(c, func(tx *gorm.DB) error {
		vd, err := tenant.GetVehicleData(tx, id)
		if err != nil {
			return errorx.NotFound("vehicle data not found")
		}
		photo = vd.Photo
		if err := tenant.DeleteVehicleData(tx, id); err != nil {
			return errorx.Database("failed to delete vehicle data", err)
		}
		return audit.Record(tx, sess.ActorID(), cnst.ActionVehicleDataRowRemoved, strconv.FormatUint(uint64(id), 10), c.ClientIP())
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if photo != "" {
		h.blobs.Remove(photo)
	}
	ok(c, nil)
}
