package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openfleet/fleetgate/internal/common/cnst"
	"github.com/openfleet/fleetgate/internal/common/dto"
	"github.com/openfleet/fleetgate/internal/common/errorx"
	"github.com/openfleet/fleetgate/internal/tenant"
)

// Panel endpoints serve the driver-facing client. They run in the
// caller's driver session and only touch that driver's own rows.

// HandlePanelVehicles lists vehicles a driver can pick from.
func (h *Handler) HandlePanelVehicles(c *gin.Context) {
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
	out := make([]gin.H, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, gin.H{"id": v.ID, "name": v.Name, "numberplate": v.Numberplate})
	}
	ok(c, out)
}

// HandlePanelLastKm returns the caller's last recorded odometer reading
// for the given vehicle.
func (h *Handler) HandlePanelLastKm(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	vehicleID, err := pathID(c)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}

	var km int
	err = h.withTenant(c, func(db *gorm.DB) error {
		k, err := tenant.LastKm(db, sess.SubjectID, vehicleID)
		if err != nil {
			return errorx.Database("failed to read last km", err)
		}
		km = k
		return nil
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, gin.H{"km": km})
}

// HandlePanelPreviousKm returns the caller's most recent odometer
// reading across all vehicles, with the vehicle and direction of that
// shift event. Drivers use it to prefill the reading when going IN.
func (h *Handler) HandlePanelPreviousKm(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}

	var last *tenant.DriverLog
	err := h.withTenant(c, func(db *gorm.DB) error {
		dl, err := tenant.LastDriverLog(db, sess.SubjectID)
		if err != nil {
			return errorx.Database("failed to read shift events", err)
		}
		last = dl
		return nil
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if last == nil {
		ok(c, gin.H{"km": 0})
		return
	}
	ok(c, gin.H{"km": last.Km, "vehicleId": last.VehicleID, "action": last.Action})
}

// HandlePanelVehicleInfo returns the most recent vehicle data row of one
// type for a vehicle, such as the current inspection period.
func (h *Handler) HandlePanelVehicleInfo(c *gin.Context) {
	var req dto.PanelVehicleDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid vehicle info request"))
		return
	}

	var row *tenant.VehicleData
	err := h.withTenant(c, func(db *gorm.DB) error {
		vd, err := tenant.LatestVehicleData(db, req.VehicleID, req.Type)
		if err != nil {
			return errorx.Database("failed to read vehicle data", err)
		}
		row = vd
		return nil
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, row)
}

// HandlePanelShiftToggle opens or closes the caller's shift on a vehicle.
// A driver currently OUT goes IN and vice versa; the event and the status
// flip commit together.
func (h *Handler) HandlePanelShiftToggle(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var req dto.ShiftToggleRequest
	if err := c.ShouldBind(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid shift request"))
		return
	}

	var direction string
	err := h.inTenantTx(c, func(tx *gorm.DB) error {
		d, err := tenant.GetDriver(tx, sess.SubjectID)
		if err != nil {
			return errorx.NotFound("driver not found")
		}
		direction = cnst.ShiftIn
		if d.Status == cnst.ShiftIn {
			direction = cnst.ShiftOut
		}
		if err := tenant.CreateDriverLog(tx, &tenant.DriverLog{
			Time:      time.Now(),
			DriverID:  sess.SubjectID,
			VehicleID: req.VehicleID,
			Km:        req.Km,
			Action:    direction,
		}); err != nil {
			return errorx.Database("failed to record shift event", err)
		}
		if err := tenant.SetDriverStatus(tx, sess.SubjectID, direction); err != nil {
			return errorx.Database("failed to update driver status", err)
		}
		return nil
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, gin.H{"status": direction})
}

// HandlePanelQuickExpense records an expense for the calling driver.
// The driver id comes from the session and the time from the server
// clock; an optional "photo" file carries the receipt.
func (h *Handler) HandlePanelQuickExpense(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var req dto.QuickExpenseRequest
	if err := c.ShouldBind(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid expense request"))
		return
	}

	e := &tenant.VehicleExpense{
		Time:      time.Now(),
		DriverID:  sess.SubjectID,
		VehicleID: req.VehicleID,
		Km:        req.Km,
		Type:      req.Type,
		Cost:      req.Cost,
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
		e.Photo = path
		withPhoto = true
	}

	err := h.withTenant(c, func(db *gorm.DB) error {
		if err := tenant.CreateExpense(db, e); err != nil {
			return errorx.Database("failed to record expense", err)
		}
		return nil
	})
	if err != nil {
		if withPhoto {
			h.blobs.Remove(e.Photo)
		}
		h.errs.Respond(c, err)
		return
	}
	ok(c, gin.H{"id": e.ID})
}

// HandlePanelShiftPhotos attaches uploaded photos to the caller's latest
// shift event for a vehicle and odometer reading.
func (h *Handler) HandlePanelShiftPhotos(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var req dto.ShiftToggleRequest
	if err := c.ShouldBind(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid shift photo request"))
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		h.errs.Respond(c, errorx.Validation("invalid multipart form"))
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		h.errs.Respond(c, errorx.Validation("no photos attached"))
		return
	}

	folder, err := h.storageFolder(c)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	paths, err := h.blobs.SaveAll(folder, files)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}

	var updated int64
	err = h.inTenantTx(c, func(tx *gorm.DB) error {
		n, err := tenant.AttachShiftPhotos(tx, sess.SubjectID, req.VehicleID, req.Km, strings.Join(paths, ";"))
		if err != nil {
			return errorx.Database("failed to attach photos", err)
		}
		updated = n
		return nil
	})
	if err != nil {
		for _, p := range paths {
			h.blobs.Remove(p)
		}
		h.errs.Respond(c, err)
		return
	}
	if updated == 0 {
		for _, p := range paths {
			h.blobs.Remove(p)
		}
		h.errs.Respond(c, errorx.NotFound("no matching shift event"))
		return
	}
	ok(c, gin.H{"photos": paths})
}
