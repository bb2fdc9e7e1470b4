package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openfleet/fleetgate/internal/audit"
	"github.com/openfleet/fleetgate/internal/common/cnst"
	"github.com/openfleet/fleetgate/internal/common/dto"
	"github.com/openfleet/fleetgate/internal/common/errorx"
	"github.com/openfleet/fleetgate/internal/tenant"
)

// HandleFilterShiftLogs returns paired shift rows matching the filter.
func (h *Handler) HandleFilterShiftLogs(c *gin.Context) {
	var req dto.ShiftLogFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid filter request"))
		return
	}

	var rows []*tenant.ShiftRow
	err := h.withTenant(c, func(db *gorm.DB) error {
		rs, err := tenant.FilterShiftLogs(db, tenant.ShiftLogFilter{
			From:    req.From,
			To:      req.To,
			Vehicle: req.Vehicle,
			Driver:  req.Driver,
		})
		if err != nil {
			return errorx.Database("failed to filter shift logs", err)
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

// HandleUpdateShiftLog rewrites one shift event row.
func (h *Handler) HandleUpdateShiftLog(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var req dto.UpdateShiftLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid shift log request"))
		return
	}
	at, err := time.Parse("2006-01-02 15:04:05", req.Time)
	if err != nil {
		h.errs.Respond(c, errorx.Validation("invalid shift log time"))
		return
	}

	err = h.inTenantTx(c, func(tx *gorm.DB) error {
		if err := tenant.UpdateDriverLog(tx, req.ID, at, req.DriverID, req.VehicleID, req.Km); err != nil {
			return errorx.Database("failed to update shift log", err)
		}
		return audit.Record(tx, sess.ActorID(), cnst.ActionShiftLogUpdated, strconv.FormatUint(uint64(req.ID), 10), c.ClientIP())
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, nil)
}

// HandleFilterAuditLogs returns audit entries with actor names resolved.
func (h *Handler) HandleFilterAuditLogs(c *gin.Context) {
	var req dto.AuditLogFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid filter request"))
		return
	}

	var rows []*tenant.AuditLogRow
	err := h.withTenant(c, func(db *gorm.DB) error {
		rs, err := tenant.FilterAuditLogs(db, tenant.AuditLogFilter{
			From:    req.From,
			To:      req.To,
			Manager: req.Manager,
		})
		if err != nil {
			return errorx.Database("failed to filter audit logs", err)
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
