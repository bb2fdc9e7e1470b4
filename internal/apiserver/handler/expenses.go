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

// HandleFilterExpenses returns expense rows matching the filter.
func (h *Handler) HandleFilterExpenses(c *gin.Context) {
	var req dto.ExpenseFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid filter request"))
		return
	}

	var rows []*tenant.ExpenseRow
	err := h.withTenant(c, func(db *gorm.DB) error {
		rs, err := tenant.FilterExpenses(db, tenant.ExpenseFilter{
			From:    req.From,
			To:      req.To,
			Vehicle: req.Vehicle,
			Type:    req.Type,
			Driver:  req.Driver,
		})
		if err != nil {
			return errorx.Database("failed to filter expenses", err)
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

// HandleSaveExpense creates or updates an expense. The request is
// multipart; an optional "photo" file carries the receipt.
func (h *Handler) HandleSaveExpense(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var req dto.SaveExpenseRequest
	if err := c.ShouldBind(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid expense request"))
		return
	}
	at, err := time.Parse("2006-01-02 15:04:05", req.Time)
	if err != nil {
		h.errs.Respond(c, errorx.Validation("invalid expense time"))
		return
	}

	e := &tenant.VehicleExpense{
		ID:        req.ID,
		Time:      at,
		DriverID:  req.DriverID,
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

	err = h.inTenantTx(c, func(tx *gorm.DB) error {
		details := e.Type + " #" + strconv.FormatUint(uint64(e.VehicleID), 10)
		if req.ID == 0 {
			if err := tenant.CreateExpense(tx, e); err != nil {
				return errorx.Database("failed to create expense", err)
			}
			return audit.Record(tx, sess.ActorID(), cnst.ActionNewExpenseIntroduced, details, c.ClientIP())
		}
		if err := tenant.UpdateExpense(tx, e, withPhoto); err != nil {
			return errorx.Database("failed to update expense", err)
		}
		return audit.Record(tx, sess.ActorID(), cnst.ActionExpenseUpdated, details, c.ClientIP())
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

// HandleSaveCategory creates or renames an expense category.
func (h *Handler) HandleSaveCategory(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var req dto.SaveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid category request"))
		return
	}

	cat := &tenant.Category{ID: req.ID, Name: req.Name}
	err := h.inTenantTx(c, func(tx *gorm.DB) error {
		if req.ID == 0 {
			if err := tenant.CreateCategory(tx, cat); err != nil {
				return errorx.Database("failed to create category", err)
			}
			return audit.Record(tx, sess.ActorID(), cnst.ActionNewCategoryCreated, cat.Name, c.ClientIP())
		}
		if err := tenant.UpdateCategory(tx, req.ID, req.Name); err != nil {
			return errorx.Database("failed to update category", err)
		}
		return audit.Record(tx, sess.ActorID(), cnst.ActionCategoryUpdated, cat.Name, c.ClientIP())
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, gin.H{"id": cat.ID})
}

// HandleListCategories lists expense categories.
func (h *Handler) HandleListCategories(c *gin.Context) {
	var cats []*tenant.Category
	err := h.withTenant(c, func(db *gorm.DB) error {
		cs, err := tenant.ListCategories(db)
		if err != nil {
			return errorx.Database("failed to list categories", err)
		}
		cats = cs
		return nil
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	ok(c, cats)
}
