package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openfleet/fleetgate/internal/auth"
	"github.com/openfleet/fleetgate/internal/auth/session"
	"github.com/openfleet/fleetgate/internal/common/dto"
	"github.com/openfleet/fleetgate/internal/common/errorx"
)

// bearerToken extracts the raw bearer token from the request, if any.
func bearerToken(c *gin.Context) string {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// ownerSession resolves the request's bearer token to a tenant owner
// session when one is present. Manager and superadmin logins ride on an
// owner session.
func (h *Handler) ownerSession(c *gin.Context) *session.Session {
	token := bearerToken(c)
	if token == "" {
		return nil
	}
	sess, err := h.authn.Resolve(c.Request.Context(), token)
	if err != nil {
		return nil
	}
	return sess
}

// HandleLogin authenticates into one of the four access tiers.
func (h *Handler) HandleLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Respond(c, errorx.Validation("invalid login request"))
		return
	}

	var (
		result *auth.LoginResult
		err    error
	)
	switch session.ParseRole(req.Role) {
	case session.RoleTenantOwner:
		result, err = h.authn.LoginOwner(c.Request.Context(), req.Username, req.Password)
	case session.RoleFleetManager:
		result, err = h.authn.LoginManager(c.Request.Context(), h.ownerSession(c), req.Username, req.Password)
	case session.RoleDriver:
		result, err = h.authn.LoginDriver(c.Request.Context(), req.Username, req.Password)
	case session.RoleSuperadmin:
		result, err = h.authn.LoginSuperadmin(c.Request.Context(), h.ownerSession(c), req.Password)
	default:
		h.errs.Respond(c, errorx.Validation("unknown role"))
		return
	}
	if err != nil {
		h.errs.Respond(c, err)
		return
	}

	ok(c, dto.LoginResponse{
		Token: result.Token,
		Role:  result.Session.Role.String(),
		Name:  result.Session.SubjectName,
	})
}

// HandleLogout deletes the caller's session.
func (h *Handler) HandleLogout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		if err := h.authn.Logout(c.Request.Context(), token); err != nil {
			h.errs.Respond(c, err)
			return
		}
	}
	ok(c, nil)
}

// HandleWhoAmI describes the caller's current session.
func (h *Handler) HandleWhoAmI(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	ok(c, dto.SessionInfo{
		Role:      sess.Role.String(),
		Name:      sess.SubjectName,
		SubjectID: sess.SubjectID,
	})
}
