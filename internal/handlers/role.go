package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
)

//go:generate mockgen -source=role.go -destination=mock_role.go -package=handlers

// RoleAssigner defines the interface that the service must implement.
type RoleAssigner interface {
	AssignRole(ctx context.Context, actor models.Actor, userID uuid.UUID, role models.Role) (*models.UserDB, error)
}

// AssignRoleRequest represents the JSON body for changing a user's role
// swagger:model AssignRoleRequest
type AssignRoleRequest struct {
	// New role: user, partner, staff, admin or superadmin
	// required: true
	// default: partner
	Role string `json:"role"`
}

// NewAssignRoleHandler returns an HTTP handler that changes the role of a user.
// @Summary Assign role
// @Description Admins may assign user, partner and staff. Only a superadmin may grant or revoke admin and superadmin.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body handlers.AssignRoleRequest true "Role"
// @Success 200 {object} models.UserDB "Updated user"
// @Failure 400 {object} handlers.ErrorResponse "Invalid role or id"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Router /users/{id}/role [put]
// @Security BearerAuth
func NewAssignRoleHandler(svc RoleAssigner, getActor ActorGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, getActor)
		if !ok {
			return
		}
		userID, ok := idParam(w, r)
		if !ok {
			return
		}

		var req AssignRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}

		role := models.Role(strings.ToLower(strings.TrimSpace(req.Role)))
		user, err := svc.AssignRole(r.Context(), actor, userID, role)
		if err != nil {
			writeServiceError(w, "assign role", err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
