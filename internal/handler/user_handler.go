/*
This file contains the admin user-management handlers: listing, fetching,
updating, role changes, and deletion. All routes in this file require an
authenticated identity carrying the admin role.
*/
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/app/user"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

// requireAdmin resolves the authenticated identity and checks the admin role.
// A nil return means the response has already been written.
func requireAdmin(w http.ResponseWriter, r *http.Request) *jwt.Payload {
	identity := jwt.GetPayloadFromContext(r)
	if identity == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return nil
	}

	if identity.Role != user.RoleAdmin {
		resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
		return nil
	}

	return identity
}

// HandleListUsers returns every registered account.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireAdmin(w, r) == nil {
			return
		}

		users, err := deps.Users.ListAll(r.Context())
		if err != nil {
			logx.Error(err, "Failed to list users")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		for i := range users {
			users[i].ProfileImage = deps.FullAssetURL(users[i].ProfileImage)
		}

		resp.RespondSuccess(w, r, users)
	}
}

// HandleGetUser returns a single account by ID.
func HandleGetUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireAdmin(w, r) == nil {
			return
		}

		id := chi.URLParam(r, "id")

		account, err := deps.Users.FindByID(r.Context(), id)
		if err != nil {
			logx.Error(err, "Failed to load user", "user_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if account == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		account.ProfileImage = deps.FullAssetURL(account.ProfileImage)

		resp.RespondSuccess(w, r, account)
	}
}

// updateUserRequest is the expected JSON body for profile updates.
type updateUserRequest struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
}

// HandleUpdateUser updates the mutable profile fields of an account.
func HandleUpdateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireAdmin(w, r) == nil {
			return
		}

		id := chi.URLParam(r, "id")

		var input updateUserRequest
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.FullName = strings.TrimSpace(input.FullName)
		input.Email = strings.ToLower(strings.TrimSpace(input.Email))

		if input.FullName == "" || !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		existing, err := deps.Users.FindByID(r.Context(), id)
		if err != nil {
			logx.Error(err, "Failed to load user for update", "user_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if existing == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		updated, err := deps.Users.UpdateProfile(r.Context(), id, input.FullName, input.Email, input.ProfileImage)
		if err != nil {
			logx.Error(err, "Failed to update user", "user_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if updated == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		// A replaced profile image leaves a stale object behind; cleanup is
		// best-effort and never fails the update.
		oldKey := deps.AssetKey(existing.ProfileImage)
		if oldKey != "" && oldKey != deps.AssetKey(updated.ProfileImage) {
			if err := deps.StorageService.Delete(r.Context(), oldKey); err != nil {
				logx.Warn("Failed to delete replaced profile image", "key", oldKey, "user_id", id, "error", err)
			}
		}

		logx.Info("User profile updated", "user_id", id)

		resp.RespondSuccess(w, r, updated)
	}
}

// updateRoleRequest is the expected JSON body for role changes.
type updateRoleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateUserRole changes the role of an account.
func HandleUpdateUserRole(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin := requireAdmin(w, r)
		if admin == nil {
			return
		}

		id := chi.URLParam(r, "id")

		var input updateRoleRequest
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Role != user.RoleUser && input.Role != user.RoleAdmin {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidRole))
			return
		}

		// Admins cannot demote themselves; losing the last admin would lock the
		// management endpoints.
		if id == admin.ID && input.Role != user.RoleAdmin {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		if err := deps.Users.UpdateRole(r.Context(), id, input.Role); err != nil {
			logx.Error(err, "Failed to update user role", "user_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("User role updated", "user_id", id, "role", input.Role)

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleDeleteUser removes an account.
func HandleDeleteUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin := requireAdmin(w, r)
		if admin == nil {
			return
		}

		id := chi.URLParam(r, "id")

		if id == admin.ID {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		account, err := deps.Users.FindByID(r.Context(), id)
		if err != nil {
			logx.Error(err, "Failed to load user for deletion", "user_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if account == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		if err := deps.Users.Delete(r.Context(), id); err != nil {
			logx.Error(err, "Failed to delete user", "user_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		// The account row is gone; remove its stored profile image as well.
		// Cleanup is best-effort and never fails the deletion.
		if key := deps.AssetKey(account.ProfileImage); key != "" {
			if err := deps.StorageService.Delete(r.Context(), key); err != nil {
				logx.Warn("Failed to delete profile image for removed user", "key", key, "user_id", id, "error", err)
			}
		}

		logx.Info("User deleted", "user_id", id)

		resp.RespondSuccess(w, r, nil)
	}
}
