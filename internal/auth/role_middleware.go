package auth

import (
	"log/slog"
	"net/http"

	"github.com/taskhive/task-management/internal/authz"
)

// RoleAuthorization gates routes on the session user's role. It replaces the
// per-permission middleware a flat permission table would need; the three
// roles are the whole model here.
type RoleAuthorization struct {
	logger *slog.Logger
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{logger: logger}
}

func (ra *RoleAuthorization) require(roles ...authz.Role) func(http.Handler) http.Handler {
	allowed := make(map[authz.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if _, ok := allowed[user.Role]; !ok {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"user_id", user.ID,
					"role", string(user.Role))
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager admits MANAGER and HR_ADMIN (manager-equivalent).
func (ra *RoleAuthorization) RequireManager() func(http.Handler) http.Handler {
	return ra.require(authz.RoleManager, authz.RoleHRAdmin)
}

func (ra *RoleAuthorization) RequireHRAdmin() func(http.Handler) http.Handler {
	return ra.require(authz.RoleHRAdmin)
}
