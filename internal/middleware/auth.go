// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

const (
	UserIDKey   contextKey = "user_id"
	UserTypeKey contextKey = "user_type"
	ClaimsKey   contextKey = "jwt_claims"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// SessionValidator checks a verified token against server-side state:
// revoked token IDs, bumped token versions and suspended accounts.
type SessionValidator interface {
	ValidateSession(ctx context.Context, claims *AccessTokenClaims) error
}

type AccessTokenClaims struct {
	UserID       string
	UserType     string
	TokenVersion int
	JTI          string
}

func Authenticator(
	verifier TokenVerifier,
	sessions SessionValidator,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			if sessions != nil {
				if err := sessions.ValidateSession(r.Context(), claims); err != nil {
					handleAuthError(w, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func withClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserTypeKey, claims.UserType)
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return ctx
}

func RequireUserType(userTypes ...string) func(http.Handler) http.Handler {
	typeSet := make(map[string]struct{}, len(userTypes))
	for _, userType := range userTypes {
		typeSet[userType] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userType := GetUserType(r.Context())

			if userType == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if _, ok := typeSet[userType]; !ok {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireStaff(next http.Handler) http.Handler {
	return RequireUserType(
		core.UserTypeStaff,
		core.UserTypeAdmin,
		core.UserTypeSuperAdmin,
	)(next)
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireUserType(core.UserTypeAdmin, core.UserTypeSuperAdmin)(next)
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrAccountLocked):
		core.JSONError(w, core.AccountSuspendedError())
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func GetUserType(ctx context.Context) string {
	if userType, ok := ctx.Value(UserTypeKey).(string); ok {
		return userType
	}
	return ""
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}

// GetActor returns the authenticated caller as an explicit service argument.
func GetActor(ctx context.Context) core.Actor {
	return core.Actor{
		ID:       GetUserID(ctx),
		UserType: GetUserType(ctx),
	}
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}
