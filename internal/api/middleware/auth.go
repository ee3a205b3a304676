package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	// HeaderUserID заголовок с идентификатором пациента, который выставляет API gateway
	HeaderUserID = "X-User-ID"
	// HeaderUserRole роль вызывающего, тоже от gateway
	HeaderUserRole = "X-User-Role"

	// RoleStaff сотрудник клиники: видит и отменяет чужие бронирования, завершает приёмы
	RoleStaff = "staff"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	userRoleKey  contextKey = "userRole"
	requestIDKey contextKey = "requestID"
)

// Auth извлекает ID пользователя из заголовка X-User-ID и кладёт его в контекст
// Аутентификация выполняется на gateway, сервис доверяет заголовку
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" || len(userID) > domain.MaxIDLength {
			handlers.RespondUnauthorized(w, "отсутствует или некорректен заголовок X-User-ID")
			return
		}

		ctx := WithUserID(r.Context(), userID)
		if role := strings.TrimSpace(r.Header.Get(HeaderUserRole)); role != "" {
			ctx = WithUserRole(ctx, strings.ToLower(role))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithUserID кладёт ID пользователя в контекст
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserRole кладёт роль пользователя в контекст
func WithUserRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, userRoleKey, role)
}

// IsStaff сообщает, что запрос пришёл от сотрудника клиники
func IsStaff(ctx context.Context) bool {
	role, _ := ctx.Value(userRoleKey).(string)
	return role == RoleStaff
}
