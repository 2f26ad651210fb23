package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type contextKey string

const UserIDKey contextKey = "userID"
const UserNameKey contextKey = "userName"
const UserRoleKey contextKey = "userRole"

const SessionCookieName = "algebra_tutor_session"

func CreateSessionCookie(userID int, userName, userRole, secret string) (*http.Cookie, error) {
	value := fmt.Sprintf("%d|%s|%s|%d", userID, userName, userRole, time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	signature := base64.URLEncoding.EncodeToString(mac.Sum(nil))
	cookieValue := fmt.Sprintf("%s|%s", value, signature)

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7, // 7 days
	}

	return cookie, nil
}

func ValidateSessionCookie(cookie *http.Cookie, secret string) (userID int, userName, userRole string, err error) {
	if cookie == nil {
		return 0, "", "", fmt.Errorf("no session cookie")
	}

	parts := strings.Split(cookie.Value, "|")
	if len(parts) != 5 {
		return 0, "", "", fmt.Errorf("invalid session format")
	}

	value := strings.Join(parts[:4], "|")
	signature := parts[4]

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	expectedSignature := base64.URLEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		return 0, "", "", fmt.Errorf("invalid session signature")
	}

	userID, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", "", fmt.Errorf("invalid user id in session")
	}
	userName = parts[1]
	userRole = parts[2]

	return userID, userName, userRole, nil
}

func RequireAuth(next http.HandlerFunc, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		userID, userName, userRole, err := ValidateSessionCookie(cookie, secret)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, UserNameKey, userName)
		ctx = context.WithValue(ctx, UserRoleKey, userRole)

		next(w, r.WithContext(ctx))
	}
}

func GetUserID(r *http.Request) int {
	if val := r.Context().Value(UserIDKey); val != nil {
		return val.(int)
	}
	return 0
}

func GetUserName(r *http.Request) string {
	if val := r.Context().Value(UserNameKey); val != nil {
		return val.(string)
	}
	return ""
}

func GetUserRole(r *http.Request) string {
	if val := r.Context().Value(UserRoleKey); val != nil {
		return val.(string)
	}
	return ""
}

// RequireRole ensures the user has one of the specified roles
func RequireRole(allowedRoles []string, secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r)
			allowed := false
			for _, role := range allowedRoles {
				if userRole == role {
					allowed = true
					break
				}
			}
			if !allowed {
				http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
				return
			}
			next(w, r)
		}, secret)
	}
}

// RequireTeacher gates the teacher-facing pages.
func RequireTeacher(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return RequireRole([]string{"docente"}, secret)
}
