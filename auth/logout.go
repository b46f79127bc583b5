package auth

import (
	"context"
	"net/http"
	"time"

	"labhive/rdx"

	"github.com/julienschmidt/httprouter"
)

// Logout handles POST /auth/logout
func Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token := r.Header.Get("Authorization")
	if token == "" {
		http.Error(w, "No token provided", http.StatusUnauthorized)
		return
	}
	if len(token) >= 8 && token[:7] == "Bearer " {
		token = token[7:]
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := rdx.Conn.Del(ctx, "auth:token:"+token).Result(); err != nil {
		http.Error(w, "Failed to invalidate session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success":true,"message":"Logged out successfully"}`))
}
