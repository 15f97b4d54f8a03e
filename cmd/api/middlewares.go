package main

import (
	"context"
	"fmt"
	"moviecatalog/proj/internal/domain/models"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				err, ok := rvr.(error)
				if !ok {
					err = fmt.Errorf("%v", rvr)
				}
				w.Header().Set("Connection", "close")
				app.Http.ServerError(w, r, err, "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	clients := make(map[string]*client)
	var mu sync.Mutex
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > 3*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.cfg.Limiter.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = &client{limiter: rate.NewLimiter(rate.Limit(app.cfg.Limiter.Rps), app.cfg.Limiter.Burst)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		allowed := c.limiter.Allow()
		mu.Unlock()
		if !allowed {
			log.Warn("rate limit exceeded", "ip", ip)
			app.Http.Response(
				w, r,
				envelop{"error": "rate limit exceeded"},
				"Can't process request see an error below.",
				http.StatusTooManyRequests,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type CtxKey string

const CtxKeyUser CtxKey = "user"

// requireAuthentication resolves the bearer access token into a principal.
// A missing or malformed header is unauthenticated (401). A token that fails
// verification is forbidden (403) so the client knows to refresh.
func (app *Application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			app.Http.Unauthorized(w, r, "Authorization header is missing")
			return
		}
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
			app.Http.Unauthorized(w, r, "Invalid Authorization header, should be 'Bearer <token>'")
			return
		}
		principal, err := app.services.Auth.Authenticate(token)
		if err != nil {
			app.Http.setupLogPerReq(r).Info("access token rejected", "reason", err.Error())
			app.Http.Forbidden(w, r, "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextSetPrincipal(r.Context(), principal)))
	})
}

// requireAdmin must run after requireAuthentication.
func (app *Application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := contextGetPrincipal(r)
		if principal == nil {
			app.Http.Unauthorized(w, r, "")
			return
		}
		if !principal.IsAdmin() {
			app.Http.Forbidden(w, r, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func contextSetPrincipal(ctx context.Context, principal *models.Principal) context.Context {
	return context.WithValue(ctx, CtxKeyUser, principal)
}

func contextGetPrincipal(r *http.Request) *models.Principal {
	principal, _ := r.Context().Value(CtxKeyUser).(*models.Principal)
	return principal
}
