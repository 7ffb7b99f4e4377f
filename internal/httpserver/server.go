// internal/httpserver/server.go
//
// HTTP server wiring for the guess-the-sentence backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", letter pricing display.
//   - Match endpoints: start (auth), guest start, current-match read, letter
//     and sentence guesses, abandon.
//   - Auth endpoints: signup, login, logout, current user with fresh balance.
//   - JWT + cookie handling and domain-error translation to status codes.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is
//     present; match routes still run for guests, who act as the ownerless
//     actor and are identified only by match id.
//   - All input validation happens here before the engine is invoked; the
//     engine revalidates letter shape defensively.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/guessentence/go-server/internal/game"
	"github.com/guessentence/go-server/internal/letters"
	"github.com/guessentence/go-server/internal/store"
)

// startingCoins is the balance a freshly registered account receives.
const startingCoins = 100

// Server bundles the router, the persistence layer, and the match engine.
type Server struct {
	r      *chi.Mux
	store  store.Store
	engine *game.Engine
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, eng *game.Engine) *Server {
	s := &Server{r: chi.NewRouter(), store: st, engine: eng}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"guessentence-go","endpoints":["/health","/auth/*","/match/*","/letters/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Letter pricing display (public)
	s.r.Get("/letters/costs", s.handleLetterCosts)
	s.r.Get("/letters/random", s.handleRandomLetters)

	// Match endpoints. Starting a ranked match and reading "my current match"
	// require an account; everything else is OPTIONAL AUTH so guests can act
	// on their own (ownerless) matches by id.
	s.r.With(s.requireAuth()).Post("/match/start", s.handleStart)
	s.r.With(s.requireAuth()).Get("/match/current", s.handleCurrent)
	s.r.Post("/match/guest", s.handleGuestStart)
	s.r.With(s.withOptionalAuth()).Get("/match/{id}", s.handleGet)
	s.r.With(s.withOptionalAuth()).Post("/match/{id}/guess-letter", s.handleGuessLetter)
	s.r.With(s.withOptionalAuth()).Post("/match/{id}/guess-sentence", s.handleGuessSentence)
	s.r.With(s.withOptionalAuth()).Post("/match/{id}/abandon", s.handleAbandon)

	// Auth
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ LETTERS ------------------------------------

// handleLetterCosts returns the full pricing table, letter -> cost.
func (s *Server) handleLetterCosts(w http.ResponseWriter, r *http.Request) {
	costs := make(map[string]int, len(letters.Frequencies))
	for ch := range letters.Frequencies {
		costs[string(ch)] = letters.Cost(ch)
	}
	_ = json.NewEncoder(w).Encode(costs)
}

// handleRandomLetters returns a random sample of letters with frequency and
// cost, for the home-page letter wheel.
func (s *Server) handleRandomLetters(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	_ = json.NewEncoder(w).Encode(letters.Random(n))
}

// ------------------------------ MATCHES ------------------------------------

// handleStart creates a new match owned by the authenticated user.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	m, err := s.engine.Start(r.Context(), game.Authenticated(me.ID))
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(m)
}

// handleGuestStart creates an ownerless match from the guest sentence pool.
// The client keeps the returned match id; it is the only handle to the match.
func (s *Server) handleGuestStart(w http.ResponseWriter, r *http.Request) {
	m, err := s.engine.Start(r.Context(), game.Guest)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(m)
}

// handleCurrent returns the caller's playing match, or a recently finished
// one inside the grace window, or JSON null when there is nothing to show.
func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	m, err := s.engine.Current(r.Context(), game.Authenticated(me.ID))
	if errors.Is(err, game.ErrMatchNotFound) {
		_, _ = w.Write([]byte(`null`))
		return
	}
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(m)
}

// handleGet returns one match by id for its owner (user or guest).
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.engine.Get(r.Context(), chi.URLParam(r, "id"), ownerFrom(r))
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(m)
}

type guessLetterReq struct {
	Letter string `json:"letter"`
}

// handleGuessLetter applies a single-letter guess.
func (s *Server) handleGuessLetter(w http.ResponseWriter, r *http.Request) {
	var req guessLetterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if l := strings.TrimSpace(req.Letter); len(l) != 1 || !isLetter(l[0]) {
		http.Error(w, `{"error":"`+game.ErrInvalidLetter.Error()+`"}`, http.StatusBadRequest)
		return
	}
	res, err := s.engine.GuessLetter(r.Context(), chi.URLParam(r, "id"), ownerFrom(r), req.Letter)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

type guessSentenceReq struct {
	Sentence string `json:"sentence"`
}

// handleGuessSentence applies a full-sentence guess.
func (s *Server) handleGuessSentence(w http.ResponseWriter, r *http.Request) {
	var req guessSentenceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Sentence) == "" {
		http.Error(w, `{"error":"`+game.ErrEmptySentence.Error()+`"}`, http.StatusBadRequest)
		return
	}
	res, err := s.engine.GuessSentence(r.Context(), chi.URLParam(r, "id"), ownerFrom(r), req.Sentence)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// handleAbandon marks a playing match abandoned.
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Abandon(r.Context(), chi.URLParam(r, "id"), ownerFrom(r))
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// writeEngineErr translates engine errors into transport codes: domain errors
// become 4xx with the message the player should see, everything else is a 500.
func (s *Server) writeEngineErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrMatchNotFound):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
	case errors.Is(err, game.ErrUnauthorized):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusForbidden)
	case errors.Is(err, game.ErrNotPlayable),
		errors.Is(err, game.ErrVowelUsed),
		errors.Is(err, game.ErrInsufficientCoins),
		errors.Is(err, game.ErrInvalidLetter),
		errors.Is(err, game.ErrEmptySentence),
		errors.Is(err, game.ErrNoSentences):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("engine failure")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}
}

// ownerFrom derives the acting Owner from request context: the authenticated
// user when present, otherwise the guest actor.
func ownerFrom(r *http.Request) game.Owner {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return game.Authenticated(me.ID)
	}
	return game.Guest
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// ------------------------------- AUTH --------------------------------------

// Request payloads for signup/login.
type signupReq struct{ Username, Password string }
type loginReq struct{ Username, Password string }

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// mountAuthRoutes registers authentication routes and the gated /auth/me.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	// Current user with a fresh coin balance (gated)
	s.r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
		u, err := s.store.UserByID(r.Context(), me.ID)
		if err != nil {
			http.Error(w, `{"error":"not_found"}`, http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       u.ID,
			"username": u.Username,
			"coins":    u.Coins,
		})
	})
}

// handleSignup creates a new user with the starting balance, signs a JWT, and
// sets the auth cookie.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.createUser(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			http.Error(w, `{"error":"Username taken"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setAuthCookie(w, tok, exp)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username, "coins": u.Coins})
}

// handleLogin authenticates a user and sets the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.store.UserByUsername(r.Context(), strings.TrimSpace(body.Username))
	if err != nil || !checkPassword(u.PasswordHash, body.Password) {
		http.Error(w, `{"error":"Invalid username or password"}`, http.StatusUnauthorized)
		return
	}
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setAuthCookie(w, tok, exp)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username, "coins": u.Coins})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// --------------------------- optional auth ---------------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is
// present. It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := bearerOrCookie(r); tok != "" {
				claims := jwt.MapClaims{}
				if t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
					return []byte(getEnv("JWT_SECRET", "dev_secret_change_me")), nil
				}); err == nil && t.Valid {
					if id, _ := claims["id"].(string); id != "" {
						if u, err := s.store.UserByID(r.Context(), id); err == nil {
							ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: u.ID, Username: u.Username})
							r = r.WithContext(ctx)
						}
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------ auth helpers & users -----------------------------

// createUser validates input, hashes the password, and inserts a new user
// with the starting balance.
func (s *Server) createUser(ctx context.Context, username, pw string) (*store.User, error) {
	username = normalizeUsername(username)
	if err := validateSignup(username, pw); err != nil {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &store.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC(),
		Coins:        startingCoins,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// normalizeUsername trims whitespace; adjust here if you want stricter rules.
func normalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// validateSignup enforces basic username/password rules.
func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errors.New("password must be 8-100 chars")
	}
	return nil
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/username and a configurable expiry
// (JWT_EXPIRES_DAYS; default 14).
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	secret := getEnv("JWT_SECRET", "dev_secret_change_me")
	days := 14
	if v := os.Getenv("JWT_EXPIRES_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	exp := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      time.Now().Unix(),
	})
	ss, err := t.SignedString([]byte(secret))
	return ss, exp, err
}

// setAuthCookie writes the auth token cookie with appropriate security attributes.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	name := getEnv("COOKIE_NAME", "guessentence_token")
	secure := os.Getenv("APP_ENV") == "production"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// clearAuthCookie deletes the auth token cookie.
func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	name := getEnv("COOKIE_NAME", "guessentence_token")
	secure := os.Getenv("APP_ENV") == "production"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(getEnv("COOKIE_NAME", "guessentence_token")); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerOrCookie(r)
			if tokenStr == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(getEnv("JWT_SECRET", "dev_secret_change_me")), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			id, _ := claims["id"].(string)
			username, _ := claims["username"].(string)
			if id == "" || username == "" {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			// Ensure user still exists
			if _, err := s.store.UserByID(r.Context(), id); err != nil {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: id, Username: username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
