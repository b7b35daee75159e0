package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/inkwell-app/inkwell/internal/notes/service"
	"github.com/inkwell-app/inkwell/internal/notes/store"
	"github.com/inkwell-app/inkwell/pkg/cachex"
	"github.com/inkwell-app/inkwell/pkg/httpx"
	"github.com/inkwell-app/inkwell/pkg/slogx"

	_ "github.com/inkwell-app/inkwell/api/notes" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// ResponseCacheNamespace is where the caching middleware stores GET
// responses. All write handlers clear this namespace.
const ResponseCacheNamespace = "responses"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	devMode      bool

	store store.Store
	cache *cachex.Cache

	UserService    *service.UserService
	NotesService   *service.NotesService
	SessionService *service.SessionService
}

func NewRouter(
	buildVersion string,
	devMode bool,
	st store.Store,
	cache *cachex.Cache,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		devMode:      devMode,
		startTime:    time.Now(),
		store:        st,
		cache:        cache,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerNotebooks()
	r.registerNotes()
	r.registerTags()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Inkwell Notes API
//	@version		0.1.0
//	@description	Backend for the Inkwell note-taking app: fingerprint-bound JWT sessions with rotation-on-refresh, plus notebooks, notes, tags and search.
//
//	@contact.name				Inkwell Team
//	@contact.url				https://github.com/inkwell-app/inkwell
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// session returns the session-guard middleware for protected routes.
func (r *Router) session() httpx.Middleware {
	m := &SessionMiddleware{Sessions: r.SessionService, DevMode: r.devMode}
	return m.Middleware()
}

// cached wraps a GET handler in the response cache, keyed per user so one
// account can never be served another's list.
func (r *Router) cached() httpx.Middleware {
	return cachex.Middleware(r.cache, cachex.MiddlewareConfig{
		Namespace: ResponseCacheNamespace,
		KeyFunc: func(req *http.Request) string {
			userID, _ := req.Context().Value(httpx.CtxKeyUserID).(string)
			return userID + " " + req.Method + " " + req.URL.RequestURI()
		},
	})
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Users: r.UserService, Sessions: r.SessionService}

	// Credential endpoints get the strict profile to slow brute force
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Refresh is unauthenticated by design: the refresh token is the credential
	r.Mux.Handle("POST /v1/auth/refresh-token",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Logout works without a valid session so expired clients can clean up
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/me",
		httpx.Chain(MeHandler(),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerNotebooks() {
	h := &NotebooksHandler{Notes: r.NotesService, Cache: r.cache}

	r.Mux.Handle("POST /v1/notebooks",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/notebooks",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
			r.cached(),
		),
	)
	r.Mux.Handle("GET /v1/notebooks/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
			r.cached(),
		),
	)
	r.Mux.Handle("PUT /v1/notebooks/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/notebooks/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerNotes() {
	h := &NotesHandler{Notes: r.NotesService, Cache: r.cache}

	r.Mux.Handle("POST /v1/notebooks/{id}/notes",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/notebooks/{id}/notes",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
			r.cached(),
		),
	)
	r.Mux.Handle("GET /v1/notes/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
			r.cached(),
		),
	)
	r.Mux.Handle("PUT /v1/notes/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/notes/{id}/pin",
		httpx.Chain(http.HandlerFunc(h.HandlePin),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/notes/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/search",
		httpx.Chain(http.HandlerFunc(h.HandleSearch),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
			r.cached(),
		),
	)
}

func (r *Router) registerTags() {
	h := &TagsHandler{Notes: r.NotesService, Cache: r.cache}

	r.Mux.Handle("POST /v1/tags",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/tags",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
			r.cached(),
		),
	)
	r.Mux.Handle("DELETE /v1/tags/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("PUT /v1/notes/{id}/tags/{tagID}",
		httpx.Chain(http.HandlerFunc(h.HandleAssign),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/notes/{id}/tags/{tagID}",
		httpx.Chain(http.HandlerFunc(h.HandleUnassign),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/notes/{id}/tags",
		httpx.Chain(http.HandlerFunc(h.HandleListByNote),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
			r.cached(),
		),
	)
}

func (r *Router) registerSystem() {
	// Health endpoints are polled by orchestrators; keep limits loose
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
