package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelist-app/reelist-backend/api/controllers"
	"github.com/reelist-app/reelist-backend/api/middleware"
	"github.com/reelist-app/reelist-backend/internal/collections"
	"github.com/reelist-app/reelist-backend/internal/media"
	"github.com/reelist-app/reelist-backend/internal/memberships"
	"github.com/reelist-app/reelist-backend/pkg/config"
	"github.com/reelist-app/reelist-backend/pkg/logger"
	"github.com/reelist-app/reelist-backend/pkg/metrics"
	"github.com/reelist-app/reelist-backend/pkg/redis"
)

// Deps bundles everything the router needs. Optional entries may be nil; the
// middleware they feed degrades to a no-op.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Users       middleware.IdentitySyncer
	RateLimiter *redis.Client
	Metrics     *metrics.HTTPMetrics
	Registry    *prometheus.Registry
	ReadyDeps   map[string]controllers.Pinger

	Collections collections.Service
	Media       media.Service
	Memberships memberships.Service
}

// NewRouter assembles the full HTTP surface. Read endpoints accept anonymous
// callers so public collections stay reachable without a token; every write
// sits behind authentication and the mutation rate limiter.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.Metrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.ReadyDeps))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	authed := middleware.Auth(cfg.JWT, d.Users, logg)
	optional := middleware.AuthOptional(cfg.JWT, d.Users, logg)
	limited := middleware.MutationRateLimit(cfg.RateLimit, d.RateLimiter, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/collections", func(r chi.Router) {
			r.With(optional).Get("/", controllers.CollectionList(d.Collections, logg))
			r.With(authed, limited).Post("/", controllers.CollectionCreate(d.Collections, logg))

			r.Route("/{collectionID}", func(r chi.Router) {
				r.With(optional).Get("/", controllers.CollectionGet(d.Collections, logg))
				r.With(authed, limited).Patch("/", controllers.CollectionUpdate(d.Collections, logg))
				r.With(authed, limited).Delete("/", controllers.CollectionDelete(d.Collections, logg))

				r.Route("/media", func(r chi.Router) {
					r.With(optional).Get("/", controllers.CollectionMediaList(d.Media, logg))
					r.With(authed, limited).Post("/", controllers.CollectionMediaAdd(d.Media, logg))
					r.With(authed, limited).Patch("/{mediaID}", controllers.CollectionMediaUpdate(d.Media, logg))
					r.With(authed, limited).Delete("/{mediaID}", controllers.CollectionMediaRemove(d.Media, logg))
				})

				r.Route("/members", func(r chi.Router) {
					r.Use(authed)
					r.Get("/", controllers.MemberList(d.Memberships, logg))
					r.With(limited).Post("/", controllers.MemberInvite(d.Memberships, logg))
					r.With(limited).Patch("/{userID}", controllers.MemberUpdateRole(d.Memberships, logg))
					r.With(limited).Delete("/{userID}", controllers.MemberRemove(d.Memberships, logg))
				})
			})
		})

		r.Route("/media", func(r chi.Router) {
			r.With(optional).Get("/", controllers.MediaList(d.Media, logg))
			r.With(authed, limited).Post("/", controllers.MediaCreate(d.Media, logg))
			r.With(optional).Get("/{mediaID}", controllers.MediaGet(d.Media, logg))
			r.With(authed, limited).Patch("/{mediaID}", controllers.MediaUpdate(d.Media, logg))
			r.With(authed, limited).Delete("/{mediaID}", controllers.MediaDelete(d.Media, logg))
		})

		r.Route("/invitations", func(r chi.Router) {
			r.Use(authed)
			r.Get("/", controllers.InvitationList(d.Memberships, logg))
			r.With(limited).Post("/{collectionID}", controllers.InvitationRespond(d.Memberships, logg))
		})
	})

	return r
}
