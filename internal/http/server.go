package http

import (
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/gourmand-app/gourmand/internal/address"
	"github.com/gourmand-app/gourmand/internal/auth"
	"github.com/gourmand-app/gourmand/internal/basket"
	"github.com/gourmand-app/gourmand/internal/catalog"
	"github.com/gourmand-app/gourmand/internal/checkout"
	"github.com/gourmand-app/gourmand/internal/config"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/notification"
	"github.com/gourmand-app/gourmand/internal/order"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/gourmand-app/gourmand/internal/update"
	"github.com/gourmand-app/gourmand/internal/wishlist"
	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Server is the localhost bridge a rendering shell attaches to. Every screen
// the shell shows is fed from here; the shell holds no storefront state of
// its own.
type Server struct {
	log zerolog.Logger
	sse *sse.Server

	config      *config.AppConfig
	cookieStore *sessions.CookieStore

	version string
	commit  string
	date    string

	authService  auth.Service
	sessions     *session.Store
	credRepo     domain.CredentialRepo
	updateSvc    *update.Service
	notification notification.Service

	catalog   *catalog.Controller
	basket    *basket.Controller
	wishlist  *wishlist.Controller
	addresses *address.Controller
	orders    *order.Controller
	checkout  *checkout.Controller
}

func NewServer(
	log logger.Logger,
	cfg *config.AppConfig,
	sseServer *sse.Server,
	version string,
	commit string,
	date string,
	authService auth.Service,
	sessionStore *session.Store,
	credRepo domain.CredentialRepo,
	updateSvc *update.Service,
	notificationSvc notification.Service,
	catalogCtl *catalog.Controller,
	basketCtl *basket.Controller,
	wishlistCtl *wishlist.Controller,
	addressCtl *address.Controller,
	orderCtl *order.Controller,
	checkoutCtl *checkout.Controller,
) Server {
	return Server{
		log:     log.With().Str("module", "http").Logger(),
		sse:     sseServer,
		config:  cfg,
		version: version,
		commit:  commit,
		date:    date,

		cookieStore: sessions.NewCookieStore([]byte(cfg.Config.SessionSecret)),

		authService:  authService,
		sessions:     sessionStore,
		credRepo:     credRepo,
		updateSvc:    updateSvc,
		notification: notificationSvc,

		catalog:   catalogCtl,
		basket:    basketCtl,
		wishlist:  wishlistCtl,
		addresses: addressCtl,
		orders:    orderCtl,
		checkout:  checkoutCtl,
	}
}

func (s Server) Open() error {
	addr := fmt.Sprintf("%v:%v", s.config.Config.Bridge.Host, s.config.Config.Bridge.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	server := http.Server{
		Handler: s.Handler(),
	}

	s.log.Info().Msgf("starting bridge, listening on %s", listener.Addr().String())

	return server.Serve(listener)
}

func (s Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware(&s.log))

	c := cors.New(cors.Options{
		AllowCredentials:   true,
		AllowedMethods:     []string{"HEAD", "OPTIONS", "GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowOriginFunc:    func(origin string) bool { return true },
		OptionsPassthrough: true,
	})

	r.Use(c.Handler)

	enc := encoder{}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", newAuthHandler(enc, s.log, s.cookieStore, s.authService, s.sessions).Routes)
		r.Route("/healthz", newHealthHandler(enc, s.credRepo).Routes)
		r.Route("/catalog", newCatalogHandler(enc, s.catalog).Routes)

		authedRouter := r.Group(nil)
		authedRouter.Use(s.IsAuthenticated)

		authedRouter.Get("/session", s.handleSession)
		authedRouter.Get("/updates/latest", s.handleLatestUpdate)
		authedRouter.Route("/basket", newBasketHandler(enc, s.basket).Routes)
		authedRouter.Route("/wishlist", newWishlistHandler(enc, s.wishlist).Routes)
		authedRouter.Route("/addresses", newAddressHandler(enc, s.addresses).Routes)
		authedRouter.Route("/orders", newOrderHandler(enc, s.orders).Routes)
		authedRouter.Route("/checkout", newCheckoutHandler(enc, s.checkout).Routes)
		authedRouter.Route("/notifications", newNotificationHandler(s.notification).Routes)

		authedRouter.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
			s.sse.Headers = map[string]string{
				"Content-Type":      "text/event-stream",
				"Cache-Control":     "no-cache",
				"Connection":        "keep-alive",
				"X-Accel-Buffering": "no",
			}
			s.sse.ServeHTTP(w, r)
		})
	})

	return r
}

// handleSession returns the full session snapshot: who is logged in plus the
// three badge counters for persistent chrome.
func (s Server) handleSession(w http.ResponseWriter, r *http.Request) {
	enc := encoder{}
	enc.StatusResponse(r.Context(), w, s.sessions.Snapshot(), http.StatusOK)
}

func (s Server) handleLatestUpdate(w http.ResponseWriter, r *http.Request) {
	enc := encoder{}
	release := s.updateSvc.Latest()
	if release == nil {
		enc.StatusResponse(r.Context(), w, map[string]string{"version": s.version, "status": "up to date"}, http.StatusOK)
		return
	}
	enc.StatusResponse(r.Context(), w, release, http.StatusOK)
}
