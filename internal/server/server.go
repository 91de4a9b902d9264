package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"

	"github.com/reparvservices/reparv-server-sub002/internal/metrics"
	"github.com/reparvservices/reparv-server-sub002/internal/service"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

type Server struct {
	logger  *logrus.Logger
	config  *types.Config
	svc     *service.Service
	auth    *Authenticator
	metrics *metrics.Metrics

	mux    *flow.Mux
	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	svc *service.Service,
	auth *Authenticator,
	m *metrics.Metrics,
) *Server {
	mux := flow.New()

	s := &Server{
		logger:  logger,
		config:  config,
		svc:     svc,
		auth:    auth,
		metrics: m,
		mux:     mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s
}

func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler(), http.MethodGet)
	}

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireRole(types.AuthAdmin))

		s.mountBlogs(r, "/admin/blogs")
		s.mountTestimonials(r, "/admin/testimonials")
		s.mountSliders(r, "/admin/sliders")
		s.mountPlans(r, "/admin/plans")
		s.mountMarketing(r, "/admin/marketing")
		s.mountProperties(r, "/admin/properties")

		s.mountPartners(r, "/admin/guest-users", types.RoleGuestUser)
		s.mountPartners(r, "/admin/sales-persons", types.RoleSalesPerson)
		s.mountPartners(r, "/admin/territory-partners", types.RoleTerritoryPartner)
		s.mountPartners(r, "/admin/project-partners", types.RoleProjectPartner)
		s.mountPartners(r, "/admin/employees", types.RoleEmployee)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireRole(types.AuthProjectPartner))

		s.mountPartners(r, "/project-partner/employees", types.RoleEmployee)
		s.mountPartners(r, "/project-partner/sales-persons", types.RoleSalesPerson)
		s.mountPartners(r, "/project-partner/territory-partners", types.RoleTerritoryPartner)
		s.mountEnquiries(r, "/project-partner/enquirers")
		s.mountProperties(r, "/project-partner/properties")
		s.mountMarketing(r, "/project-partner/marketing")
		r.HandleFunc("/project-partner/customers", s.handleCustomers, http.MethodGet)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireRole(types.AuthEmployee, types.AuthProjectPartner))

		r.HandleFunc("/employee/customers", s.handleCustomers, http.MethodGet)
		s.mountPayments(r, "/employee/payments")
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireRole(types.AuthCustomer))

		s.mountProperties(r, "/app/properties")
		s.mountWishlist(r, "/app/wishlist")
	})

	s.mountFrontend(r, "/frontend")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.ok(w, "ok", nil)
}

// crud holds the standard handlers of one entity. Nil handlers are not
// mounted.
type crud struct {
	list   http.HandlerFunc
	active http.HandlerFunc
	get    http.HandlerFunc
	add    http.HandlerFunc
	edit   http.HandlerFunc
	status http.HandlerFunc
	delete http.HandlerFunc
}

// mount registers the standard verbs under prefix. Entity-specific routes
// must be registered before mount so they win over "/:id".
func mount(r *flow.Mux, prefix string, c crud) {
	routes := []struct {
		pattern string
		method  string
		handler http.HandlerFunc
	}{
		{prefix, http.MethodGet, c.list},
		{prefix + "/active", http.MethodGet, c.active},
		{prefix + "/:id", http.MethodGet, c.get},
		{prefix + "/add", http.MethodPost, c.add},
		{prefix + "/edit/:id", http.MethodPut, c.edit},
		{prefix + "/status/:id", http.MethodPut, c.status},
		{prefix + "/delete/:id", http.MethodDelete, c.delete},
	}
	for _, rt := range routes {
		if rt.handler != nil {
			r.HandleFunc(rt.pattern, rt.handler, rt.method)
		}
	}
}

func param(r *http.Request, name string) string {
	return r.PathValue(name)
}
