package server

import (
	"net/http"
	"strconv"

	"github.com/alexedwards/flow"
)

// mountFrontend registers the unauthenticated storefront reads. Only active
// rows are served.
func (s *Server) mountFrontend(r *flow.Mux, prefix string) {
	r.HandleFunc(prefix+"/blogs", func(w http.ResponseWriter, r *http.Request) {
		s.listed(w, r)(s.svc.ListBlogs(r.Context(), true))
	}, http.MethodGet)
	r.HandleFunc(prefix+"/blogs/:slug", func(w http.ResponseWriter, r *http.Request) {
		s.fetched(w, r)(s.svc.BlogBySlug(r.Context(), param(r, "slug")))
	}, http.MethodGet)

	r.HandleFunc(prefix+"/sliders", func(w http.ResponseWriter, r *http.Request) {
		s.listed(w, r)(s.svc.ListSliders(r.Context(), true))
	}, http.MethodGet)
	r.HandleFunc(prefix+"/plans", func(w http.ResponseWriter, r *http.Request) {
		s.listed(w, r)(s.svc.ListPlans(r.Context(), true))
	}, http.MethodGet)
	r.HandleFunc(prefix+"/testimonials", func(w http.ResponseWriter, r *http.Request) {
		s.listed(w, r)(s.svc.ListTestimonials(r.Context(), true))
	}, http.MethodGet)

	r.HandleFunc(prefix+"/properties", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		hot, _ := strconv.ParseBool(q.Get("hotdeal"))
		s.listed(w, r)(s.svc.PublicProperties(r.Context(), q.Get("city"), q.Get("category"), hot))
	}, http.MethodGet)
	r.HandleFunc(prefix+"/properties/:slug", func(w http.ResponseWriter, r *http.Request) {
		s.fetched(w, r)(s.svc.PropertyBySlug(r.Context(), param(r, "slug")))
	}, http.MethodGet)
}
