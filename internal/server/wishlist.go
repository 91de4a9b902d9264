package server

import (
	"net/http"

	"github.com/alexedwards/flow"

	"github.com/reparvservices/reparv-server-sub002/internal/service"
)

func (s *Server) mountWishlist(r *flow.Mux, prefix string) {
	mount(r, prefix, crud{
		list: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.Wishlist(r.Context(), identityFrom(r.Context())))
		},
		add: func(w http.ResponseWriter, r *http.Request) {
			var in service.WishlistInput
			if _, err := s.decode(w, r, &in, nil); err != nil {
				s.fail(w, r, err)
				return
			}
			s.added(w, r, "Added to wishlist")(s.svc.AddToWishlist(r.Context(), identityFrom(r.Context()), &in))
		},
		delete: func(w http.ResponseWriter, r *http.Request) {
			s.deleted(w, r, "Removed from wishlist", s.svc.RemoveFromWishlist(r.Context(), identityFrom(r.Context()), param(r, "id")))
		},
	})
}
