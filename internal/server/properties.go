package server

import (
	"net/http"

	"github.com/alexedwards/flow"

	"github.com/reparvservices/reparv-server-sub002/internal/service"
)

func (s *Server) mountProperties(r *flow.Mux, prefix string) {
	r.HandleFunc(prefix+"/hotdeal/:id", func(w http.ResponseWriter, r *http.Request) {
		flag, err := s.svc.TogglePropertyHotDeal(r.Context(), identityFrom(r.Context()), param(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, "Hot deal change successfully", envelope{"hotDeal": flag})
	}, http.MethodPut)

	mount(r, prefix, crud{
		list: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListProperties(r.Context(), identityFrom(r.Context()), false))
		},
		active: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListProperties(r.Context(), identityFrom(r.Context()), true))
		},
		get: func(w http.ResponseWriter, r *http.Request) {
			s.fetched(w, r)(s.svc.GetProperty(r.Context(), param(r, "id")))
		},
		add: func(w http.ResponseWriter, r *http.Request) {
			var in service.PropertyInput
			files, err := s.decode(w, r, &in, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.added(w, r, "Property added successfully")(s.svc.AddProperty(r.Context(), identityFrom(r.Context()), &in, files))
		},
		edit: func(w http.ResponseWriter, r *http.Request) {
			var patch service.PropertyPatch
			files, err := s.decode(w, r, &patch, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.updated(w, r, "Property updated successfully")(s.svc.EditProperty(r.Context(), identityFrom(r.Context()), param(r, "id"), &patch, files))
		},
		status: func(w http.ResponseWriter, r *http.Request) {
			s.toggled(w, r, "Property status change successfully")(s.svc.TogglePropertyStatus(r.Context(), identityFrom(r.Context()), param(r, "id")))
		},
		delete: func(w http.ResponseWriter, r *http.Request) {
			s.deleted(w, r, "Property deleted successfully", s.svc.DeleteProperty(r.Context(), identityFrom(r.Context()), param(r, "id")))
		},
	})
}
