package server

import (
	"net/http"

	"github.com/alexedwards/flow"

	"github.com/reparvservices/reparv-server-sub002/internal/service"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

func (s *Server) mountPartners(r *flow.Mux, prefix string, role types.Role) {
	r.HandleFunc(prefix+"/assignlogin/:id", s.handleAssignLogin(role), http.MethodPut)
	r.HandleFunc(prefix+"/followup/:id", s.handleAddFollowUp(role), http.MethodPost)
	r.HandleFunc(prefix+"/followup/:id", s.handleFollowUpHistory(role), http.MethodGet)

	mount(r, prefix, crud{
		list:   s.handleListPartners(role, false),
		active: s.handleListPartners(role, true),
		get:    s.handleGetPartner(role),
		add:    s.handleAddPartner(role),
		edit:   s.handleEditPartner(role),
		status: s.handleTogglePartner(role),
		delete: s.handleDeletePartner(role),
	})
}

func (s *Server) handleListPartners(role types.Role, activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.svc.ListPartners(r.Context(), identityFrom(r.Context()), role, activeOnly)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, "Fetched successfully", envelope{"data": rows})
	}
}

func (s *Server) handleGetPartner(role types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.svc.GetPartner(r.Context(), identityFrom(r.Context()), role, param(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, "Fetched successfully", envelope{"data": p})
	}
}

func (s *Server) handleAddPartner(role types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.PartnerInput
		files, err := s.decode(w, r, &in, mediaTypes)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		p, err := s.svc.AddPartner(r.Context(), identityFrom(r.Context()), role, &in, files)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.created(w, string(role)+" added successfully", envelope{"id": p.ID, "data": p})
	}
}

func (s *Server) handleEditPartner(role types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch service.PartnerPatch
		files, err := s.decode(w, r, &patch, mediaTypes)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		p, err := s.svc.EditPartner(r.Context(), identityFrom(r.Context()), role, param(r, "id"), &patch, files)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, string(role)+" updated successfully", envelope{"data": p})
	}
}

func (s *Server) handleTogglePartner(role types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := s.svc.TogglePartnerStatus(r.Context(), identityFrom(r.Context()), role, param(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, string(role)+" status change successfully", envelope{"status": status})
	}
}

func (s *Server) handleDeletePartner(role types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.DeletePartner(r.Context(), identityFrom(r.Context()), role, param(r, "id")); err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, string(role)+" deleted successfully", nil)
	}
}

func (s *Server) handleAssignLogin(role types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.LoginInput
		if _, err := s.decode(w, r, &in, nil); err != nil {
			s.fail(w, r, err)
			return
		}

		msg, err := s.svc.AssignLogin(r.Context(), identityFrom(r.Context()), role, param(r, "id"), &in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, msg, nil)
	}
}

func (s *Server) handleAddFollowUp(role types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.FollowUpInput
		if _, err := s.decode(w, r, &in, nil); err != nil {
			s.fail(w, r, err)
			return
		}

		f, err := s.svc.AddFollowUp(r.Context(), identityFrom(r.Context()), role, param(r, "id"), &in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.created(w, "Follow up added successfully", envelope{"data": f})
	}
}

func (s *Server) handleFollowUpHistory(role types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.svc.FollowUpHistory(r.Context(), identityFrom(r.Context()), role, param(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, "Fetched successfully", envelope{"data": rows})
	}
}
