package server

import (
	"net/http"

	"github.com/alexedwards/flow"

	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/service"
)

func (s *Server) mountEnquiries(r *flow.Mux, prefix string) {
	r.HandleFunc(prefix+"/import", s.handleImportEnquiries, http.MethodPost)
	r.HandleFunc(prefix+"/followup/:id", func(w http.ResponseWriter, r *http.Request) {
		var in service.PropertyFollowUpInput
		if _, err := s.decode(w, r, &in, nil); err != nil {
			s.fail(w, r, err)
			return
		}
		s.added(w, r, "Follow up added successfully")(s.svc.AddPropertyFollowUp(r.Context(), identityFrom(r.Context()), param(r, "id"), &in))
	}, http.MethodPost)
	r.HandleFunc(prefix+"/followup/:id", func(w http.ResponseWriter, r *http.Request) {
		s.listed(w, r)(s.svc.ListPropertyFollowUps(r.Context(), identityFrom(r.Context()), param(r, "id")))
	}, http.MethodGet)

	mount(r, prefix, crud{
		list: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListEnquiries(r.Context(), identityFrom(r.Context())))
		},
		add: func(w http.ResponseWriter, r *http.Request) {
			var in service.EnquiryInput
			if _, err := s.decode(w, r, &in, nil); err != nil {
				s.fail(w, r, err)
				return
			}
			s.added(w, r, "Enquiry added successfully")(s.svc.AddEnquiry(r.Context(), identityFrom(r.Context()), &in))
		},
	})
}

func (s *Server) handleImportEnquiries(w http.ResponseWriter, r *http.Request) {
	files, err := s.decode(w, r, nil, sheetTypes)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	file := files.First("file")
	if file == nil {
		s.fail(w, r, pipeline.Validation("No file uploaded"))
		return
	}

	n, err := s.svc.ImportEnquiries(r.Context(), identityFrom(r.Context()), file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.created(w, "Enquiries imported successfully", envelope{"inserted": n})
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	s.listed(w, r)(s.svc.Customers(r.Context(), identityFrom(r.Context())))
}

func (s *Server) mountPayments(r *flow.Mux, prefix string) {
	r.HandleFunc(prefix+"/:enquirerId", func(w http.ResponseWriter, r *http.Request) {
		s.listed(w, r)(s.svc.ListPayments(r.Context(), identityFrom(r.Context()), param(r, "enquirerId")))
	}, http.MethodGet)
	r.HandleFunc(prefix+"/add/:enquirerId", func(w http.ResponseWriter, r *http.Request) {
		var in service.PaymentInput
		files, err := s.decode(w, r, &in, mediaTypes)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.added(w, r, "Payment added successfully")(s.svc.AddPayment(r.Context(), identityFrom(r.Context()), param(r, "enquirerId"), &in, files))
	}, http.MethodPost)
	r.HandleFunc(prefix+"/delete/:id", func(w http.ResponseWriter, r *http.Request) {
		s.deleted(w, r, "Payment deleted successfully", s.svc.DeletePayment(r.Context(), identityFrom(r.Context()), param(r, "id")))
	}, http.MethodDelete)
}
