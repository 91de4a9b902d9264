package server

import (
	"net/http"

	"github.com/alexedwards/flow"

	"github.com/reparvservices/reparv-server-sub002/internal/service"
)

func (s *Server) mountBlogs(r *flow.Mux, prefix string) {
	mount(r, prefix, crud{
		list: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListBlogs(r.Context(), false))
		},
		active: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListBlogs(r.Context(), true))
		},
		get: func(w http.ResponseWriter, r *http.Request) {
			s.fetched(w, r)(s.svc.GetBlog(r.Context(), param(r, "id")))
		},
		add: func(w http.ResponseWriter, r *http.Request) {
			var in service.BlogInput
			files, err := s.decode(w, r, &in, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.added(w, r, "Blog added successfully")(s.svc.AddBlog(r.Context(), &in, files))
		},
		edit: func(w http.ResponseWriter, r *http.Request) {
			var patch service.BlogPatch
			files, err := s.decode(w, r, &patch, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.updated(w, r, "Blog updated successfully")(s.svc.EditBlog(r.Context(), param(r, "id"), &patch, files))
		},
		status: func(w http.ResponseWriter, r *http.Request) {
			s.toggled(w, r, "Blog status change successfully")(s.svc.ToggleBlogStatus(r.Context(), param(r, "id")))
		},
		delete: func(w http.ResponseWriter, r *http.Request) {
			s.deleted(w, r, "Blog deleted successfully", s.svc.DeleteBlog(r.Context(), param(r, "id")))
		},
	})
}

func (s *Server) mountTestimonials(r *flow.Mux, prefix string) {
	mount(r, prefix, crud{
		list: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListTestimonials(r.Context(), false))
		},
		active: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListTestimonials(r.Context(), true))
		},
		get: func(w http.ResponseWriter, r *http.Request) {
			s.fetched(w, r)(s.svc.GetTestimonial(r.Context(), param(r, "id")))
		},
		add: func(w http.ResponseWriter, r *http.Request) {
			var in service.TestimonialInput
			files, err := s.decode(w, r, &in, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.added(w, r, "Testimonial added successfully")(s.svc.AddTestimonial(r.Context(), &in, files))
		},
		edit: func(w http.ResponseWriter, r *http.Request) {
			var patch service.TestimonialPatch
			files, err := s.decode(w, r, &patch, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.updated(w, r, "Testimonial updated successfully")(s.svc.EditTestimonial(r.Context(), param(r, "id"), &patch, files))
		},
		status: func(w http.ResponseWriter, r *http.Request) {
			s.toggled(w, r, "Testimonial status change successfully")(s.svc.ToggleTestimonialStatus(r.Context(), param(r, "id")))
		},
		delete: func(w http.ResponseWriter, r *http.Request) {
			s.deleted(w, r, "Testimonial deleted successfully", s.svc.DeleteTestimonial(r.Context(), param(r, "id")))
		},
	})
}

func (s *Server) mountSliders(r *flow.Mux, prefix string) {
	mount(r, prefix, crud{
		list: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListSliders(r.Context(), false))
		},
		active: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListSliders(r.Context(), true))
		},
		add: func(w http.ResponseWriter, r *http.Request) {
			files, err := s.decode(w, r, nil, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.added(w, r, "Slider added successfully")(s.svc.AddSlider(r.Context(), files))
		},
		edit: func(w http.ResponseWriter, r *http.Request) {
			files, err := s.decode(w, r, nil, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.updated(w, r, "Slider updated successfully")(s.svc.EditSlider(r.Context(), param(r, "id"), files))
		},
		status: func(w http.ResponseWriter, r *http.Request) {
			s.toggled(w, r, "Slider status change successfully")(s.svc.ToggleSliderStatus(r.Context(), param(r, "id")))
		},
		delete: func(w http.ResponseWriter, r *http.Request) {
			s.deleted(w, r, "Slider deleted successfully", s.svc.DeleteSlider(r.Context(), param(r, "id")))
		},
	})
}

func (s *Server) mountMarketing(r *flow.Mux, prefix string) {
	mount(r, prefix, crud{
		list: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListMarketingContent(r.Context(), identityFrom(r.Context()), false))
		},
		active: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListMarketingContent(r.Context(), identityFrom(r.Context()), true))
		},
		get: func(w http.ResponseWriter, r *http.Request) {
			s.fetched(w, r)(s.svc.GetMarketingContent(r.Context(), identityFrom(r.Context()), param(r, "id")))
		},
		add: func(w http.ResponseWriter, r *http.Request) {
			var in service.MarketingInput
			files, err := s.decode(w, r, &in, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.added(w, r, "Content uploaded successfully")(s.svc.AddMarketingContent(r.Context(), identityFrom(r.Context()), &in, files))
		},
		edit: func(w http.ResponseWriter, r *http.Request) {
			var patch service.MarketingPatch
			files, err := s.decode(w, r, &patch, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.updated(w, r, "Content updated successfully")(s.svc.EditMarketingContent(r.Context(), identityFrom(r.Context()), param(r, "id"), &patch, files))
		},
		status: func(w http.ResponseWriter, r *http.Request) {
			s.toggled(w, r, "Content status change successfully")(s.svc.ToggleMarketingStatus(r.Context(), identityFrom(r.Context()), param(r, "id")))
		},
		delete: func(w http.ResponseWriter, r *http.Request) {
			s.deleted(w, r, "Content deleted successfully", s.svc.DeleteMarketingContent(r.Context(), identityFrom(r.Context()), param(r, "id")))
		},
	})
}

func (s *Server) mountPlans(r *flow.Mux, prefix string) {
	r.HandleFunc(prefix+"/highlight/:id", func(w http.ResponseWriter, r *http.Request) {
		flag, err := s.svc.TogglePlanHighlight(r.Context(), param(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, "Plan highlight change successfully", envelope{"highlight": flag})
	}, http.MethodPut)

	r.HandleFunc(prefix+"/redeem-codes", func(w http.ResponseWriter, r *http.Request) {
		s.listed(w, r)(s.svc.ListRedeemCodes(r.Context(), r.URL.Query().Get("planId")))
	}, http.MethodGet)
	r.HandleFunc(prefix+"/redeem-codes/add", func(w http.ResponseWriter, r *http.Request) {
		var in service.RedeemCodeInput
		if _, err := s.decode(w, r, &in, nil); err != nil {
			s.fail(w, r, err)
			return
		}
		s.added(w, r, "Redeem code added successfully")(s.svc.AddRedeemCode(r.Context(), &in))
	}, http.MethodPost)
	r.HandleFunc(prefix+"/redeem-codes/status/:id", func(w http.ResponseWriter, r *http.Request) {
		s.toggled(w, r, "Redeem code status change successfully")(s.svc.ToggleRedeemCodeStatus(r.Context(), param(r, "id")))
	}, http.MethodPut)
	r.HandleFunc(prefix+"/redeem-codes/delete/:id", func(w http.ResponseWriter, r *http.Request) {
		s.deleted(w, r, "Redeem code deleted successfully", s.svc.DeleteRedeemCode(r.Context(), param(r, "id")))
	}, http.MethodDelete)

	mount(r, prefix, crud{
		list: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListPlans(r.Context(), false))
		},
		active: func(w http.ResponseWriter, r *http.Request) {
			s.listed(w, r)(s.svc.ListPlans(r.Context(), true))
		},
		get: func(w http.ResponseWriter, r *http.Request) {
			s.fetched(w, r)(s.svc.GetPlan(r.Context(), param(r, "id")))
		},
		add: func(w http.ResponseWriter, r *http.Request) {
			var in service.PlanInput
			files, err := s.decode(w, r, &in, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.added(w, r, "Plan added successfully")(s.svc.AddPlan(r.Context(), &in, files))
		},
		edit: func(w http.ResponseWriter, r *http.Request) {
			var patch service.PlanPatch
			files, err := s.decode(w, r, &patch, mediaTypes)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			s.updated(w, r, "Plan updated successfully")(s.svc.EditPlan(r.Context(), param(r, "id"), &patch, files))
		},
		status: func(w http.ResponseWriter, r *http.Request) {
			s.toggled(w, r, "Plan status change successfully")(s.svc.TogglePlanStatus(r.Context(), param(r, "id")))
		},
		delete: func(w http.ResponseWriter, r *http.Request) {
			s.deleted(w, r, "Plan deleted successfully", s.svc.DeletePlan(r.Context(), param(r, "id")))
		},
	})
}
