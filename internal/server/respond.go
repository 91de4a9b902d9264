package server

import (
	"encoding/json"
	"net/http"

	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
)

// envelope is the JSON body of every response: a message plus any extra
// top-level keys.
type envelope map[string]any

func (s *Server) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) ok(w http.ResponseWriter, message string, extra envelope) {
	s.respond(w, http.StatusOK, message, extra)
}

func (s *Server) created(w http.ResponseWriter, message string, extra envelope) {
	s.respond(w, http.StatusCreated, message, extra)
}

func (s *Server) respond(w http.ResponseWriter, status int, message string, extra envelope) {
	body := envelope{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, detail any) {
	body := envelope{"message": message}
	if detail != nil {
		body["error"] = detail
	}
	s.writeJSON(w, status, body)
}

// fail maps a service error onto its status code. Validation failures carry
// their per-field tags; server-side failures carry the underlying error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	perr := pipeline.Classify(err, pipeline.KindUnexpected, "Internal server error")
	status := perr.Kind.HTTPStatus()

	var detail any
	switch {
	case len(perr.Fields) > 0:
		detail = perr.Fields
	case status >= http.StatusInternalServerError && perr.Err != nil:
		detail = perr.Err.Error()
	}

	entry := s.logger.WithError(err).WithField("path", r.URL.Path).WithField("kind", perr.Kind.String())
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	s.writeError(w, status, perr.Message, detail)
}

// The helpers below adapt a service call's (value, error) pair onto a
// response, so a handler can write s.fetched(w, r)(s.svc.GetBlog(ctx, id)).

func (s *Server) listed(w http.ResponseWriter, r *http.Request) func(any, error) {
	return func(rows any, err error) {
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, "Fetched successfully", envelope{"data": rows})
	}
}

func (s *Server) fetched(w http.ResponseWriter, r *http.Request) func(any, error) {
	return s.listed(w, r)
}

func (s *Server) added(w http.ResponseWriter, r *http.Request, message string) func(any, error) {
	return func(v any, err error) {
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.created(w, message, envelope{"data": v})
	}
}

func (s *Server) updated(w http.ResponseWriter, r *http.Request, message string) func(any, error) {
	return func(v any, err error) {
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, message, envelope{"data": v})
	}
}

func (s *Server) toggled(w http.ResponseWriter, r *http.Request, message string) func(any, error) {
	return func(status any, err error) {
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.ok(w, message, envelope{"status": status})
	}
}

func (s *Server) deleted(w http.ResponseWriter, r *http.Request, message string, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, message, nil)
}
