package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ProductAdmin/pkg/kit"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errRevisionMismatch = errors.New("revision mismatch")

type Server struct {
	Service   *Service
	Container *Container
	Log       *zap.Logger

	// Guard wraps the mutating routes. Nil leaves them open.
	Guard func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Get("/state", s.state)
	r.Get("/categories", func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteJSON(w, http.StatusOK, Categories)
	})
	r.Get("/images", func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteJSON(w, http.StatusOK, ImagePool())
	})

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", s.list)
		pr.Get("/stats", s.stats)
		pr.Get("/export.xlsx", s.export)
		pr.Get("/{id}", s.get)

		pr.Group(func(mr chi.Router) {
			if s.Guard != nil {
				mr.Use(s.Guard)
			}
			mr.Post("/", s.create)
			mr.Put("/{id}", s.update)
			mr.Delete("/{id}", s.remove)
		})
	})

	return r
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Service.Ping(ctx); err != nil {
		s.log().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Container.State())
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid page", map[string]any{"cause": err.Error()})
		return
	}
	limit, err := queryInt(r, "limit", DefaultPageSize)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid limit", map[string]any{"cause": err.Error()})
		return
	}

	p, err := s.Container.GetAllProducts(r.Context(), page, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setETag(w, r)
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := s.Service.GetProduct(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setETag(w, r)
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Service.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setETag(w, r)
	kit.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	products, err := s.Service.All(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.setETag(w, r)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)
	if err := WriteXLSX(w, products); err != nil {
		// Headers are gone by now; all we can do is log.
		s.log().Error("xlsx export failed", zap.Error(err))
	}
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := kit.DecodeJSON(w, r, &in); err != nil {
		kit.WriteJSON(w, http.StatusBadRequest, Result{Error: "bad json: " + err.Error()})
		return
	}
	if !s.checkRevision(w, r) {
		return
	}

	res := s.Container.AddProduct(r.Context(), in)
	s.respond(w, r, http.StatusCreated, res)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch ProductPatch
	if err := kit.DecodeJSON(w, r, &patch); err != nil {
		kit.WriteJSON(w, http.StatusBadRequest, Result{Error: "bad json: " + err.Error()})
		return
	}
	if !s.checkRevision(w, r) {
		return
	}

	res := s.Container.UpdateProduct(r.Context(), id, patch)
	s.respond(w, r, http.StatusOK, res)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !s.checkRevision(w, r) {
		return
	}

	res := s.Container.DeleteProduct(r.Context(), id)
	s.respond(w, r, http.StatusOK, res)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, okStatus int, res Result) {
	if !res.Success {
		kit.WriteJSON(w, statusFor(res.Err()), res)
		return
	}
	s.setETag(w, r)
	kit.WriteJSON(w, okStatus, res)
}

// checkRevision enforces If-Match against the current revision. It is a
// check-then-act guard: a writer in another process can still slip in
// between the check and the write.
func (s *Server) checkRevision(w http.ResponseWriter, r *http.Request) bool {
	want := r.Header.Get("If-Match")
	if want == "" || want == "*" {
		return true
	}

	rev, err := s.Service.Revision(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return false
	}
	if want != quoteETag(rev) {
		kit.WriteJSON(w, http.StatusPreconditionFailed, Result{Error: errRevisionMismatch.Error()})
		return false
	}
	return true
}

func (s *Server) setETag(w http.ResponseWriter, r *http.Request) {
	rev, err := s.Service.Revision(r.Context())
	if err != nil {
		s.log().Warn("revision lookup failed", zap.Error(err))
		return
	}
	if rev != "" {
		w.Header().Set("ETag", quoteETag(rev))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log().Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	kit.WriteError(w, r, status, http.StatusText(status), map[string]any{"cause": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidPage):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func quoteETag(rev string) string { return `"` + rev + `"` }

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}
