package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/sidebar"
	"git.home.luguber.info/inful/docnav/internal/site"
	"git.home.luguber.info/inful/docnav/internal/version"
)

const (
	defaultBuildsLimit = 20
	maxBuildsLimit     = 1000
)

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse is the body of /readyz once a snapshot is in service.
type ReadyResponse struct {
	Status      string    `json:"status"`
	BuildID     string    `json:"build_id"`
	Generation  uint64    `json:"generation"`
	BuiltAt     time.Time `json:"built_at"`
	Fingerprint string    `json:"fingerprint"`
	Documents   int       `json:"documents"`
	LastError   string    `json:"last_error,omitempty"`
}

// SidebarSummary is one element of /api/sidebars.
type SidebarSummary struct {
	Name      string `json:"name"`
	Documents int    `json:"documents"`
}

// SidebarResponse is the body of /api/sidebars/{name}.
type SidebarResponse struct {
	Name      string         `json:"name"`
	Items     []sidebar.Node `json:"items"`
	Documents []string       `json:"documents"`
}

type queryFunc func(snap *site.Snapshot, r *http.Request) (any, error)

// query serves fn's result as JSON from the current snapshot, caching the
// encoded body per generation.
func (s *Server) query(op string, fn queryFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.src.Current()
		if snap == nil {
			s.recorder.IncQuery(op, metrics.ResultFailed)
			s.errs.WriteErrorResponse(w, r, s.notReady())
			return
		}

		key := cacheKey(snap.Generation, r.URL.RequestURI())
		if body, ok := s.cache.get(key); ok {
			s.recorder.IncQuery(op, metrics.ResultSuccess)
			writeBody(w, body, "HIT", snap.Generation)
			return
		}

		v, err := fn(snap, r)
		if err != nil {
			result := metrics.ResultFailed
			if errors.Is(err, content.ErrNotFound) || ferrors.HasCategory(err, ferrors.CategoryNotFound) {
				result = metrics.ResultNotFound
			}
			s.recorder.IncQuery(op, result)
			s.errs.WriteErrorResponse(w, r, err)
			return
		}
		body, err := json.Marshal(v)
		if err != nil {
			s.recorder.IncQuery(op, metrics.ResultFailed)
			s.errs.WriteErrorResponse(w, r, ferrors.InternalError("failed to encode response").WithCause(err).Build())
			return
		}
		s.cache.add(key, body)
		s.recorder.IncQuery(op, metrics.ResultSuccess)
		writeBody(w, body, "MISS", snap.Generation)
	}
}

func writeBody(w http.ResponseWriter, body []byte, cache string, generation uint64) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cache)
	w.Header().Set("X-Snapshot-Generation", strconv.FormatUint(generation, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) notReady() error {
	b := ferrors.RuntimeError("no documentation snapshot is available yet").Retryable()
	if err := s.src.LastError(); err != nil {
		b = b.WithContext("last_error", err.Error())
	}
	return b.Build()
}

func docID(r *http.Request) (string, error) {
	id := strings.Trim(chi.URLParam(r, "*"), "/")
	if id == "" {
		return "", ferrors.ValidationError("document id is required").
			WithContext("path", r.URL.Path).
			Build()
	}
	return id, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: version.Version})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.src.Current()
	if snap == nil {
		s.errs.WriteErrorResponse(w, r, s.notReady())
		return
	}
	resp := ReadyResponse{
		Status:      "ready",
		BuildID:     snap.BuildID,
		Generation:  snap.Generation,
		BuiltAt:     snap.BuiltAt,
		Fingerprint: snap.Fingerprint,
		Documents:   snap.Registry.Len(),
	}
	if err := s.src.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listDocs(snap *site.Snapshot, _ *http.Request) (any, error) {
	docs := make([]content.Document, 0, snap.Registry.Len())
	for d := range snap.All() {
		docs = append(docs, d)
	}
	return docs, nil
}

func (s *Server) getDoc(snap *site.Snapshot, r *http.Request) (any, error) {
	id, err := docID(r)
	if err != nil {
		return nil, err
	}
	return snap.Metadata(id)
}

func (s *Server) neighbors(snap *site.Snapshot, r *http.Request) (any, error) {
	id, err := docID(r)
	if err != nil {
		return nil, err
	}
	return snap.NeighborsOf(id)
}

func (s *Server) path(snap *site.Snapshot, r *http.Request) (any, error) {
	id, err := docID(r)
	if err != nil {
		return nil, err
	}
	return snap.PathOf(id)
}

func (s *Server) sidebars(snap *site.Snapshot, _ *http.Request) (any, error) {
	out := make([]SidebarSummary, 0, len(snap.Sidebars.Names()))
	for t := range snap.Sidebars.Trees() {
		out = append(out, SidebarSummary{Name: t.Name(), Documents: t.Len()})
	}
	return out, nil
}

func (s *Server) sidebar(snap *site.Snapshot, r *http.Request) (any, error) {
	t, err := snap.Sidebars.Tree(chi.URLParam(r, "name"))
	if err != nil {
		return nil, err
	}
	items := t.Items()
	if items == nil {
		items = []sidebar.Node{}
	}
	return SidebarResponse{Name: t.Name(), Items: items, Documents: t.Documents()}, nil
}

func (s *Server) version(snap *site.Snapshot, _ *http.Request) (any, error) {
	return snap.Version(), nil
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if s.opts.Events == nil {
		s.errs.WriteErrorResponse(w, r, ferrors.NotFoundError("build history is disabled").Build())
		return
	}
	limit := defaultBuildsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errs.WriteErrorResponse(w, r, ferrors.ValidationError("limit must be a positive integer").
				WithContext("limit", raw).
				Build())
			return
		}
		limit = min(n, maxBuildsLimit)
	}
	// A build has at most two events; the oldest summary may be partial.
	builds, err := eventstore.RecentBuilds(r.Context(), s.opts.Events, 2*limit)
	if err != nil {
		s.errs.WriteErrorResponse(w, r, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to read build history").Build())
		return
	}
	if len(builds) > limit {
		builds = builds[:limit]
	}
	if builds == nil {
		builds = []eventstore.BuildSummary{}
	}
	writeJSON(w, http.StatusOK, builds)
}
