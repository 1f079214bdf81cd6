package explorer

import (
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/facet-dev/facet/reflection"
)

type server struct {
	log *zap.Logger
}

// Option configures the explorer handler.
type Option func(*server)

// WithLogger routes request and failure logs to l. The default logger
// discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *server) { s.log = l }
}

// Handler returns the explorer surface as a standalone handler.
func Handler(opts ...Option) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, opts...)
	return r
}

// RegisterRoutes mounts the explorer endpoints on an existing router.
func RegisterRoutes(r chi.Router, opts ...Option) {
	s := &server{log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	ensureDescriptors()

	r.Get("/types", s.listTypes)
	r.Get("/types/{name}", s.describeType)
	r.Get("/stats", s.stats)
}

func (s *server) listTypes(w http.ResponseWriter, r *http.Request) {
	types := reflection.Types()
	list := typeList{
		Count: int32(len(types)),
		Types: make([]typeSummary, 0, len(types)),
	}
	for _, t := range types {
		list.Types = append(list.Types, summarize(t))
	}
	sort.Slice(list.Types, func(i, j int) bool {
		return list.Types[i].Name < list.Types[j].Name
	})
	s.respond(w, r, http.StatusOK, &list)
}

func (s *server) describeType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	t, ok := reflection.GetType(name)
	if !ok {
		s.respond(w, r, http.StatusNotFound, &errorDescriptor{
			Error: fmt.Sprintf("type %q is not registered", name),
		})
		return
	}
	d := describe(t)
	s.respond(w, r, http.StatusOK, &d)
}

func (s *server) stats(w http.ResponseWriter, r *http.Request) {
	var st statsDescriptor
	for _, t := range reflection.Types() {
		st.Types++
		st.Properties += int32(t.PropertyCount())
		st.Methods += int32(t.MethodCount())
		switch typeShape(t) {
		case "enum":
			st.Enums++
		case "scalar":
			st.Scalars++
		case "array":
			st.Arrays++
		case "table":
			st.Tables++
		case "interface":
			st.Interfaces++
		case "object":
			st.Objects++
		default:
			st.Simple++
		}
	}
	s.respond(w, r, http.StatusOK, &st)
}

// respond serializes obj through the reflection engine and writes it as the
// response body.
func (s *server) respond(w http.ResponseWriter, r *http.Request, status int, obj any) {
	body, err := reflection.SerializeToJSON(obj, true)
	if err != nil {
		s.log.Error("explorer response serialization failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		http.Error(w, "response serialization failed", http.StatusInternalServerError)
		return
	}
	s.log.Debug("explorer request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
	io.WriteString(w, "\n")
}
