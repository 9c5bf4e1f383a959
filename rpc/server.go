// Package rpc implements a minimal bencode-in/bencode-out RPC server: a
// single POST endpoint that dispatches on a "method" field to a table of
// registered handlers, exercising the full parse → accessor → serialize
// pipeline over HTTP.
package rpc

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/brindle-bt/brindle/bencode"
	"github.com/brindle-bt/brindle/errors"
	"github.com/brindle-bt/brindle/pkg/log"
	"github.com/brindle-bt/brindle/quark"
	"github.com/brindle-bt/brindle/store"
	"github.com/brindle-bt/brindle/variant"
)

// HandlerFunc handles one RPC method call: req is the parsed request dict,
// the returned Variant becomes the response dict's body.
type HandlerFunc func(ctx context.Context, req *variant.Variant) (*variant.Variant, error)

// Server is an httprouter-based HTTP server exposing a bencode RPC surface
// over a content store.
type Server struct {
	store    store.Store
	handlers map[quark.Quark]HandlerFunc
	http     *http.Server
}

// New constructs a Server backed by st, with the built-in store.put,
// store.get and store.delete methods already registered.
func New(addr string, st store.Store, shutdownTimeout time.Duration) *Server {
	s := &Server{
		store:    st,
		handlers: make(map[quark.Quark]HandlerFunc),
	}
	s.Register("store.put", s.handleStorePut)
	s.Register("store.get", s.handleStoreGet)
	s.Register("store.delete", s.handleStoreDelete)

	router := httprouter.New()
	router.POST("/v1/call", s.handleCall)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: shutdownTimeout,
	}
	return s
}

// Register adds a named handler to the dispatch table. Panics on a
// duplicate name, matching the driver-registry convention this module uses
// elsewhere (store.Register).
func (s *Server) Register(name string, fn HandlerFunc) {
	q := quark.Intern(name)
	if _, dup := s.handlers[q]; dup {
		panic("rpc: could not register duplicate method: " + name)
	}
	s.handlers[q] = fn
}

// Handler returns the server's http.Handler, for tests that want to drive
// it via httptest.NewServer without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving HTTP until the listener errors or is
// closed by Shutdown.
func (s *Server) ListenAndServe() error {
	log.Info("rpc: listening", log.Fields{"addr": s.http.Addr})
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, errors.NewIllegalSequence("rpc: could not read request body"))
		return
	}

	req, _, err := bencode.Parse(body)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Kind() != variant.Dict {
		writeError(w, errors.NewIllegalSequence("rpc: request body must be a bencoded dict"))
		return
	}

	methodBytes, ok := req.FindStrView(quark.KeyMethod)
	if !ok || len(methodBytes) == 0 {
		writeError(w, errors.NewIllegalSequence("rpc: missing method"))
		return
	}

	method := string(methodBytes)
	callFields := log.Fields{"method": method}

	handler, ok := s.handlers[quark.InternBytes(methodBytes)]
	if !ok {
		log.Warn("rpc: unknown method", callFields)
		writeError(w, errors.NewNotFound("rpc: unknown method: "+method))
		return
	}

	resp, err := handler(r.Context(), req)
	if err != nil {
		// Two Fielders here: the request's own context (method) merged
		// with the wrapped error's (message and type), so an operator
		// grepping logs for a failing method sees both without having to
		// correlate two separate lines.
		log.Error("rpc: handler failed", callFields, log.Err(err))
		writeError(w, err)
		return
	}

	writeDict(w, http.StatusOK, resp)
}

func writeDict(w http.ResponseWriter, status int, v *variant.Variant) {
	w.Header().Set("Content-Type", "application/x-bencode")
	w.WriteHeader(status)
	w.Write(bencode.Serialize(v))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	if e, ok := err.(*errors.Error); ok {
		status = e.Status()
		if e.Public() {
			msg = e.Error()
		}
	}

	resp := variant.NewDict(1)
	resp.AddStr(quark.KeyError, msg)
	writeDict(w, status, resp)
}
