// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/monitor"
)

const maxRequestBodySize = 1 << 20

var errResourceNotFound = errors.New("resource not found")

// statusCode maps handler errors to http status codes.
func statusCode(err error) int {
	var merr *monitor.Error
	if errors.As(err, &merr) {
		switch merr.Kind {
		case monitor.KindAccountNotFound:
			return http.StatusNotFound
		case monitor.KindUnsupportedExchange:
			return http.StatusBadRequest
		case monitor.KindOperationNotSupported:
			return http.StatusNotImplemented
		default:
			return http.StatusBadGateway
		}
	}
	switch {
	case errors.Is(err, os.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("could not write json response", "status", status, "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, &api.ErrorResponse{Error: errorMessage(err)})
}

// errorMessage returns the client visible message for an error. Upstream
// exchange failures can carry signed request urls, so only a fixed message
// is returned for them; the cause is logged by the monitor service.
func errorMessage(err error) string {
	var merr *monitor.Error
	if errors.As(err, &merr) && merr.Kind == monitor.KindUpstream {
		if merr.ExchangeID == "" {
			return "exchange is unavailable"
		}
		return fmt.Sprintf("exchange %s is unavailable", merr.ExchangeID)
	}
	return err.Error()
}

// handler adapts a request function into a http handler. Successful
// responses are wrapped in the data envelope with the input status code;
// http.StatusNoContent responses have no body.
func handler[T any](status int, f func(context.Context, *http.Request) (T, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, err := f(r.Context(), r)
		if err != nil {
			writeError(w, statusCode(err), err)
			return
		}
		if status == http.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, status, &api.Response[T]{Data: resp})
	})
}

func decodeRequest[T any](r *http.Request) (*T, error) {
	req := new(T)
	body := http.MaxBytesReader(nil, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		return nil, fmt.Errorf("could not decode request body: %v: %w", err, os.ErrInvalid)
	}
	return req, nil
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, errResourceNotFound)
}
