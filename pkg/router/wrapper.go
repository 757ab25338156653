package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/ws"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func wrapHandler[Request, Response any](
	r *Router, method string, handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := r.newContext(w, req)
		defer func() { runClosers(ctx, r.closers) }()

		if req.Method != method {
			ctx = xcontext.WithError(ctx, errorx.New(errorx.BadRequest, "Method %s is not allowed", req.Method))
			writeError(ctx, w)
			return
		}

		var err error
		ctx, err = runMiddlewares(ctx, r.befores)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeError(ctx, w)
			return
		}

		var request Request
		if err := parseRequest(req, &request); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot parse request: %v", err)
			ctx = xcontext.WithError(ctx, errorx.New(errorx.BadRequest, "Invalid request"))
			writeError(ctx, w)
			return
		}

		resp, err := handler(ctx, &request)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeError(ctx, w)
			return
		}

		ctx = xcontext.WithResponse(ctx, resp)
		ctx, err = runMiddlewares(ctx, r.afters)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot run after middleware: %v", err)
			ctx = xcontext.WithError(ctx, errorx.Unknown)
			writeError(ctx, w)
			return
		}

		if err := WriteJson(w, http.StatusOK, NewResponse(resp)); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
			ctx = xcontext.WithError(ctx, errorx.New(errorx.BadResponse, "Cannot write the response"))
		}
	}
}

func wrapWebsocket[Request any](r *Router, handler WebsocketHandlerFunc[Request]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := r.newContext(w, req)
		defer func() { runClosers(ctx, r.closers) }()

		var err error
		ctx, err = runMiddlewares(ctx, r.befores)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeError(ctx, w)
			return
		}

		var request Request
		if err := parseQuery(req.URL.Query(), &request); err != nil {
			ctx = xcontext.WithError(ctx, errorx.New(errorx.BadRequest, "Invalid request"))
			writeError(ctx, w)
			return
		}

		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot upgrade websocket: %v", err)
			ctx = xcontext.WithError(ctx, errorx.New(errorx.BadRequest, "Cannot upgrade websocket"))
			return
		}

		client := ws.NewClient(conn, false)
		ctx = xcontext.WithWSClient(ctx, client)
		err = handler(ctx, &request)
		client.Close()
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
		}
	}
}

func writeError(ctx context.Context, w http.ResponseWriter) {
	resp, status := NewErrorResponse(xcontext.Error(ctx))
	if err := WriteJson(w, status, resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func parseRequest(req *http.Request, v any) error {
	switch req.Method {
	case http.MethodGet:
		return parseQuery(req.URL.Query(), v)

	case http.MethodPost:
		// Multipart bodies are read by the handler itself.
		if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
			return parseQuery(req.URL.Query(), v)
		}

		err := json.NewDecoder(req.Body).Decode(v)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	return errors.New("unsupported method")
}

func parseQuery(values url.Values, v any) error {
	input := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			input[k] = vs[0]
		} else {
			input[k] = vs
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
