package router

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tavern-lab/backend/pkg/errorx"
)

type Response struct {
	Code  int    `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func NewResponse(data any) Response {
	return Response{Code: 0, Data: data}
}

func NewErrorResponse(err error) (Response, int) {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return Response{Code: int(errx.Code), Error: errx.Message}, errx.HTTPStatus()
	}

	return Response{
		Code:  int(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}, errorx.Unknown.HTTPStatus()
}

func WriteJson(w http.ResponseWriter, status int, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		return err
	}

	return nil
}
