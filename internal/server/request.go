package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and runs payload validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &badRequestError{msg: "request body is empty"}
		}
		return &badRequestError{msg: "malformed JSON body", err: err}
	}
	return validateStruct(dst)
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, &badRequestError{msg: "path parameter id must be a positive integer: " + strconv.Quote(raw)}
	}
	return id, nil
}
