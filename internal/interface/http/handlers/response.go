package handlers

import (
	"encoding/json"
	goerrors "errors"
	"net/http"

	"github.com/Bedrock-Technology/uniBTC/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type errorBody struct {
	Code     uint16            `json:"code"`
	Name     string            `json:"name"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		// nolint:errcheck
		json.NewEncoder(w).Encode(body)
	}
}

// writeError maps typed errors onto their HTTP status and a structured body.
// Anything untyped is treated as internal and its detail kept out of the
// response.
func writeError(w http.ResponseWriter, err error) {
	var typed errors.Error
	if goerrors.As(err, &typed) {
		if typed.Code() == errors.INTERNAL_ERROR.Code {
			typed.Log().Error(err.Error())
		}
		writeJSON(w, typed.HttpStatus(), errorBody{
			Code:     typed.Code(),
			Name:     typed.CodeName(),
			Message:  typed.Error(),
			Metadata: typed.Metadata(),
		})
		return
	}
	log.WithError(err).Error("unhandled error")
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Code: errors.INTERNAL_ERROR.Code,
		Name: errors.INTERNAL_ERROR.Name, Message: "something went wrong",
	})
}

func decodeJSON(r *http.Request, out interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.INVALID_INPUT.New("invalid request body: %s", err)
	}
	return nil
}
