package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"caixa/internal/core"
)

// Create payloads are tiny; anything bigger is not a ledger entry.
const maxBodyBytes = 1 << 20

// createTransactionRequest mirrors the JSON create payload. Pointer fields
// distinguish absent keys from zero values.
type createTransactionRequest struct {
	Title  *string  `json:"title"`
	Amount *float64 `json:"amount"`
	Type   *string  `json:"type"`
}

var (
	errMissingField  = errors.New("missing required field")
	errWrongType     = errors.New("wrong JSON type")
	errMalformedBody = errors.New("malformed JSON body")
)

// parseCreateTransaction decodes and validates the create payload. The
// amount must arrive as a JSON number; a quoted number is a schema
// violation, not a value to coerce.
func parseCreateTransaction(w http.ResponseWriter, r *http.Request) (core.CreateInput, error) {
	var req createTransactionRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return core.CreateInput{}, &core.ValidationError{Field: typeErr.Field, Err: errWrongType}
		}
		return core.CreateInput{}, &core.ValidationError{Field: "body", Err: errMalformedBody}
	}
	// The body must be exactly one JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return core.CreateInput{}, &core.ValidationError{Field: "body", Err: errMalformedBody}
	}

	if req.Title == nil {
		return core.CreateInput{}, &core.ValidationError{Field: "title", Err: errMissingField}
	}
	if req.Amount == nil {
		return core.CreateInput{}, &core.ValidationError{Field: "amount", Err: errMissingField}
	}
	if req.Type == nil {
		return core.CreateInput{}, &core.ValidationError{Field: "type", Err: errMissingField}
	}

	in := core.CreateInput{
		Title:  *req.Title,
		Amount: *req.Amount,
		Type:   core.Type(*req.Type),
	}
	if err := in.Validate(); err != nil {
		return core.CreateInput{}, err
	}
	return in, nil
}
