package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/indianleto/storefront-backend/pkg/errors"
	"github.com/indianleto/storefront-backend/pkg/validation"
)

// MaxBodyBytes caps every request body the api reads.
const MaxBodyBytes int64 = 1 << 20

// ReadBody buffers at most MaxBodyBytes of r.Body and puts the bytes back so
// later handlers can read them again.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, bodyError(err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// DecodeJSONBody decodes exactly one JSON value into dest. An empty body
// decodes as {}; anything after the value is malformed. Unknown fields are
// ignored.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()
	dec := json.NewDecoder(body)
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return bodyError(err)
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, "Request body too large")
	}
	return pkgerrors.Wrap(pkgerrors.CodeMalformed, err, "Invalid JSON payload")
}

// DecodeAndValidate decodes the body then runs struct validation on dest.
func DecodeAndValidate(r *http.Request, dest any) error {
	if err := DecodeJSONBody(r, dest); err != nil {
		return err
	}
	if errs := validation.Struct(dest); len(errs) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Validation error").WithDetails(errs)
	}
	return nil
}
