package api

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/julianstephens/nutrisnap/internal/models"
)

// validator is implemented by response types that have required fields.
// It runs right after decoding so a malformed payload never reaches the
// store.
type validator interface {
	validate() error
}

type errorBody struct {
	Error            string                       `json:"error"`
	Suggestions      models.FlexStrings           `json:"suggestions"`
	ValidationResult *models.IngredientValidation `json:"validation_result"`
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func decodeResponse(op string, res *http.Response, data []byte, out any) error {
	jsonBody := isJSON(res.Header.Get("Content-Type"))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var body errorBody
		if jsonBody {
			_ = json.Unmarshal(data, &body)
		}
		return httpError(op, res.StatusCode, body)
	}
	if !jsonBody {
		return protocolError(op, res.StatusCode, res.Header.Get("Content-Type"))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformedError(op, err)
	}
	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			return malformedError(op, err)
		}
	}
	return nil
}
