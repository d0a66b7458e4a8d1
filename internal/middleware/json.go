package middleware

import (
	"encoding/json"
	"net/http"

	"go-forum/internal/model"
	"go-forum/pkg/apierror"
)

func writeAPIError(w http.ResponseWriter, apiErr *apierror.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(model.APIResponse{Success: false, Error: apiErr})
}
