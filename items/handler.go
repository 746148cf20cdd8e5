package items

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/campusconnect/server/auth"
)

// CreateItemHandler posts a new lost-and-found item on behalf of the
// authenticated caller. Mounted behind auth.
func CreateItemHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req createItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		id, err := svc.CreateItem(r.Context(), claims.ID, req)
		if err != nil {
			encodeError(err, w)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, id))
		w.WriteHeader(http.StatusCreated)
		encodeResponse(w, map[string]interface{}{"id": id})
	})
}

func GetItemHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		item, err := svc.GetItem(r.Context(), ID(id))
		if err != nil {
			encodeError(err, w)
			return
		}
		encodeResponse(w, item)
	})
}

func ListItemsHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		list, err := svc.ListItems(r.Context())
		if err != nil {
			encodeError(err, w)
			return
		}
		encodeResponse(w, map[string]interface{}{"items": list})
	})
}

// ListMyItemsHandler lists the authenticated caller's own postings.
func ListMyItemsHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		list, err := svc.ListUserItems(r.Context(), claims.ID)
		if err != nil {
			encodeError(err, w)
			return
		}
		encodeResponse(w, map[string]interface{}{"items": list})
	})
}

func encodeResponse(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func encodeError(err error, w http.ResponseWriter) {
	switch {
	case errors.Is(err, ErrInvalidItem):
		w.WriteHeader(http.StatusUnprocessableEntity)
	case errors.Is(err, ErrItemNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, errServiceUnavailable):
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	if encErr := json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	}); encErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
