package utils

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Dispatch routes on the value of a path parameter. httprouter cannot hold
// /products/featured and /products/:id side by side, so the fixed names are
// registered under the parameter and picked here.
func Dispatch(param string, fixed map[string]httprouter.Handle, fallback httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if h, ok := fixed[ps.ByName(param)]; ok {
			h(w, r, ps)
			return
		}
		if fallback == nil {
			RespondWithError(w, http.StatusNotFound, "Not found")
			return
		}
		fallback(w, r, ps)
	}
}
