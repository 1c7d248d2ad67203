package handler

import (
	"fmt"
	"net/http"
)

// PageHandler serves minimal server-rendered pages. The real storefront UI is
// a separate frontend; these routes exist so the route guard has pages to
// protect and redirect between.
type PageHandler struct{}

func NewPageHandler() *PageHandler { return &PageHandler{} }

// Page returns a handler rendering a bare page with the given title.
func (h *PageHandler) Page(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html><html><head><title>%s | Bookkita</title></head><body><h1>%s</h1></body></html>", title, title)
	}
}
