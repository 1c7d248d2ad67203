package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookkita-api/internal/application/book"
	"github.com/bookkita-api/internal/domain"
)

// maxEbookUpload caps the multipart memory buffer for new titles.
const maxEbookUpload = 32 << 20 // 32 MiB

// BookHandler handles the ebook catalog endpoints.
type BookHandler struct {
	svc book.Service
}

func NewBookHandler(svc book.Service) *BookHandler {
	return &BookHandler{svc: svc}
}

// BooksEnvelope wraps catalog list responses.
type BooksEnvelope struct {
	Books []domain.Book `json:"books"`
	Error string        `json:"error,omitempty"`
}

// BookEnvelope wraps single catalog entry responses.
type BookEnvelope struct {
	Book  *domain.Book `json:"book,omitempty"`
	Error string       `json:"error,omitempty"`
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BooksEnvelope{Books: books})
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BookEnvelope{Book: b})
}

// Create adds a title to the catalog. The request is multipart: the catalog
// fields plus the ebook file itself under "ebook". The route is mounted
// behind RequireAuth.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxEbookUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	price, _ := strconv.Atoi(r.FormValue("price_idr"))
	req := domain.CreateBookRequest{
		Title:       r.FormValue("title"),
		Author:      r.FormValue("author"),
		Description: r.FormValue("description"),
		PriceIDR:    price,
	}

	file, header, err := r.FormFile("ebook")
	if err != nil {
		writeError(w, http.StatusBadRequest, "ebook file is required")
		return
	}
	defer file.Close()

	b, err := h.svc.Create(r.Context(), req, file, header.Header.Get("Content-Type"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, BookEnvelope{Book: b})
}

// Delete removes a title and its stored object. Mounted behind RequireAuth.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "book deleted"})
}

// Download issues a short-lived presigned URL for the ebook object.
// The route is mounted behind RequireAuth.
func (h *BookHandler) Download(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.DownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DownloadEnvelope{URL: url})
}
