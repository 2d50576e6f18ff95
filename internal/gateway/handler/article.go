package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"workshophub/internal/gateway/entity"
	mediarepo "workshophub/internal/gateway/repository/media"
	articlesvc "workshophub/internal/gateway/service/article"
)

// ArticleHandler serves the feed, detail, editor and media endpoints.
type ArticleHandler struct {
	svc *articlesvc.Service
}

func NewArticleHandler(svc *articlesvc.Service) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

func (h *ArticleHandler) HandleViews(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"views":      entity.Views,
		"categories": entity.Categories,
	})
}

func (h *ArticleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": list})
}

func (h *ArticleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in articlesvc.Draft
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	a, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/articles/"+a.ID.String())
	writeJSON(w, http.StatusCreated, a)
}

func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in articlesvc.Draft
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	a, err := h.svc.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleUploadCover takes a multipart "file" field.
func (h *ArticleHandler) HandleUploadCover(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, articlesvc.MaxCoverBytes+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, articlesvc.MaxCoverBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "read upload: "+err.Error())
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	a, err := h.svc.SetCover(r.Context(), r.PathValue("id"), header.Filename, contentType, data)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) HandleMedia(w http.ResponseWriter, r *http.Request) {
	obj, err := h.svc.Media(r.Context(), r.PathValue("key"))
	if err != nil {
		if errors.Is(err, mediarepo.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		writeInternal(w, r, err)
		return
	}
	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	_, _ = w.Write(obj.Data)
}

func (h *ArticleHandler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *articlesvc.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "invalid_argument", vErr.Error())
	case errors.Is(err, articlesvc.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "article not found")
	case errors.Is(err, articlesvc.ErrMediaMissing):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		writeInternal(w, r, err)
	}
}
