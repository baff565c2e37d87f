package handler

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/stemcapstone/smartgoals/internal/ctxkeys"
	"github.com/stemcapstone/smartgoals/internal/service"
)

// Largest upload accepted, matching the document size limit.
const maxUploadBytes = 20 << 20

type ResourceHandler struct {
	resourceService *service.ResourceService
}

func NewResourceHandler(resourceService *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService}
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resourceService.Resources(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resources)
}

// Create shares a resource with the group. A JSON body creates a link, a
// multipart form with a "file" part uploads a document.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.upload(w, r)
		return
	}

	var in service.ResourceInput
	if !decode(w, r, &in) {
		return
	}

	resource, err := h.resourceService.Link(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resource)
}

func (h *ResourceHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "No file uploaded")
		return
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close file", "error", closeErr)
		}
	}()

	in := service.ResourceInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}

	resource, err := h.resourceService.Upload(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), in, file, header)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resource)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.resourceService.Delete(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), r.PathValue("resourceID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
