package handler

import (
	"net/http"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/response"
)

// multipartOverhead leaves room for form boundaries and headers around the file.
const multipartOverhead = 1 << 20

func (h *AccountHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	url, err := h.imageUsecase.Upload(r.Context(), usecase.UploadImageParams{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.writeError(w, err, "failed to upload image")
		return
	}

	response.JSON(w, http.StatusOK, payload.UploadImageResponse{URL: url})
}

func (h *AccountHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	var req payload.DeleteImageRequest
	if !h.decode(w, r, &req) {
		return
	}

	ignored, err := h.imageUsecase.Delete(r.Context(), req.URL)
	if err != nil {
		h.writeError(w, err, "failed to delete image")
		return
	}

	if ignored {
		response.JSON(w, http.StatusOK, payload.DeleteImageResponse{Message: "Image ignored (not managed by this service)", Ignored: true})
		return
	}

	response.JSON(w, http.StatusOK, payload.DeleteImageResponse{Message: "Image deleted successfully"})
}
