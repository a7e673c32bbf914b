package handlers

import (
	"bytes"
	"io"
	"net/http"

	"pennyjar/internal/service"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// readImageUpload reads the "photo" part of a multipart request, checks the
// size cap and sniffed content type, and stores the image under prefix.
// It writes the error response itself and reports success via ok.
func readImageUpload(w http.ResponseWriter, r *http.Request, storage *service.StorageService, prefix string, maxSize int64) (key string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Upload too large or malformed", "", nil)
		return "", false
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing photo upload", "", nil)
		return "", false
	}
	defer file.Close()

	if header.Size > maxSize {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Upload too large", "", nil)
		return "", false
	}

	// Sniff the real content type rather than trusting the client header
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		respondWithError(w, http.StatusBadRequest, "Unreadable upload", "", nil)
		return "", false
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !allowedImageTypes[contentType] {
		respondWithError(w, http.StatusUnsupportedMediaType, "Only JPEG, PNG and WebP images are accepted", "", nil)
		return "", false
	}

	body := io.MultiReader(bytes.NewReader(head), file)
	key, err = storage.Upload(r.Context(), prefix, contentType, body, header.Size)
	if err != nil {
		respondServiceError(w, "Error uploading photo", err)
		return "", false
	}

	return key, true
}
