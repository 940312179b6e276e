package products

import (
	"context"
	"fmt"
	"image"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"gadgethub/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
)

const (
	maxUploadSize = 10 << 20
	mainWidth     = 800
	thumbWidth    = 300
	productPicDir = "productpic"
)

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

// UploadProductImage stores a resized copy plus a thumbnail of the "image"
// form file and points the product at it.
func (h *Handlers) UploadProductImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	oid, err := utils.ParseObjectID(ps.ByName("id"), "product")
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if _, err := h.svc.Active(ctx, oid); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !supportedImageTypes[ct] {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid file type. Supported formats: JPEG, PNG, GIF, BMP, TIFF.")
		return
	}

	publicPath, err := saveProductImage(file, h.staticDir, oid.Hex())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	p, err := h.svc.SetImage(ctx, oid, publicPath)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, p, "Product image updated")
}

// saveProductImage writes <id>.jpg and <id>_thumb.jpg under staticDir and
// returns the public path of the main image.
func saveProductImage(src multipart.File, staticDir, id string) (string, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", utils.Validation("Uploaded file is not a readable image")
	}

	dir := filepath.Join(staticDir, productPicDir)
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	full := fitWidth(img, mainWidth)
	if err := imaging.Save(full, filepath.Join(dir, id+".jpg")); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	thumb := fitWidth(img, thumbWidth)
	if err := imaging.Save(thumb, filepath.Join(dir, id+"_thumb.jpg")); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}

	return "/static/" + productPicDir + "/" + id + ".jpg", nil
}

// fitWidth shrinks img to width, keeping the aspect ratio. Smaller images
// are returned unchanged.
func fitWidth(img image.Image, width int) image.Image {
	if img.Bounds().Dx() <= width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}
