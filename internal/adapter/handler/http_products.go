package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/micro-shop/internal/core/catalog"
	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/core/service"
)

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if term := c.Query("search"); term != "" {
		products = catalog.FilterProducts(products, term)
	}
	respondList(c, products)
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProduct accepts a JSON body or a multipart form with optional
// images and primary_image_index.
func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var (
		in      service.ProductInput
		uploads []service.Upload
		primary int
	)

	if c.ContentType() == "multipart/form-data" {
		form, err := c.MultipartForm()
		if err != nil {
			badRequest(c, "invalid multipart form")
			return
		}
		patch, err := patchFromForm(form)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		in = patch.Input()

		files, closeAll, err := openUploads(form.File["images"])
		if err != nil {
			badRequest(c, "could not read uploaded images")
			return
		}
		defer closeAll()
		uploads = files

		if primary, err = formIndex(form, "primary_image_index", 0); err != nil {
			badRequest(c, err.Error())
			return
		}
	} else if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	p, err := h.products.CreateProduct(c.Request.Context(), in, uploads, primary)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// UpdateProduct changes only the fields present in the request.
func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch service.ProductPatch
	if c.ContentType() == "multipart/form-data" {
		form, err := c.MultipartForm()
		if err != nil {
			badRequest(c, "invalid multipart form")
			return
		}
		if patch, err = patchFromForm(form); err != nil {
			badRequest(c, err.Error())
			return
		}
	} else if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	p, err := h.products.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) UploadProductImages(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "invalid multipart form")
		return
	}
	uploads, closeAll, err := openUploads(form.File["images"])
	if err != nil {
		badRequest(c, "could not read uploaded images")
		return
	}
	defer closeAll()

	primary, err := formIndex(form, "primary_image_index", -1)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.products.UploadImages(c.Request.Context(), id, uploads, primary)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func openUploads(headers []*multipart.FileHeader) ([]service.Upload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, service.Upload{Filename: fh.Filename, Content: f})
	}
	return uploads, closeAll, nil
}

func formValue(form *multipart.Form, key string) (string, bool) {
	v, ok := form.Value[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func formIndex(form *multipart.Form, key string, def int) (int, error) {
	raw, ok := formValue(form, key)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidField(key)
	}
	return n, nil
}

type errInvalidField string

func (e errInvalidField) Error() string {
	return string(e) + " is invalid"
}

func patchFromForm(form *multipart.Form) (service.ProductPatch, error) {
	var patch service.ProductPatch
	for key, dst := range map[string]**string{
		"name":        &patch.Name,
		"category":    &patch.Category,
		"description": &patch.Description,
	} {
		if v, ok := formValue(form, key); ok {
			*dst = &v
		}
	}

	if raw, ok := formValue(form, "price"); ok {
		price, err := domain.ParseMoney(raw)
		if err != nil {
			return patch, errInvalidField("price")
		}
		patch.Price = &price
	}
	if raw, ok := formValue(form, "quantity"); ok {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return patch, errInvalidField("quantity")
		}
		patch.Quantity = &qty
	}
	return patch, nil
}
