package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rl1809/micro-shop/internal/core/catalog"
	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/core/service"
)

// File is one part of a multipart upload.
type File struct {
	Name    string
	Content io.Reader
}

// ProductForm is the admin "add product" form.
type ProductForm struct {
	Name              string
	Category          string
	Description       string
	Price             string
	Quantity          int
	Images            []File
	PrimaryImageIndex int
}

type formBody struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newFormBody() *formBody {
	f := &formBody{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *formBody) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *formBody) file(field string, file File) {
	if f.err != nil {
		return
	}
	part, err := f.w.CreateFormFile(field, file.Name)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = io.Copy(part, file.Content)
}

func (f *formBody) close() (io.Reader, string, error) {
	if f.err != nil {
		return nil, "", fmt.Errorf("build form: %w", f.err)
	}
	if err := f.w.Close(); err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	return &f.buf, f.w.FormDataContentType(), nil
}

func (c *Client) sendForm(ctx context.Context, method, path string, form *formBody, out any) error {
	body, contentType, err := form.close()
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, nil, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10) + "/"
}

// ListProducts fetches the whole catalog; filtering and paging happen on the
// caller's side.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/products/", nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ProductPage asks the backend for one page of the catalog.
func (c *Client) ProductPage(ctx context.Context, search string, page, limit int) (catalog.Page[domain.Product], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if search != "" {
		q.Set("search", search)
	}

	var p catalog.Page[domain.Product]
	if err := c.get(ctx, "/products/", q, &p); err != nil {
		return p, fmt.Errorf("list products page %d: %w", page, err)
	}
	return p, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, productPath(id), nil, &p); err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductForm) (*domain.Product, error) {
	form := newFormBody()
	form.field("name", in.Name)
	form.field("category", in.Category)
	form.field("description", in.Description)
	form.field("price", in.Price)
	form.field("quantity", strconv.Itoa(in.Quantity))
	for _, img := range in.Images {
		form.file("images", img)
	}
	if len(in.Images) > 0 {
		form.field("primary_image_index", strconv.Itoa(in.PrimaryImageIndex))
	}

	var p domain.Product
	if err := c.sendForm(ctx, http.MethodPost, "/products/", form, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

// UpdateProduct changes only the fields set in patch.
func (c *Client) UpdateProduct(ctx context.Context, id int64, patch service.ProductPatch) (*domain.Product, error) {
	var p domain.Product
	if err := c.sendJSON(ctx, http.MethodPatch, productPath(id), patch, &p); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.sendJSON(ctx, http.MethodDelete, productPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

// UploadProductImages adds images to a product. primary indexes into images;
// a negative value keeps the current primary image.
func (c *Client) UploadProductImages(ctx context.Context, id int64, images []File, primary int) (*domain.Product, error) {
	form := newFormBody()
	for _, img := range images {
		form.file("images", img)
	}
	if primary >= 0 {
		form.field("primary_image_index", strconv.Itoa(primary))
	}

	var p domain.Product
	if err := c.sendForm(ctx, http.MethodPost, productPath(id)+"upload-images/", form, &p); err != nil {
		return nil, fmt.Errorf("upload images for product %d: %w", id, err)
	}
	return &p, nil
}

// ExportProducts streams the catalog spreadsheet into w.
func (c *Client) ExportProducts(ctx context.Context, w io.Writer) error {
	return c.download(ctx, "/products/export/", w)
}

func (c *Client) download(ctx context.Context, path string, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", path, err)
	}
	return nil
}
