package handler

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func productsWorkbook(products []domain.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	addRow(sheet, "ID", "Name", "Category", "Description", "Price", "Quantity", "Primary Image", "Images")
	for _, p := range products {
		primary := ""
		if p.PrimaryImage != nil {
			primary = p.PrimaryImage.URL
		}
		addRow(sheet, p.ID, p.Name, p.Category, p.Description, p.Price.String(), p.Quantity, primary, len(p.Images))
	}
	return file, nil
}

func transactionsWorkbook(txs []domain.Transaction) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		return nil, err
	}

	addRow(sheet, "ID", "Tracking Number", "Name", "Email", "Location", "Phone",
		"Products", "Total Amount", "Status", "Payment Proof", "Created At")
	for _, tx := range txs {
		proof := ""
		if tx.PaymentProof != nil {
			proof = *tx.PaymentProof
		}
		addRow(sheet, tx.ID, tx.TrackingNumber, tx.Name, tx.Email, tx.Location, tx.Phone,
			tx.Products, tx.TotalAmount.String(), tx.Status.Label(), proof,
			tx.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}

func addRow(sheet *xlsx.Sheet, values ...any) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetValue(v)
	}
}

func writeWorkbook(c *gin.Context, name string, file *xlsx.File) {
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		log.Printf("write %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		return
	}

	filename := name + "-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *HTTPHandler) ExportProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	file, err := productsWorkbook(products)
	if err != nil {
		writeError(c, err)
		return
	}
	writeWorkbook(c, "products", file)
}

func (h *HTTPHandler) ExportTransactions(c *gin.Context) {
	txs, err := h.orders.ListTransactions(c.Request.Context(), c.Query("search"), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	file, err := transactionsWorkbook(txs)
	if err != nil {
		writeError(c, err)
		return
	}
	writeWorkbook(c, "transactions", file)
}
