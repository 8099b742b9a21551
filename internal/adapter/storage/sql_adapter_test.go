package storage

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/port"
)

// getSQLAdapter connects to MySQL by default, or to postgres when
// DB_DRIVER=postgres, and skips the test when the database is unreachable.
func getSQLAdapter(t *testing.T) (*SQLAdapter, *sql.DB) {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = DriverMySQL
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/microshop?parseTime=true"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		t.Skipf("%s not available: %v", driver, err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("%s not available: %v", driver, err)
	}

	adapter := NewSQLAdapter(db, driver)
	if err := adapter.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return adapter, db
}

func TestRebind(t *testing.T) {
	pg := NewSQLAdapter(nil, DriverPostgres)
	got := pg.rebind(`SELECT * FROM t WHERE a = ? AND b = ?`)
	if got != `SELECT * FROM t WHERE a = $1 AND b = $2` {
		t.Errorf("unexpected postgres query: %s", got)
	}

	my := NewSQLAdapter(nil, DriverMySQL)
	if got := my.rebind(`a = ?`); got != `a = ?` {
		t.Errorf("mysql query should be unchanged, got %s", got)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Errorf("unexpected escape: %s", got)
	}
}

func TestProductLifecycle(t *testing.T) {
	adapter, db := getSQLAdapter(t)
	defer db.Close()

	ctx := context.Background()

	product := domain.Product{
		Name:        "Test Mug",
		Category:    "Kitchen",
		Description: "ceramic",
		Price:       domain.MustMoney("12.50"),
		Quantity:    4,
	}
	if err := adapter.CreateProduct(ctx, &product); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	defer adapter.DeleteProduct(ctx, product.ID)

	if product.ID == 0 {
		t.Fatal("expected product id to be set")
	}

	now := time.Now().UTC().Truncate(time.Second)
	images := []domain.ProductImage{
		{URL: "/media/products/a.jpg", StorageKey: "products/a.jpg", CreatedAt: now},
		{URL: "/media/products/b.jpg", StorageKey: "products/b.jpg", IsPrimary: true, CreatedAt: now},
	}
	if err := adapter.SaveProductImages(ctx, product.ID, images); err != nil {
		t.Fatalf("SaveProductImages failed: %v", err)
	}
	if images[0].ID == 0 || images[1].ID == 0 {
		t.Fatal("expected image ids to be set")
	}

	// Flip the primary flag on the existing rows.
	images = domain.NormalizePrimary(images, 0)
	if err := adapter.SaveProductImages(ctx, product.ID, images); err != nil {
		t.Fatalf("SaveProductImages failed: %v", err)
	}

	got, err := adapter.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected product, got nil")
	}
	if got.Price.String() != "12.50" || got.Quantity != 4 {
		t.Errorf("unexpected product %+v", got)
	}
	if len(got.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(got.Images))
	}
	if got.PrimaryImage == nil || got.PrimaryImage.URL != "/media/products/a.jpg" {
		t.Errorf("unexpected primary image %+v", got.PrimaryImage)
	}

	got.Quantity = 0
	if err := adapter.UpdateProduct(ctx, *got); err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}

	list, err := adapter.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	var found bool
	for _, p := range list {
		if p.ID == product.ID {
			found = true
			if p.Quantity != 0 || len(p.Images) != 2 {
				t.Errorf("unexpected listed product %+v", p)
			}
		}
	}
	if !found {
		t.Error("product missing from list")
	}

	if err := adapter.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}
	if got, _ := adapter.GetProduct(ctx, product.ID); got != nil {
		t.Error("expected product to be deleted")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	adapter, db := getSQLAdapter(t)
	defer db.Close()

	p, err := adapter.GetProduct(context.Background(), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Error("expected nil for nonexistent product")
	}
}

func TestTransactionLifecycle(t *testing.T) {
	adapter, db := getSQLAdapter(t)
	defer db.Close()

	ctx := context.Background()
	tn := uuid.NewString()

	tx := domain.Transaction{
		TrackingNumber: tn,
		Name:           "Ada Lovelace",
		Email:          "ada@example.com",
		Location:       "London",
		Phone:          "555",
		Products:       "Mug (x2)",
		TotalAmount:    domain.MustMoney("25.50"),
		Status:         domain.OrderStatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := adapter.CreateTransaction(ctx, &tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	defer db.ExecContext(ctx, adapter.rebind(`DELETE FROM transactions WHERE id = ?`), tx.ID)

	got, err := adapter.GetTransactionByTrackingNumber(ctx, tn)
	if err != nil || got == nil {
		t.Fatalf("GetTransactionByTrackingNumber failed: %v", err)
	}
	if got.PaymentProof != nil || got.TotalAmount.String() != "25.50" {
		t.Errorf("unexpected transaction %+v", got)
	}

	if err := adapter.AttachPaymentProof(ctx, tx.ID, "/media/payment_proofs/p.png", "payment_proofs/p.png"); err != nil {
		t.Fatalf("AttachPaymentProof failed: %v", err)
	}
	got, _ = adapter.GetTransaction(ctx, tx.ID)
	if got.Status != domain.OrderStatusPaymentUploaded || got.PaymentProof == nil || got.PaymentProofKey != "payment_proofs/p.png" {
		t.Errorf("unexpected transaction after proof %+v", got)
	}

	if err := adapter.UpdateTransactionStatus(ctx, tx.ID, domain.OrderStatusShipped); err != nil {
		t.Fatalf("UpdateTransactionStatus failed: %v", err)
	}

	filters := []struct {
		name   string
		filter port.TransactionFilter
		want   bool
	}{
		{"name substring", port.TransactionFilter{Search: "LOVELACE"}, true},
		{"email substring", port.TransactionFilter{Search: "ada@"}, true},
		{"tracking exact", port.TransactionFilter{Search: tn}, true},
		{"tracking any case", port.TransactionFilter{Search: strings.ToUpper(tn)}, true},
		{"tracking prefix", port.TransactionFilter{Search: tn[:8] + "zz"}, false},
		{"status match", port.TransactionFilter{Search: tn, Status: domain.OrderStatusShipped}, true},
		{"status mismatch", port.TransactionFilter{Search: tn, Status: domain.OrderStatusPending}, false},
	}
	for _, f := range filters {
		txs, err := adapter.ListTransactions(ctx, f.filter)
		if err != nil {
			t.Fatalf("%s: ListTransactions failed: %v", f.name, err)
		}
		var found bool
		for _, x := range txs {
			if x.ID == tx.ID {
				found = true
			}
		}
		if found != f.want {
			t.Errorf("%s: expected found=%v", f.name, f.want)
		}
	}
}

func TestSettingsSingletons(t *testing.T) {
	adapter, db := getSQLAdapter(t)
	defer db.Close()

	ctx := context.Background()

	settings, err := adapter.GetSiteSettings(ctx)
	if err != nil {
		t.Fatalf("GetSiteSettings failed: %v", err)
	}
	if settings == nil {
		defaults := domain.DefaultSiteSettings()
		settings = &defaults
	}
	settings.StoreTag = "test-" + uuid.NewString()[:8]
	if err := adapter.SaveSiteSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSiteSettings failed: %v", err)
	}

	got, err := adapter.GetSiteSettings(ctx)
	if err != nil || got == nil {
		t.Fatalf("GetSiteSettings failed: %v", err)
	}
	if got.ID != settings.ID || got.StoreTag != settings.StoreTag {
		t.Errorf("expected %+v, got %+v", settings, got)
	}

	token := domain.AdminToken{Token: uuid.NewString(), CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := adapter.CreateAdminToken(ctx, token); err != nil {
		t.Fatalf("CreateAdminToken failed: %v", err)
	}
	defer db.ExecContext(ctx, adapter.rebind(`DELETE FROM admin_tokens WHERE token = ?`), token.Token)

	gotToken, err := adapter.GetAdminToken(ctx, token.Token)
	if err != nil || gotToken == nil {
		t.Fatalf("GetAdminToken failed: %v", err)
	}
	if !gotToken.CreatedAt.Equal(token.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", token.CreatedAt, gotToken.CreatedAt)
	}

	if missing, _ := adapter.GetAdminToken(ctx, "missing"); missing != nil {
		t.Error("expected nil for unknown token")
	}
}
