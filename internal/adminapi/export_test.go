package adminapi

import (
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
)

func TestOrderCSVMarshal(t *testing.T) {
	rows := []orderCSVRow{
		{
			OrderNo:       "NX17000000000001",
			CustomerEmail: "jane@example.com",
			Status:        "paid",
			PaymentStatus: "success",
			TotalAmount:   "149.00",
			CreatedAt:     "2025-01-02T10:00:00Z",
		},
	}
	out, err := gocsv.MarshalString(&rows)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "order_no,customer_email,status,payment_status,total_amount,created_at", lines[0])
	assert.Contains(t, lines[1], "NX17000000000001")
	assert.Contains(t, lines[1], "149.00")
}

func TestProductCSVMarshal(t *testing.T) {
	rows := []productCSVRow{
		{Sku: "NX-RING-01", Title: "Gold Ring", Slug: "gold-ring", Price: "99.50", Stock: 3, IsActive: true},
	}
	out, err := gocsv.MarshalString(&rows)
	assert.NoError(t, err)
	assert.Contains(t, out, "sku,title,slug,price,stock,is_active")
	assert.Contains(t, out, "NX-RING-01,Gold Ring,gold-ring,99.50,3,true")
}
