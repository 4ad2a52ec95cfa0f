package libs

import (
	"bytes"
	"testing"
	"time"

	"spooky-styles/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestWriteProductsXLSX(t *testing.T) {
	products := []models.Product{{
		ID:            1,
		Name:          "Vampire Cape",
		Category:      "costumes",
		Price:         decimal.RequireFromString("39.5"),
		StockQuantity: 4,
		IsActive:      true,
		Colors:        []models.ProductColor{{ColorName: "Black"}, {ColorName: "Crimson"}},
		CreatedAt:     time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteProductsXLSX(&buf, products))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet := file.Sheet["Products"]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 2)

	row := sheet.Rows[1]
	assert.Equal(t, "Vampire Cape", row.Cells[1].String())
	assert.Equal(t, "39.50", row.Cells[3].String())
	assert.Equal(t, "Black,Crimson", row.Cells[6].String())
	assert.Equal(t, "2024-10-01 12:00:00", row.Cells[8].String())
}

func TestWriteOrdersXLSX(t *testing.T) {
	orders := []models.Order{{
		ID:          7,
		OrderNumber: "SS-20241031-ABCDEFGH",
		Status:      models.OrderStatusPaid,
		Shipping:    models.ShippingInfo{FirstName: "Lily", LastName: "Munster", Email: "lily@example.com"},
		Total:       decimal.RequireFromString("80"),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteOrdersXLSX(&buf, orders))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	row := file.Sheet["Orders"].Rows[1]
	assert.Equal(t, "SS-20241031-ABCDEFGH", row.Cells[1].String())
	assert.Equal(t, "Lily Munster", row.Cells[2].String())
	assert.Equal(t, "80.00", row.Cells[9].String())
}
