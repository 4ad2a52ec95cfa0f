package libs

import (
	"io"
	"strings"

	"spooky-styles/models"

	"github.com/tealeg/xlsx"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportTimeFmt   = "2006-01-02 15:04:05"
)

func addHeader(sheet *xlsx.Sheet, headers ...string) {
	row := sheet.AddRow()
	for _, h := range headers {
		cell := row.AddCell()
		cell.SetValue(h)
		cell.GetStyle().Font.Bold = true
	}
}

func WriteProductsXLSX(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	addHeader(sheet, "ID", "Name", "Category", "Price", "Stock", "Active", "Colors", "Image", "CreatedAt", "UpdatedAt")
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetInt(p.StockQuantity)
		row.AddCell().SetBool(p.IsActive)

		colors := make([]string, 0, len(p.Colors))
		for _, c := range p.Colors {
			colors = append(colors, c.ColorName)
		}
		row.AddCell().SetValue(strings.Join(colors, ","))
		row.AddCell().SetValue(p.ImageURL)
		row.AddCell().SetValue(p.CreatedAt.Format(exportTimeFmt))
		row.AddCell().SetValue(p.UpdatedAt.Format(exportTimeFmt))
	}

	return file.Write(w)
}

func WriteOrdersXLSX(w io.Writer, orders []models.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}

	addHeader(sheet, "ID", "OrderNumber", "Customer", "Email", "Status", "PaymentStatus", "Provider",
		"Subtotal", "Shipping", "Total", "Country", "CreatedAt")
	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt(o.ID)
		row.AddCell().SetValue(o.OrderNumber)
		row.AddCell().SetValue(o.Shipping.FullName())
		row.AddCell().SetValue(o.Shipping.Email)
		row.AddCell().SetValue(o.Status)
		row.AddCell().SetValue(o.PaymentStatus)
		row.AddCell().SetValue(o.PaymentProvider)
		row.AddCell().SetValue(o.Subtotal.StringFixed(2))
		row.AddCell().SetValue(o.ShippingCost.StringFixed(2))
		row.AddCell().SetValue(o.Total.StringFixed(2))
		row.AddCell().SetValue(o.Shipping.Country)
		row.AddCell().SetValue(o.CreatedAt.Format(exportTimeFmt))
	}

	return file.Write(w)
}
