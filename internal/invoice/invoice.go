package invoice

import (
	"fmt"
	"html/template"
	"io"

	"tajirpos/internal/domain"
)

// StoreName is the heading printed on every invoice.
const StoreName = "التاجر الذكي"

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head>
<meta charset="UTF-8">
<title>فاتورة رقم #{{.Number}}</title>
<style>
  body { font-family: 'Tajawal', sans-serif; padding: 20px; max-width: 800px; margin: 0 auto; }
  .header { text-align: center; margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
  .store-name { font-size: 24px; font-weight: bold; margin-bottom: 5px; }
  .invoice-details { display: flex; justify-content: space-between; margin-bottom: 20px; color: #555; font-size: 14px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
  th { background-color: #f8f9fa; padding: 10px; text-align: right; border-bottom: 2px solid #ddd; }
  td { padding: 10px; border-bottom: 1px solid #eee; }
  .total-section { display: flex; justify-content: flex-end; margin-top: 20px; }
  .total-box { background-color: #f8f9fa; padding: 20px; border-radius: 8px; width: 250px; }
  .total-row { display: flex; justify-content: space-between; margin-bottom: 10px; font-weight: bold; }
  .footer { margin-top: 40px; text-align: center; font-size: 12px; color: #777; border-top: 1px solid #eee; padding-top: 20px; }
  @media print { body { -webkit-print-color-adjust: exact; } }
</style>
</head>
<body>
  <div class="header">
    <div class="store-name">{{.StoreName}}</div>
    <div>فاتورة ضريبية مبسطة</div>
  </div>

  <div class="invoice-details">
    <div>رقم الفاتورة: #{{.Number}}</div>
    <div>التاريخ: {{.Issued}}</div>
  </div>

  <table>
    <thead>
      <tr>
        <th>المنتج</th>
        <th>الكمية</th>
        <th>السعر</th>
        <th>الإجمالي</th>
      </tr>
    </thead>
    <tbody>
      {{range .Lines}}<tr>
        <td>{{.Name}}</td>
        <td>{{.Quantity}}</td>
        <td>{{.Price}}</td>
        <td>{{.Subtotal}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <div class="total-section">
    <div class="total-box">
      <div class="total-row">
        <span>عدد العناصر:</span>
        <span>{{.ItemCount}}</span>
      </div>
      <div class="total-row" style="font-size: 18px; color: #2563eb;">
        <span>الإجمالي النهائي:</span>
        <span>{{.Total}} د.م</span>
      </div>
      <div class="total-row" style="font-size: 12px; color: #777; margin-top: 10px;">
        <span>طريقة الدفع:</span>
        <span>{{.Payment}}</span>
      </div>
    </div>
  </div>

  <div class="footer">
    <p>شكراً لتعاملكم معنا!</p>
    <p>تم إصدار هذه الفاتورة إلكترونياً</p>
  </div>
</body>
</html>
`))

type line struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

type view struct {
	StoreName string
	Number    string
	Issued    string
	Lines     []line
	ItemCount int
	Total     string
	Payment   string
}

// Render writes the printable RTL invoice for the sale.
func Render(w io.Writer, sale domain.Sale) error {
	v := view{
		StoreName: StoreName,
		Number:    ShortNumber(sale.ID),
		Issued:    sale.Timestamp.UTC().Format("2006-01-02 15:04"),
		Total:     money(sale.Total),
		Payment:   PaymentLabel(sale.PaymentMethod),
	}
	for _, item := range sale.Items {
		v.ItemCount += item.CartQuantity
		v.Lines = append(v.Lines, line{
			Name:     item.Name,
			Quantity: item.CartQuantity,
			Price:    money(item.Price),
			Subtotal: money(item.Subtotal()),
		})
	}
	return invoiceTmpl.Execute(w, v)
}

// ShortNumber is the display number shown on the invoice, the last six
// characters of the sale id.
func ShortNumber(saleID string) string {
	if len(saleID) <= 6 {
		return saleID
	}
	return saleID[len(saleID)-6:]
}

// PaymentLabel maps a payment method to its printed label.
func PaymentLabel(method string) string {
	if method == domain.PaymentCash {
		return "نقدي"
	}
	return "بطاقة"
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
