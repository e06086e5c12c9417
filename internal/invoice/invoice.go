// Package invoice produit la facture d'une commande: HTML avec QR code de suivi,
// imprimé en PDF par Chrome headless quand il est disponible.
package invoice

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"furniro_back_end/internal/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
)

type Renderer struct {
	frontendURL string
	chromePath  string
	usePDF      bool
	timeout     time.Duration
}

// NewRenderer prépare le rendu. Sans Chrome (enablePDF=false), Render renvoie le HTML.
func NewRenderer(frontendURL, chromePath string, enablePDF bool) *Renderer {
	return &Renderer{
		frontendURL: strings.TrimRight(frontendURL, "/"),
		chromePath:  chromePath,
		usePDF:      enablePDF,
		timeout:     30 * time.Second,
	}
}

type Document struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Render retourne un PDF, ou le HTML si l'impression échoue.
func (r *Renderer) Render(ctx context.Context, order models.OrderView) (*Document, error) {
	html, err := r.HTML(order)
	if err != nil {
		return nil, err
	}
	base := "invoice-" + order.ID.Hex()

	if r.usePDF {
		pdf, err := r.print(ctx, html)
		if err == nil {
			return &Document{Content: pdf, ContentType: ContentTypePDF, Filename: base + ".pdf"}, nil
		}
		log.Printf("⚠️ Impression PDF impossible pour %s, repli HTML: %v", order.ID.Hex(), err)
	}
	return &Document{Content: html, ContentType: ContentTypeHTML, Filename: base + ".html"}, nil
}

// PDF ne renvoie que le PDF; nil si l'impression est désactivée ou échoue.
func (r *Renderer) PDF(ctx context.Context, order models.OrderView) []byte {
	if r == nil || !r.usePDF {
		return nil
	}
	doc, err := r.Render(ctx, order)
	if err != nil || doc.ContentType != ContentTypePDF {
		return nil
	}
	return doc.Content
}

func (r *Renderer) HTML(order models.OrderView) ([]byte, error) {
	qr, err := TrackingQR(r.frontendURL + "/orders/" + order.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	var buf bytes.Buffer
	err = invoiceTmpl.Execute(&buf, struct {
		Order  models.OrderView
		QRCode template.URL
		Date   string
	}{order, template.URL(qr), order.CreatedAt.Format("02/01/2006")})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TrackingQR encode url en PNG prêt pour <img src="...">.
func TrackingQR(url string) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func (r *Renderer) print(ctx context.Context, html []byte) ([]byte, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"line": func(l models.OrderLine) int64 {
		if l.Product == nil {
			return 0
		}
		return l.Product.Price * int64(l.Quantity)
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>Invoice {{.Order.ID.Hex}}</title>
	<style>
		body { font-family: Poppins, Arial, sans-serif; color: #333; margin: 40px; }
		h1 { color: #B88E2F; }
		table { width: 100%; border-collapse: collapse; margin-top: 24px; }
		th { background: #F9F1E7; text-align: left; padding: 8px; }
		td { padding: 8px; border-bottom: 1px solid #eee; }
		.total { text-align: right; font-size: 18px; margin-top: 16px; }
	</style>
</head>
<body>
	<h1>Furniro</h1>
	<p>Invoice for order <strong>{{.Order.ID.Hex}}</strong> &middot; {{.Date}}</p>
	<p>
		{{.Order.BillingDetails.FirstName}} {{.Order.BillingDetails.LastName}}<br>
		{{.Order.BillingDetails.Email}} &middot; {{.Order.BillingDetails.Phone}}<br>
		{{.Order.ShippingAddress.StreetAddress}}, {{.Order.ShippingAddress.City}} {{.Order.ShippingAddress.PostalCode}}, {{.Order.ShippingAddress.Country}}
	</p>
	<table>
		<tr><th>Product</th><th>Qty</th><th>Unit price</th><th>Total</th></tr>
		{{range .Order.OrderItems}}<tr>
			<td>{{if .Product}}{{.Product.Name}}{{else}}Unavailable product{{end}}</td>
			<td>{{.Quantity}}</td>
			<td>{{if .Product}}Rs. {{.Product.Price}}{{end}}</td>
			<td>Rs. {{line .}}</td>
		</tr>{{end}}
	</table>
	<p class="total">Subtotal: Rs. {{.Order.Subtotal}}<br><strong>Total: Rs. {{.Order.TotalAmount}}</strong></p>
	<p>Payment: {{.Order.PaymentMethod}} ({{.Order.PaymentStatus}}) &middot; Status: {{.Order.OrderStatus}}</p>
	<img src="{{.QRCode}}" alt="Track your order" width="128" height="128">
</body>
</html>`))
