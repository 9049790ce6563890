package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/mjsport/photostore/internal/domain"
)

var downloadEmailTmpl = template.Must(template.New("download").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #f8f8f8; padding: 20px; text-align: center; }
    .content { padding: 20px; }
    .photo-item { margin-bottom: 20px; padding-bottom: 20px; border-bottom: 1px solid #eee; }
    .download-btn {
      display: inline-block;
      background-color: #000;
      color: #fff;
      padding: 10px 20px;
      text-decoration: none;
      border-radius: 5px;
      margin-top: 10px;
    }
    .footer { margin-top: 30px; font-size: 12px; color: #777; text-align: center; }
    .total { font-weight: bold; margin-top: 20px; font-size: 18px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>&iexcl;Gracias por tu compra, {{.Name}}!</h1>
      <p>Orden #{{.OrderID}}</p>
    </div>

    <div class="content">
      <p>Aqu&iacute; est&aacute;n los links de descarga para tus fotos:</p>

      {{range .Photos}}
      <div class="photo-item">
        <h3>{{.Name}}</h3>
        <p><strong>Precio:</strong> ${{.Price}}</p>
        <a href="{{.DownloadLink}}" class="download-btn" target="_blank">Descargar foto</a>
      </div>
      {{end}}

      <div class="total">
        <p>Total pagado: ${{.Total}}</p>
      </div>

      <p>Si tienes alg&uacute;n problema con las descargas, por favor cont&aacute;ctanos respondiendo a este correo.</p>
    </div>

    <div class="footer">
      <p>&copy; {{.Year}} MJ Sport Fotograf&iacute;a. Todos los derechos reservados.</p>
    </div>
  </div>
</body>
</html>
`))

type emailPhoto struct {
	Name         string
	Price        string
	DownloadLink string
}

type emailData struct {
	Name    string
	OrderID string
	Photos  []emailPhoto
	Total   string
	Year    int
}

func renderDownloadEmail(order *domain.Order) (string, error) {
	photos := make([]emailPhoto, 0, len(order.Items))
	for _, item := range order.Items {
		photos = append(photos, emailPhoto{
			Name:         item.PhotoName,
			Price:        fmt.Sprintf("%.2f", item.Price),
			DownloadLink: item.DownloadURL,
		})
	}

	data := emailData{
		Name:    order.CustomerName,
		OrderID: order.ID.String(),
		Photos:  photos,
		Total:   fmt.Sprintf("%.2f", order.TotalAmount),
		Year:    time.Now().Year(),
	}

	var buf bytes.Buffer
	if err := downloadEmailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
