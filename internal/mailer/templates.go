package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/mindfulpages/order-intake/internal/domain"
)

var customerTemplate = template.Must(template.New("customer").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
  <h2>Благодарим за поръчката, {{.Order.Customer.FirstName}}!</h2>
  <p>Поръчка <strong>#{{.Order.OrderNumber}}</strong> от {{.Order.OrderDate.Format "02.01.2006 15:04"}} е приета.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">Продукт</th><th align="right">Кол.</th><th align="right">Цена</th></tr>
    {{range .Order.Items}}
    <tr><td>{{.Title}}</td><td align="right">{{.Quantity}}</td><td align="right">{{printf "%.2f" .Price}} лв.</td></tr>
    {{end}}
  </table>
  <p>
    Междинна сума: {{printf "%.2f" .Order.Subtotal}} лв.<br>
    Доставка: {{printf "%.2f" .Order.ShippingCost}} лв.<br>
    Данък: {{printf "%.2f" .Order.Tax}} лв.<br>
    <strong>Общо: {{printf "%.2f" .Order.TotalAmount}} лв.</strong>
  </p>
  <p>
    Доставка до:<br>
    {{.Order.Customer.FullName}}<br>
    {{.Order.Shipping.Address}}, {{.Order.Shipping.City}} {{.Order.Shipping.PostalCode}}<br>
    {{.Order.Shipping.Country}}
  </p>
</body>
</html>`))

var operatorTemplate = template.Must(template.New("operator").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
  <h2>Нова поръчка #{{.Order.OrderNumber}}</h2>
  <p>
    {{.Order.Customer.FullName}} &lt;{{.Order.Customer.Email}}&gt;{{if .Order.Customer.Phone}}, тел. {{.Order.Customer.Phone}}{{end}}<br>
    Плащане: {{.Order.PaymentMethod}} ({{.Order.Status}})
  </p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">Продукт</th><th align="left">Тип</th><th align="right">Кол.</th><th align="right">Цена</th></tr>
    {{range .Order.Items}}
    <tr><td>{{.Title}}</td><td>{{.Type}}</td><td align="right">{{.Quantity}}</td><td align="right">{{printf "%.2f" .Price}} лв.</td></tr>
    {{end}}
  </table>
  <p><strong>Общо: {{printf "%.2f" .Order.TotalAmount}} лв.</strong></p>
  <p>
    Адрес: {{.Order.Shipping.Address}}, {{.Order.Shipping.City}} {{.Order.Shipping.PostalCode}}, {{.Order.Shipping.Country}}
  </p>
  {{if .Order.Notes}}<p>Бележки: {{.Order.Notes}}</p>{{end}}
</body>
</html>`))

type templateData struct {
	Order *domain.Order
}

// CustomerConfirmation renders the email sent to the customer.
func CustomerConfirmation(order *domain.Order) (Message, error) {
	var buf bytes.Buffer
	if err := customerTemplate.Execute(&buf, templateData{Order: order}); err != nil {
		return Message{}, fmt.Errorf("customer template error: %v", err)
	}
	return Message{
		To:      order.Customer.Email,
		Subject: fmt.Sprintf("Потвърждение на поръчка #%s", order.OrderNumber),
		HTML:    buf.String(),
	}, nil
}

// OperatorAlert renders the new-order notification for the shop operator.
func OperatorAlert(order *domain.Order, operatorEmail string) (Message, error) {
	var buf bytes.Buffer
	if err := operatorTemplate.Execute(&buf, templateData{Order: order}); err != nil {
		return Message{}, fmt.Errorf("operator template error: %v", err)
	}
	return Message{
		To:      operatorEmail,
		Subject: fmt.Sprintf("Нова поръчка #%s от %s", order.OrderNumber, order.Customer.FullName()),
		HTML:    buf.String(),
	}, nil
}
