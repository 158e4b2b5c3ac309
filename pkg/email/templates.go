package email

import (
	"html/template"
	"strings"
)

var newLeadTmpl = template.Must(template.New("new_lead").Funcs(template.FuncMap{
	"orDash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "Não informado"
		}
		return s
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Nova resposta</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f4f4f4;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
        <tr>
            <td align="center" style="padding: 40px 0;">
                <table role="presentation" style="width: 600px; border-collapse: collapse; background-color: #ffffff; border-radius: 8px;">
                    <tr>
                        <td style="padding: 30px; background-color: #25D366; border-radius: 8px 8px 0 0;">
                            <h1 style="margin: 0; color: #ffffff; font-size: 24px;">{{.FormTitle}}</h1>
                            <p style="margin: 8px 0 0; color: #ffffff;">{{.TenantName}}</p>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 30px; font-size: 15px; line-height: 22px; color: #333333;">
                            <p style="margin: 0;"><strong>Lead:</strong> {{orDash .LeadName}}</p>
                            <p style="margin: 0;"><strong>Telefone:</strong> {{orDash .LeadPhone}}</p>
                            <p style="margin: 0 0 20px;"><strong>Email:</strong> {{orDash .LeadEmail}}</p>
                            {{range .Answers}}{{if .Value}}
                            <p style="margin: 0 0 12px;"><strong>{{.Label}}</strong><br>{{.Value}}</p>
                            {{end}}{{end}}
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 20px; text-align: center; background-color: #f8f8f8; font-size: 12px; color: #999999;">
                            Enviado em {{.SubmittedAt.Format "02/01/2006 15:04"}}
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>`))

// NewLeadTemplate renders the owner notice. Lead input is HTML-escaped.
func NewLeadTemplate(n LeadNotification) (string, error) {
	var b strings.Builder
	if err := newLeadTmpl.Execute(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}
