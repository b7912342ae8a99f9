package mail

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// DefaultAccentColor is used when no community branding can be resolved.
const DefaultAccentColor = "#000000"

// ReminderData carries everything the follow-up template needs. Color is a
// hex accent resolved from the session's community, already defaulted by the
// caller.
type ReminderData struct {
	Token   string
	Variant string
	BaseURL string
	Color   string
}

var subjectByVariant = map[string]string{
	"A": "¿Cómo te sientes hoy? Tu check-in de seguimiento",
	"B": "Un minuto para ti: completa tu seguimiento",
}

var reminderTmpl = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html lang="es">
<body style="font-family: sans-serif; margin: 0; padding: 24px;">
  <div style="max-width: 480px; margin: 0 auto;">
    <div style="height: 6px; background: {{.Color}}; border-radius: 3px;"></div>
    <h2>Hola 👋</h2>
    <p>Ayer tuviste una sesión de mentoría. Nos gustaría saber cómo te sientes ahora.</p>
    <p>Solo toma un minuto y tus respuestas son anónimas.</p>
    <p style="margin: 32px 0;">
      <a href="{{.Link}}" style="background: {{.Color}}; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Responder ahora</a>
    </p>
    <p style="color: #888; font-size: 12px;">Este enlace expira 7 días después de tu sesión. Si no solicitaste este correo, puedes ignorarlo.</p>
  </div>
</body>
</html>`))

type Renderer struct {
	baseURL string
}

func NewRenderer(baseURL string) *Renderer {
	return &Renderer{baseURL: strings.TrimRight(baseURL, "/")}
}

// Reminder renders the follow-up email for a token. The variant picks the
// subject line only; the body is shared.
func (r *Renderer) Reminder(data ReminderData) (subject, html string, err error) {
	subject, ok := subjectByVariant[data.Variant]
	if !ok {
		subject = subjectByVariant["A"]
	}
	if data.Color == "" {
		data.Color = DefaultAccentColor
	}
	base := r.baseURL
	if data.BaseURL != "" {
		base = strings.TrimRight(data.BaseURL, "/")
	}
	link := fmt.Sprintf("%s/seguimiento?token=%s", base, url.QueryEscape(data.Token))

	var b strings.Builder
	payload := struct {
		Color string
		Link  string
	}{Color: data.Color, Link: link}
	if err := reminderTmpl.Execute(&b, payload); err != nil {
		return "", "", fmt.Errorf("render reminder: %w", err)
	}
	return subject, b.String(), nil
}
