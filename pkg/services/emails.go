package services

import (
	"bytes"
	"fmt"
	"html/template"

	"multiball-waitlist/pkg/config"
	"multiball-waitlist/pkg/models"
)

const notProvided = "(not provided)"

var (
	welcomeTemplate = template.Must(template.New("welcome").Parse(`
<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #1e1e2e;">You're on the list!</h1>
  <p>Thanks for signing up for updates from {{.Site.Name}}.</p>
  <p>We're getting summer camps and year-round programs ready. You'll be the first to hear when registration opens.</p>
  <p>Questions? Just reply to this email.</p>
  <p>— {{.Site.Signature}}<br/>
  <a href="{{.Site.URL}}" style="color: #7c3aed;">{{.Site.URL}}</a></p>
</div>`))

	notificationTemplate = template.Must(template.New("notification").Parse(`
<h2>New Coach Interest Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Role:</strong> {{.Role}}</p>
<p><strong>Background:</strong></p>
<p>{{.Background}}</p>
<p><strong>Why interested:</strong></p>
<p>{{.Why}}</p>`))

	confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #1e1e2e;">{{if .FirstName}}Thanks, {{.FirstName}}!{{else}}Thanks!{{end}}</h1>
  <p>I got your interest form for coaching at {{.Site.Name}}.</p>
  <p>I'm building something new here, and I'm looking for people who care about kids more than they care about pinball scores. Sounds like that might be you.</p>
  <p>I'll be in touch soon to chat. In the meantime, reply to this email if you have any questions.</p>
  <p>— {{.Site.Signature}}<br/>
  Founder, {{.Site.Name}}<br/>
  <a href="{{.Site.URL}}" style="color: #7c3aed;">{{.Site.URL}}</a></p>
</div>`))
)

func welcomeEmail(site config.Site) (string, string, error) {
	html, err := render(welcomeTemplate, struct{ Site config.Site }{site})
	return fmt.Sprintf("Welcome to %s!", site.Name), html, err
}

// notificationEmail renders the operator's copy of a crew interest
// submission. Free text is HTML-escaped by the template.
func notificationEmail(req models.InterestRequest) (string, string, error) {
	data := struct {
		Name, Email, Role, Background, Why string
	}{
		Name:       req.Name,
		Email:      req.Email,
		Role:       orNotProvided(models.RoleLabel(req.Role)),
		Background: orNotProvided(req.Background),
		Why:        orNotProvided(req.Why),
	}
	html, err := render(notificationTemplate, data)
	return fmt.Sprintf("🏆 New Coach Interest: %s", req.Name), html, err
}

func confirmationEmail(site config.Site, firstName string) (string, string, error) {
	html, err := render(confirmationTemplate, struct {
		Site      config.Site
		FirstName string
	}{site, firstName})
	return "Thanks for your interest in coaching!", html, err
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error rendering %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func orNotProvided(s string) string {
	if s == "" {
		return notProvided
	}
	return s
}
