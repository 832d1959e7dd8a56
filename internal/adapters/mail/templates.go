package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/okian/leadsplit/internal/domain/model"
)

const layout = `<div style="max-width:600px;margin:auto;padding:30px;font-family:Arial,sans-serif;background-color:#f9f9f9;border-radius:10px;border:1px solid #e0e0e0;">
{{block "body" .}}{{end}}
</div>`

var bodies = map[model.MailKind]struct {
	subject string
	body    string
}{
	model.MailVerifyEmail: {
		subject: "Verify your email",
		body: `{{define "body"}}<h2>Your OTP: {{.Code}}</h2>
<p>Valid for {{.ValidFor}}.</p>{{end}}`,
	},
	model.MailResetPassword: {
		subject: "Reset your password",
		body: `{{define "body"}}<h1 style="text-align:center;">Password Reset Request</h1>
<p>Use this code to reset your password:</p>
<div style="text-align:center;padding:20px;background:#e8f5e8;border:2px solid #4CAF50;border-radius:8px;">
<h2 style="letter-spacing:8px;">{{.Code}}</h2>
</div>
<p>This code is valid for {{.ValidFor}}.</p>{{end}}`,
	},
	model.MailResetDone: {
		subject: "Password successfully reset",
		body: `{{define "body"}}<h1 style="text-align:center;">Password Reset Successful</h1>
<p>Your password has been reset successfully. You can now log in with your new password.</p>{{end}}`,
	},
}

// Templates holds one parsed template per mail kind.
type Templates struct {
	byKind   map[model.MailKind]*template.Template
	subjects map[model.MailKind]string
	validFor string
}

// DefaultTemplates parses the built-in templates. It panics on a parse
// error, which can only come from the constants above.
func DefaultTemplates() *Templates {
	t := &Templates{
		byKind:   make(map[model.MailKind]*template.Template, len(bodies)),
		subjects: make(map[model.MailKind]string, len(bodies)),
		validFor: "10 minutes",
	}
	base := template.Must(template.New("layout").Parse(layout))
	for kind, b := range bodies {
		tpl := template.Must(template.Must(base.Clone()).Parse(b.body))
		t.byKind[kind] = tpl
		t.subjects[kind] = b.subject
	}
	return t
}

// Render produces the message for job.
func (t *Templates) Render(job model.MailJob) (Message, error) {
	tpl, ok := t.byKind[job.Kind]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, job.Kind)
	}
	var buf bytes.Buffer
	data := struct {
		Code     string
		ValidFor string
	}{Code: job.Code, ValidFor: t.validFor}
	if err := tpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", job.Kind, err)
	}
	return Message{To: job.To, Subject: t.subjects[job.Kind], HTML: buf.String()}, nil
}
