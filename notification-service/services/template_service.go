package services

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"sync"

	nconfig "dwellport-backend/notification-service/config"
)

const templateDir = "./shared/mail_templates"

// TemplateService renders the HTML mail templates. Template IDs map to
// filenames through configuration, so deployments can swap a template
// without a rebuild. Parsed templates are cached until reloaded.
type TemplateService struct {
	files map[string]string

	mu    sync.RWMutex
	cache map[string]*template.Template
}

func NewTemplateService(cfg *nconfig.NotificationConfig) *TemplateService {
	templates := cfg.EmailConfig.Templates
	return &TemplateService{
		files: map[string]string{
			"welcome_verification": templates.WelcomeTemplate,
			"password_reset":       templates.PasswordResetTemplate,
			"lockout_alert":        templates.LockoutAlertTemplate,
			"announcement":         templates.AnnouncementTemplate,
		},
		cache: make(map[string]*template.Template),
	}
}

// RenderTemplate renders the template registered under templateID.
func (ts *TemplateService) RenderTemplate(templateID string, data map[string]interface{}) (string, error) {
	ts.mu.RLock()
	tmpl, ok := ts.cache[templateID]
	ts.mu.RUnlock()

	if !ok {
		var err error
		tmpl, err = ts.load(templateID)
		if err != nil {
			return "", err
		}
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %v", templateID, err)
	}
	return rendered.String(), nil
}

func (ts *TemplateService) load(templateID string) (*template.Template, error) {
	filename, ok := ts.files[templateID]
	if !ok {
		return nil, fmt.Errorf("unknown template: %s", templateID)
	}

	tmpl, err := template.ParseFiles(filepath.Join(templateDir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %v", templateID, err)
	}

	ts.mu.Lock()
	ts.cache[templateID] = tmpl
	ts.mu.Unlock()
	return tmpl, nil
}
