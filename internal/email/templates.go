package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// TemplateData представляет данные для шаблонов писем
type TemplateData map[string]interface{}

// TemplateManager хранит распарсенные HTML-шаблоны писем
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер с предзагруженными шаблонами
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}

	for name, body := range defaultTemplates {
		// Шаблоны статические, ошибка парсинга невозможна в рантайме
		if err := tm.AddTemplate(name, body); err != nil {
			panic(fmt.Sprintf("invalid built-in email template %s: %v", name, err))
		}
	}

	return tm
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// AddTemplate добавляет шаблон в менеджер
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

// Имена встроенных шаблонов
const (
	TemplateApplicationStatus    = "application_status"
	TemplateSubscriptionApproved = "subscription_approved"
	TemplateSubscriptionRejected = "subscription_rejected"
	TemplateSubscriptionExpired  = "subscription_expired"
	TemplateWelcome              = "welcome"
)

var defaultTemplates = map[string]string{
	TemplateWelcome: `
<h2>Добро пожаловать, {{.Username}}!</h2>
<p>Ваш аккаунт в сервисе визовой поддержки успешно создан.</p>`,

	TemplateApplicationStatus: `
<h2>Статус вашей визовой заявки изменен</h2>
<p>Заявка на визу ({{.Country}}, {{.VisaType}}) переведена в статус: <b>{{.Status}}</b>.</p>
{{if .Comments}}<p>Комментарий: {{.Comments}}</p>{{end}}`,

	TemplateSubscriptionApproved: `
<h2>Подписка одобрена</h2>
<p>Ваша заявка на план «{{.PlanName}}» одобрена.</p>
<p>Подписка действует с {{.StartDate}} по {{.EndDate}}.</p>`,

	TemplateSubscriptionRejected: `
<h2>Заявка на подписку отклонена</h2>
<p>К сожалению, ваша заявка на план «{{.PlanName}}» была отклонена.</p>
{{if .Notes}}<p>Причина: {{.Notes}}</p>{{end}}`,

	TemplateSubscriptionExpired: `
<h2>Срок подписки истек</h2>
<p>Срок действия вашей подписки «{{.PlanName}}» закончился {{.EndDate}}.</p>
<p>Вы можете оформить новую заявку в личном кабинете.</p>`,
}
