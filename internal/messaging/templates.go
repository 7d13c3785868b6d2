package messaging

import "strings"

// TemplateContext carries the variables a message template can reference.
type TemplateContext struct {
	ContactName   string `json:"contact_name"`
	UserName      string `json:"user_name"`
	CustomMessage string `json:"custom_message"`
}

// TemplateInfo describes one entry of the template catalog.
type TemplateInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

const greetingTemplate = `Hi {contact_name},

I hope this message finds you well!

{custom_message}

Best regards,
{user_name}`

const followupTemplate = `Hi {contact_name},

I wanted to follow up on our previous conversation.

{custom_message}

Looking forward to hearing from you.

Best regards,
{user_name}`

const quickNoteTemplate = `Hi {contact_name},

{custom_message}

Thanks,
{user_name}`

var templates = map[string]string{
	"greeting":   greetingTemplate,
	"followup":   followupTemplate,
	"quick_note": quickNoteTemplate,
}

// RenderTemplate fills the named template with the given context. An
// unknown name falls back to the quick_note template.
func RenderTemplate(name string, context TemplateContext) string {
	template, found := templates[name]
	if !found {
		template = quickNoteTemplate
	}
	replacer := strings.NewReplacer(
		"{contact_name}", context.ContactName,
		"{user_name}", context.UserName,
		"{custom_message}", context.CustomMessage,
	)
	return replacer.Replace(template)
}

// AvailableTemplates returns the template catalog in a stable order.
func AvailableTemplates() []TemplateInfo {
	return []TemplateInfo{
		{Name: "greeting", Description: "Friendly greeting message"},
		{Name: "followup", Description: "Follow-up on previous conversation"},
		{Name: "quick_note", Description: "Short note or reminder"},
	}
}
