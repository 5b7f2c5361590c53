package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// CaseAssignmentEmail is the data rendered into the assignment template
type CaseAssignmentEmail struct {
	RecipientName string
	CaseType      string
	CaseNumber    string
	CaseTitle     string
	Reassigned    bool
	AssignedBy    string
	ActionURL     string
}

// Subject returns the subject line for the assignment email
func (e CaseAssignmentEmail) Subject() string {
	if e.Reassigned {
		return fmt.Sprintf("Case reassigned to you: %s", e.CaseNumber)
	}
	return fmt.Sprintf("New case assigned: %s", e.CaseNumber)
}

// RenderCaseAssignment renders the HTML body for a case assignment
func RenderCaseAssignment(data CaseAssignmentEmail) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "case_assigned.html", data); err != nil {
		return "", fmt.Errorf("render case assignment email: %w", err)
	}
	return buf.String(), nil
}
