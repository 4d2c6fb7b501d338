package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/nutridesk/server/internal/storage"
)

const (
	FormatHTML = "html"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

const (
	// AudienceDietitian renders the full grid including macro columns.
	AudienceDietitian = "dietitian"
	// AudienceClient renders the plan without macro data. The numbers
	// are dropped at generation time, not hidden in the markup.
	AudienceClient = "client"
)

type CreateExportRequest struct {
	ClientID string `json:"client_id"`
	Format   string `json:"format"`
	Audience string `json:"audience"`
}

func (r *CreateExportRequest) Validate() error {
	if strings.TrimSpace(r.ClientID) == "" {
		return fmt.Errorf("validation failed: client_id is required")
	}
	switch r.Format {
	case FormatHTML, FormatCSV, FormatPDF:
	default:
		return fmt.Errorf("validation failed: format must be one of html, csv, pdf")
	}
	if r.Audience == "" {
		r.Audience = AudienceDietitian
	}
	switch r.Audience {
	case AudienceDietitian, AudienceClient:
	default:
		return fmt.Errorf("validation failed: audience must be dietitian or client")
	}
	return nil
}

type SendRequest struct {
	To      string `json:"to,omitempty"`      // defaults to the client's email
	Message string `json:"message,omitempty"` // optional note in the email body
}

type ExportResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Audience  string    `json:"audience"`
	Format    string    `json:"format"`
	FileName  string    `json:"file_name"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(m storage.ExportMeta) ExportResponse {
	return ExportResponse{
		ID:        m.ID,
		ClientID:  m.ClientID,
		Audience:  m.Audience,
		Format:    m.Format,
		FileName:  m.FileName,
		SizeBytes: m.SizeBytes,
		CreatedAt: m.CreatedAt,
	}
}

// FileName builds the export file name:
// diet-plan-{clientName}-{audience}-{yyyy-MM-dd}.{ext}
func FileName(clientName, audience string, at time.Time, format string) string {
	return fmt.Sprintf("diet-plan-%s-%s-%s.%s",
		sanitizeName(clientName), audience, at.Format("2006-01-02"), format)
}

// sanitizeName keeps letters and digits, collapsing everything else to
// single dashes, so the name is safe as a file name and object key.
func sanitizeName(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "client"
	}
	return out
}

func contentTypeFor(format string) string {
	switch format {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
