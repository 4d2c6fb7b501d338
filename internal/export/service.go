package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nutridesk/server/internal/blob"
	"github.com/nutridesk/server/internal/config"
	"github.com/nutridesk/server/internal/dietplan"
	"github.com/nutridesk/server/internal/mailer"
	"github.com/nutridesk/server/internal/storage"
)

// ErrLimitReached is returned when the client already has the maximum
// number of stored exports.
var ErrLimitReached = errors.New("export limit reached for client")

type Store interface {
	storage.ExportsStorage
	storage.PlansStorage
	storage.ClientsStorage
}

// Service generates plan documents, stores them in the blob store, and
// handles download and delivery.
type Service struct {
	store  Store
	blobs  blob.Store
	sender mailer.Sender
	cfg    *config.Config
	logger *log.Logger
	now    func() time.Time
}

func NewService(store Store, blobs blob.Store, sender mailer.Sender, cfg *config.Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:  store,
		blobs:  blobs,
		sender: sender,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Generate renders the client's active plan in the requested format and
// stores the file. Fails before rendering when the per-client export
// cap is reached.
func (s *Service) Generate(ctx context.Context, owner string, req CreateExportRequest) (ExportResponse, error) {
	if err := req.Validate(); err != nil {
		return ExportResponse{}, err
	}

	client, err := s.store.GetClient(ctx, owner, req.ClientID)
	if err != nil {
		return ExportResponse{}, fmt.Errorf("failed to load client: %w", err)
	}

	if s.cfg.ExportsMaxPerClient > 0 {
		count, err := s.store.CountExports(ctx, owner, req.ClientID)
		if err != nil {
			return ExportResponse{}, fmt.Errorf("failed to count exports: %w", err)
		}
		if count >= s.cfg.ExportsMaxPerClient {
			return ExportResponse{}, ErrLimitReached
		}
	}

	doc, err := s.loadDocument(ctx, owner, client)
	if err != nil {
		return ExportResponse{}, err
	}

	now := s.now()
	data, err := Render(doc, req.Format, req.Audience, now)
	if err != nil {
		return ExportResponse{}, err
	}

	fileName := FileName(client.Name, req.Audience, now, req.Format)
	key := fmt.Sprintf("exports/%s/%s/%s", owner, req.ClientID, fileName)

	size, err := s.blobs.PutObject(ctx, key, data, contentTypeFor(req.Format))
	if err != nil {
		return ExportResponse{}, fmt.Errorf("failed to store export: %w", err)
	}

	meta := storage.ExportMeta{
		ID:        uuid.NewString(),
		Owner:     owner,
		ClientID:  req.ClientID,
		Audience:  req.Audience,
		Format:    req.Format,
		FileName:  fileName,
		Key:       key,
		SizeBytes: size,
		CreatedAt: now,
	}
	meta, err = s.store.CreateExport(ctx, meta)
	if err != nil {
		// the stored object is orphaned if cleanup fails; log and move on
		if delErr := s.blobs.DeleteObject(ctx, key); delErr != nil {
			s.logger.Printf("WARN export: failed to clean up blob %s: %v", key, delErr)
		}
		return ExportResponse{}, fmt.Errorf("failed to record export: %w", err)
	}

	return toResponse(meta), nil
}

// Render dispatches to the format renderers.
func Render(doc PlanDocument, format, audience string, at time.Time) ([]byte, error) {
	switch format {
	case FormatHTML:
		return RenderHTML(doc, audience, at)
	case FormatCSV:
		return RenderCSV(doc, audience, at)
	case FormatPDF:
		return RenderPDF(doc, audience, at)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (s *Service) loadDocument(ctx context.Context, owner string, client storage.Client) (PlanDocument, error) {
	rec, err := s.store.GetPlan(ctx, owner, client.ID)
	if err != nil {
		return PlanDocument{}, fmt.Errorf("failed to load plan: %w", err)
	}

	var days []dietplan.DayPlan
	if len(rec.Days) > 0 {
		if err := json.Unmarshal(rec.Days, &days); err != nil {
			return PlanDocument{}, fmt.Errorf("failed to decode plan days: %w", err)
		}
	}
	var configs []dietplan.MealTypeConfig
	if len(rec.MealTypes) > 0 {
		if err := json.Unmarshal(rec.MealTypes, &configs); err != nil {
			return PlanDocument{}, fmt.Errorf("failed to decode meal types: %w", err)
		}
	}

	return PlanDocument{
		ClientName:   client.Name,
		Title:        rec.Title,
		DurationDays: rec.DurationDays,
		StartDate:    rec.StartDate,
		Days:         days,
		MealTypes:    configs,
	}, nil
}

func (s *Service) List(ctx context.Context, owner, clientID string) ([]ExportResponse, error) {
	metas, err := s.store.ListExports(ctx, owner, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]ExportResponse, 0, len(metas))
	for _, m := range metas {
		out = append(out, toResponse(m))
	}
	return out, nil
}

// DownloadResult carries either a presigned URL or the file bytes,
// depending on the blob store in use.
type DownloadResult struct {
	URL         string
	Data        []byte
	FileName    string
	ContentType string
}

// Download returns a presigned URL when the store supports it,
// otherwise the raw bytes for streaming.
func (s *Service) Download(ctx context.Context, owner, id string) (DownloadResult, error) {
	meta, err := s.store.GetExport(ctx, owner, id)
	if err != nil {
		return DownloadResult{}, err
	}

	url, err := s.blobs.PresignGet(ctx, meta.Key, s.cfg.Blob.S3.PresignTTLSeconds)
	if err == nil {
		return DownloadResult{URL: url, FileName: meta.FileName, ContentType: contentTypeFor(meta.Format)}, nil
	}
	if !errors.Is(err, blob.ErrPresignUnsupported) {
		return DownloadResult{}, fmt.Errorf("failed to presign download: %w", err)
	}

	data, err := s.blobs.GetObject(ctx, meta.Key)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("failed to read export: %w", err)
	}
	return DownloadResult{Data: data, FileName: meta.FileName, ContentType: contentTypeFor(meta.Format)}, nil
}

// Delete removes the stored file and its record. A missing blob is not
// an error; the record is removed regardless.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	meta, err := s.store.GetExport(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.blobs.DeleteObject(ctx, meta.Key); err != nil {
		s.logger.Printf("WARN export: failed to delete blob %s: %v", meta.Key, err)
	}
	return s.store.DeleteExport(ctx, owner, id)
}

// Send emails the exported file to the client (or an explicit address)
// as an attachment.
func (s *Service) Send(ctx context.Context, owner, id string, req SendRequest) error {
	meta, err := s.store.GetExport(ctx, owner, id)
	if err != nil {
		return err
	}

	to := strings.TrimSpace(req.To)
	if to == "" {
		client, err := s.store.GetClient(ctx, owner, meta.ClientID)
		if err != nil {
			return fmt.Errorf("failed to load client: %w", err)
		}
		to = strings.TrimSpace(client.Email)
	}
	if to == "" {
		return fmt.Errorf("validation failed: no recipient address: client has no email on file")
	}

	data, err := s.blobs.GetObject(ctx, meta.Key)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}

	subject := fmt.Sprintf("Your diet plan (%s)", meta.CreatedAt.Format("2006-01-02"))
	body := req.Message
	if strings.TrimSpace(body) == "" {
		body = "Please find your diet plan attached."
	}

	if err := s.sender.Send(to, subject, body, &mailer.Attachment{
		Filename:    meta.FileName,
		ContentType: contentTypeFor(meta.Format),
		Data:        data,
	}); err != nil {
		return fmt.Errorf("failed to send export: %w", err)
	}

	s.logger.Printf("INFO export: sent %s to %s", meta.FileName, to)
	return nil
}
