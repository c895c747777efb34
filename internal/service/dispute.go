package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"chargeapi/internal/billing"
	"chargeapi/internal/clock"
	"chargeapi/internal/model"
	"chargeapi/internal/processor"
	"chargeapi/internal/repository"
	"chargeapi/internal/storage"
)

// DefaultRefundPolicy is sent as the refund policy for products sold without one.
const DefaultRefundPolicy = "Purchases of digital products are final. The buyer received " +
	"immediate access to the product after payment and was shown the product description " +
	"before checkout."

// DisputeListResult is the service-level DTO for paginated disputes.
type DisputeListResult struct {
	Items []model.Dispute `json:"data"`
	Total int             `json:"total"`
}

// DisputeDetail is a dispute together with the evidence uploaded for it.
type DisputeDetail struct {
	model.Dispute
	Evidence []model.Evidence `json:"evidence"`
}

// DisputeSubmitter sends evidence for a dispute to its processor.
type DisputeSubmitter interface {
	SubmitEvidence(ctx context.Context, disputeID string, ev processor.DisputeEvidence) error
}

// DisputeService defines the use cases for fighting disputes.
type DisputeService interface {
	List(ctx context.Context, limit, offset int) (*DisputeListResult, error)
	Get(ctx context.Context, id string) (*DisputeDetail, error)

	// UploadEvidence streams the file to object storage, then saves its metadata.
	// The stored object is deleted again if the metadata cannot be saved.
	UploadEvidence(ctx context.Context, disputeID string, r io.Reader, filename, contentType string, size int64) (*model.Evidence, error)
	// OpenEvidence streams an uploaded file. The caller closes the reader.
	OpenEvidence(ctx context.Context, disputeID, evidenceID string) (io.ReadCloser, *model.Evidence, error)
	// EvidenceURL returns a presigned download URL valid for expiry.
	EvidenceURL(ctx context.Context, disputeID, evidenceID string, expiry time.Duration) (string, error)

	// Submit sends the collected evidence to the processor. Only Stripe disputes can be submitted.
	Submit(ctx context.Context, disputeID string) (*processor.DisputeEvidence, error)
}

// DisputeDeps groups the collaborators of DisputeService.
type DisputeDeps struct {
	Disputes  repository.DisputeRepository
	Evidence  repository.EvidenceRepository
	Orders    repository.OrderRepository
	Store     storage.Storage
	Submitter DisputeSubmitter
}

type disputeService struct {
	deps   DisputeDeps
	finder chargeableFinder
	clock  clock.Clock
	log    *slog.Logger
}

// NewDisputeService constructs a new DisputeService.
func NewDisputeService(deps DisputeDeps, clk clock.Clock, log *slog.Logger) DisputeService {
	return &disputeService{
		deps:   deps,
		finder: chargeableFinder{orders: deps.Orders},
		clock:  clk,
		log:    log.With("component", "disputes"),
	}
}

func (s *disputeService) List(ctx context.Context, limit, offset int) (*DisputeListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.deps.Disputes.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DisputeListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *disputeService) Get(ctx context.Context, id string) (*DisputeDetail, error) {
	d, err := s.dispute(ctx, id)
	if err != nil {
		return nil, err
	}
	ev, err := s.deps.Evidence.ListByDispute(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	return &DisputeDetail{Dispute: *d, Evidence: ev}, nil
}

func (s *disputeService) UploadEvidence(ctx context.Context, disputeID string, r io.Reader, filename, contentType string, size int64) (*model.Evidence, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	d, err := s.dispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d.State.Terminal() {
		return nil, ErrDisputeClosed
	}

	id := uuid.NewString()
	key := storage.EvidenceKey(d.ID, id, filename)
	obj, err := s.deps.Store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
			"dispute-id":        d.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	stored, err := s.deps.Evidence.Create(ctx, &model.Evidence{
		ID:          id,
		DisputeID:   d.ID,
		Filename:    filename,
		StoragePath: obj.Key,
		Size:        obj.Size,
		ContentType: contentType,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		if delErr := s.deps.Store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.log.InfoContext(ctx, "evidence_uploaded",
		"dispute_id", d.ID,
		"evidence_id", stored.ID,
		"size", stored.Size,
	)
	return stored, nil
}

func (s *disputeService) OpenEvidence(ctx context.Context, disputeID, evidenceID string) (io.ReadCloser, *model.Evidence, error) {
	e, err := s.evidence(ctx, disputeID, evidenceID)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.deps.Store.Get(ctx, e.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open evidence: %w", err)
	}
	return rc, e, nil
}

func (s *disputeService) EvidenceURL(ctx context.Context, disputeID, evidenceID string, expiry time.Duration) (string, error) {
	e, err := s.evidence(ctx, disputeID, evidenceID)
	if err != nil {
		return "", err
	}
	u, err := s.deps.Store.PresignGet(ctx, e.StoragePath, expiry)
	if err != nil {
		return "", fmt.Errorf("presign evidence: %w", err)
	}
	return u, nil
}

func (s *disputeService) Submit(ctx context.Context, disputeID string) (*processor.DisputeEvidence, error) {
	d, err := s.dispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d.Processor != model.ProcessorStripe {
		return nil, ErrUnsupportedProcessor
	}
	if d.State.Terminal() {
		return nil, ErrDisputeClosed
	}

	ch, err := s.finder.forDispute(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("load disputed chargeable: %w", err)
	}
	files, err := s.deps.Evidence.ListByDispute(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}

	ev := buildEvidence(ch, files)
	if err := s.deps.Submitter.SubmitEvidence(ctx, d.ProcessorDisputeID, ev); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "evidence_submitted",
		"dispute_id", d.ID,
		"processor_dispute_id", d.ProcessorDisputeID,
		"files", len(files),
	)
	return &ev, nil
}

// buildEvidence describes what the buyer paid for, using the same wording for
// single purchases and combined charges.
func buildEvidence(ch billing.Chargeable, files []model.Evidence) processor.DisputeEvidence {
	purchases := ch.ChargedPurchases()
	names := make([]string, 0, len(purchases))
	for _, p := range purchases {
		names = append(names, p.ProductName)
	}

	ev := processor.DisputeEvidence{
		CustomerEmail: ch.CustomerEmail(),
		ProductDescription: fmt.Sprintf("%s (%s)",
			strings.Join(names, ", "),
			billing.Format(model.Amount{Currency: ch.Currency(), Cents: ch.ChargedAmountCents()}),
		),
	}
	if ch.FirstProductWithoutRefundPolicy() != nil {
		ev.RefundPolicy = DefaultRefundPolicy
	}
	if len(files) > 0 {
		fileNames := make([]string, 0, len(files))
		for _, f := range files {
			fileNames = append(fileNames, f.Filename)
		}
		ev.UncategorizedText = "Supporting files: " + strings.Join(fileNames, ", ")
	}
	return ev
}

func (s *disputeService) dispute(ctx context.Context, id string) (*model.Dispute, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	d, err := s.deps.Disputes.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return d, nil
}

// evidence loads an evidence record and checks it belongs to disputeID.
func (s *disputeService) evidence(ctx context.Context, disputeID, evidenceID string) (*model.Evidence, error) {
	if disputeID == "" || evidenceID == "" {
		return nil, ErrIDRequired
	}
	e, err := s.deps.Evidence.FindByID(ctx, evidenceID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if e.DisputeID != disputeID {
		return nil, ErrNotFound
	}
	return e, nil
}
