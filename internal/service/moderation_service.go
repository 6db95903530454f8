// Package service contains the business logic of the governance engine.
package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/PluraGate/SyriaHub-sub004/internal/cache"
	"github.com/PluraGate/SyriaHub-sub004/internal/classify"
	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/observability"
	"github.com/PluraGate/SyriaHub-sub004/internal/originality"
	"github.com/PluraGate/SyriaHub-sub004/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// BlockSimilarity is the similarity above which content is blocked outright,
// independent of the originality checker's plagiarism verdict.
const BlockSimilarity = 0.80

// OriginalityChecker is the originality verdict provider the pipeline
// consumes.
type OriginalityChecker interface {
	Check(ctx context.Context, title, body string) originality.Verdict
}

// DecisionReport is the caller-facing result of one moderation pass.
type DecisionReport struct {
	Decision *models.ModerationDecision `json:"decision"`
	Status   models.ContentStatus       `json:"status"`
	Warnings []string                   `json:"warnings,omitempty"`
}

// ModerationService runs the moderation pipeline over submitted content.
type ModerationService struct {
	contentRepo repository.ContentRepository
	classifier  classify.Classifier
	checker     OriginalityChecker
	index       originality.Index
	logger      *slog.Logger
}

// NewModerationService returns a new ModerationService.
func NewModerationService(
	contentRepo repository.ContentRepository,
	classifier classify.Classifier,
	checker OriginalityChecker,
	index originality.Index,
	logger *slog.Logger,
) *ModerationService {
	return &ModerationService{
		contentRepo: contentRepo,
		classifier:  classifier,
		checker:     checker,
		index:       index,
		logger:      logger,
	}
}

// CreateDraft stores new content in draft status, untouched by moderation
// until the author submits it.
func (s *ModerationService) CreateDraft(ctx context.Context, authorID uint, title, body string) (*models.ContentItem, error) {
	if strings.TrimSpace(body) == "" {
		return nil, models.NewValidationError("Content body must not be empty")
	}
	item := &models.ContentItem{
		AuthorID: authorID,
		Title:    title,
		Body:     body,
		Status:   models.ContentStatusDraft,
	}
	if err := s.contentRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Submit runs the moderation pipeline on the author's content. Classification
// and the originality check run concurrently; the composite outcome is block
// when classification flags the text or the best similarity exceeds
// BlockSimilarity. Exactly one decision row is persisted per pass, whatever
// the outcome.
func (s *ModerationService) Submit(ctx context.Context, userID, contentID uint) (*DecisionReport, error) {
	span, ctx := observability.NewSpan(ctx, "moderation.submit")
	defer span.End()
	span.AddAttributes(attribute.Int("content_id", int(contentID)))

	item, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if item.AuthorID != userID {
		return nil, models.NewForbiddenError("only the author may submit content for moderation")
	}
	switch item.Status {
	case models.ContentStatusDraft, models.ContentStatusPublished:
	default:
		return nil, models.NewPreconditionError("content under moderation review must be resolved through an appeal")
	}

	decision, warnings, verdict := s.evaluate(ctx, item)
	status := models.ContentStatusPublished
	if decision.Outcome == models.DecisionBlock {
		status = models.ContentStatusFlagged
	}

	if err := s.contentRepo.RecordDecision(ctx, decision, status); err != nil {
		return nil, err
	}
	observability.ModerationDecisions.WithLabelValues(string(decision.Outcome)).Inc()
	cache.InvalidateDecision(ctx, contentID)

	if status == models.ContentStatusPublished && len(verdict.Vector) > 0 {
		if err := s.index.Upsert(ctx, contentID, verdict.Vector); err != nil {
			s.logger.WarnContext(ctx, "similarity index update failed", "content_id", contentID, "err", err)
		}
	}

	s.logger.InfoContext(ctx, "moderation decision recorded",
		"content_id", contentID,
		"outcome", decision.Outcome,
		"flagged", decision.Flagged,
		"similarity", verdict.Similarity,
	)
	return &DecisionReport{Decision: decision, Status: status, Warnings: warnings}, nil
}

// Reevaluate re-runs the moderation pipeline on content under appeal after
// the author revises it. A fresh decision row extends the chain so jurors
// review a verdict for the text in front of them; the content itself stays
// flagged until the deliberation resolves.
func (s *ModerationService) Reevaluate(ctx context.Context, contentID uint) (*DecisionReport, error) {
	span, ctx := observability.NewSpan(ctx, "moderation.reevaluate")
	defer span.End()
	span.AddAttributes(attribute.Int("content_id", int(contentID)))

	item, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}

	decision, warnings, verdict := s.evaluate(ctx, item)
	if err := s.contentRepo.RecordDecision(ctx, decision, models.ContentStatusFlagged); err != nil {
		return nil, err
	}
	observability.ModerationDecisions.WithLabelValues(string(decision.Outcome)).Inc()
	cache.InvalidateDecision(ctx, contentID)

	s.logger.InfoContext(ctx, "moderation decision refreshed for revised content",
		"content_id", contentID,
		"outcome", decision.Outcome,
		"similarity", verdict.Similarity,
	)
	return &DecisionReport{Decision: decision, Status: models.ContentStatusFlagged, Warnings: warnings}, nil
}

// evaluate runs classification and the originality check concurrently and
// folds both verdicts into an unsaved decision row.
func (s *ModerationService) evaluate(ctx context.Context, item *models.ContentItem) (*models.ModerationDecision, []string, originality.Verdict) {
	var (
		wg      sync.WaitGroup
		cls     classify.Result
		verdict originality.Verdict
	)
	text := item.Title + "\n\n" + item.Body
	wg.Add(2)
	go func() {
		defer wg.Done()
		cls = s.classifier.Classify(ctx, text)
	}()
	go func() {
		defer wg.Done()
		verdict = s.checker.Check(ctx, item.Title, item.Body)
	}()
	wg.Wait()

	var warnings []string
	if !cls.Available {
		warnings = append(warnings, "classification unavailable: "+cls.Reason)
	}
	if verdict.Details == "unavailable" {
		warnings = append(warnings, "originality check unavailable")
	}

	flagged := cls.Available && cls.Flagged
	decision := &models.ModerationDecision{
		ContentID:        item.ID,
		Outcome:          models.DecisionAllow,
		Flagged:          flagged,
		Categories:       cls.Categories,
		Scores:           cls.Scores,
		Similarity:       verdict.Similarity,
		MatchedSourceIDs: verdict.MatchedSourceIDs,
		Plagiarized:      verdict.Plagiarized,
		Notes:            decisionNotes(warnings, verdict.Details),
	}
	if flagged || verdict.Similarity > BlockSimilarity {
		decision.Outcome = models.DecisionBlock
	}
	return decision, warnings, verdict
}

// GetContent returns a content item by id.
func (s *ModerationService) GetContent(ctx context.Context, id uint) (*models.ContentItem, error) {
	return s.contentRepo.GetByID(ctx, id)
}

// GetDecision returns the most recent moderation decision for a content item.
func (s *ModerationService) GetDecision(ctx context.Context, contentID uint) (*models.ModerationDecision, error) {
	var decision models.ModerationDecision
	err := cache.Aside(ctx, cache.DecisionKey(contentID), &decision, cache.DecisionTTL, func() error {
		latest, err := s.contentRepo.LatestDecision(ctx, contentID)
		if err != nil {
			return err
		}
		decision = *latest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

// ListByAuthor returns the author's content, newest first.
func (s *ModerationService) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.ContentItem, error) {
	return s.contentRepo.ListByAuthor(ctx, authorID, limit, offset)
}

func decisionNotes(warnings []string, details string) string {
	parts := make([]string, 0, len(warnings)+1)
	parts = append(parts, warnings...)
	if details != "" && details != "unavailable" {
		parts = append(parts, "originality: "+details)
	}
	return strings.Join(parts, "; ")
}
