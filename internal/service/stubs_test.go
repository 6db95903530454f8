package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/PluraGate/SyriaHub-sub004/internal/classify"
	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/originality"
	"github.com/PluraGate/SyriaHub-sub004/internal/repository"

	"gorm.io/gorm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	updateFn           func(context.Context, *models.User) error
	updateTrustScoreFn func(context.Context, uint, float64) error
	listFn             func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateTrustScore(ctx context.Context, id uint, score float64) error {
	return s.updateTrustScoreFn(ctx, id, score)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:          func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:       func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		getByUsernameFn:    func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		createFn:           func(context.Context, *models.User) error { return nil },
		updateFn:           func(context.Context, *models.User) error { return nil },
		updateTrustScoreFn: func(context.Context, uint, float64) error { return nil },
		listFn:             func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

type contentRepoStub struct {
	createFn         func(context.Context, *models.ContentItem) error
	getByIDFn        func(context.Context, uint) (*models.ContentItem, error)
	publishedTextFn  func(context.Context, uint) (string, error)
	recordDecisionFn func(context.Context, *models.ModerationDecision, models.ContentStatus) error
	latestDecisionFn func(context.Context, uint) (*models.ModerationDecision, error)
	listByAuthorFn   func(context.Context, uint, int, int) ([]models.ContentItem, error)
}

func (s *contentRepoStub) Create(ctx context.Context, item *models.ContentItem) error {
	return s.createFn(ctx, item)
}
func (s *contentRepoStub) GetByID(ctx context.Context, id uint) (*models.ContentItem, error) {
	return s.getByIDFn(ctx, id)
}
func (s *contentRepoStub) PublishedText(ctx context.Context, id uint) (string, error) {
	return s.publishedTextFn(ctx, id)
}
func (s *contentRepoStub) RecordDecision(ctx context.Context, decision *models.ModerationDecision, status models.ContentStatus) error {
	return s.recordDecisionFn(ctx, decision, status)
}
func (s *contentRepoStub) LatestDecision(ctx context.Context, contentID uint) (*models.ModerationDecision, error) {
	return s.latestDecisionFn(ctx, contentID)
}
func (s *contentRepoStub) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.ContentItem, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}

func noopContentRepo() *contentRepoStub {
	return &contentRepoStub{
		createFn:        func(context.Context, *models.ContentItem) error { return nil },
		getByIDFn:       func(context.Context, uint) (*models.ContentItem, error) { return &models.ContentItem{}, nil },
		publishedTextFn: func(context.Context, uint) (string, error) { return "", nil },
		recordDecisionFn: func(context.Context, *models.ModerationDecision, models.ContentStatus) error {
			return nil
		},
		latestDecisionFn: func(context.Context, uint) (*models.ModerationDecision, error) {
			return &models.ModerationDecision{}, nil
		},
		listByAuthorFn: func(context.Context, uint, int, int) ([]models.ContentItem, error) { return nil, nil },
	}
}

type appealRepoStub struct {
	getByIDFn         func(context.Context, uint) (*models.Appeal, error)
	openFn            func(context.Context, *models.Appeal, int) error
	requestRevisionFn func(context.Context, uint, string) (*models.Appeal, error)
	resubmitFn        func(context.Context, uint, uint, string, string) (*models.Appeal, error)
	listByUserFn      func(context.Context, uint, int, int) ([]models.Appeal, error)
}

func (s *appealRepoStub) GetByID(ctx context.Context, id uint) (*models.Appeal, error) {
	return s.getByIDFn(ctx, id)
}
func (s *appealRepoStub) Open(ctx context.Context, appeal *models.Appeal, jurySize int) error {
	return s.openFn(ctx, appeal, jurySize)
}
func (s *appealRepoStub) RequestRevision(ctx context.Context, appealID uint, note string) (*models.Appeal, error) {
	return s.requestRevisionFn(ctx, appealID, note)
}
func (s *appealRepoStub) Resubmit(ctx context.Context, appealID, userID uint, title, body string) (*models.Appeal, error) {
	return s.resubmitFn(ctx, appealID, userID, title, body)
}
func (s *appealRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Appeal, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}

func noopAppealRepo() *appealRepoStub {
	return &appealRepoStub{
		getByIDFn: func(context.Context, uint) (*models.Appeal, error) { return &models.Appeal{}, nil },
		openFn:    func(context.Context, *models.Appeal, int) error { return nil },
		requestRevisionFn: func(context.Context, uint, string) (*models.Appeal, error) {
			return &models.Appeal{}, nil
		},
		resubmitFn: func(context.Context, uint, uint, string, string) (*models.Appeal, error) {
			return &models.Appeal{}, nil
		},
		listByUserFn: func(context.Context, uint, int, int) ([]models.Appeal, error) { return nil, nil },
	}
}

type delibRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.JuryDeliberation, error)
	getByAppealIDFn func(context.Context, uint) (*models.JuryDeliberation, error)
	castVoteFn      func(context.Context, uint, uint, models.JuryVote) (*repository.VoteOutcome, error)
}

func (s *delibRepoStub) GetByID(ctx context.Context, id uint) (*models.JuryDeliberation, error) {
	return s.getByIDFn(ctx, id)
}
func (s *delibRepoStub) GetByAppealID(ctx context.Context, appealID uint) (*models.JuryDeliberation, error) {
	return s.getByAppealIDFn(ctx, appealID)
}
func (s *delibRepoStub) CastVote(ctx context.Context, deliberationID, jurorID uint, vote models.JuryVote) (*repository.VoteOutcome, error) {
	return s.castVoteFn(ctx, deliberationID, jurorID, vote)
}

func noopDelibRepo() *delibRepoStub {
	return &delibRepoStub{
		getByIDFn: func(context.Context, uint) (*models.JuryDeliberation, error) {
			return &models.JuryDeliberation{}, nil
		},
		getByAppealIDFn: func(context.Context, uint) (*models.JuryDeliberation, error) {
			return &models.JuryDeliberation{}, nil
		},
		castVoteFn: func(context.Context, uint, uint, models.JuryVote) (*repository.VoteOutcome, error) {
			return &repository.VoteOutcome{}, nil
		},
	}
}

type promotionRepoStub struct {
	createFn      func(context.Context, *models.PromotionRequest) error
	getByIDFn     func(context.Context, uint) (*models.PromotionRequest, error)
	endorseFn     func(context.Context, uint, *models.Endorsement) (*repository.EndorseOutcome, error)
	rejectFn      func(context.Context, uint, uint, string) (*models.PromotionRequest, error)
	listPendingFn func(context.Context, int, int) ([]models.PromotionRequest, error)
}

func (s *promotionRepoStub) Create(ctx context.Context, req *models.PromotionRequest) error {
	return s.createFn(ctx, req)
}
func (s *promotionRepoStub) GetByID(ctx context.Context, id uint) (*models.PromotionRequest, error) {
	return s.getByIDFn(ctx, id)
}
func (s *promotionRepoStub) Endorse(ctx context.Context, requestID uint, e *models.Endorsement) (*repository.EndorseOutcome, error) {
	return s.endorseFn(ctx, requestID, e)
}
func (s *promotionRepoStub) Reject(ctx context.Context, requestID, reviewerID uint, note string) (*models.PromotionRequest, error) {
	return s.rejectFn(ctx, requestID, reviewerID, note)
}
func (s *promotionRepoStub) ListPending(ctx context.Context, limit, offset int) ([]models.PromotionRequest, error) {
	return s.listPendingFn(ctx, limit, offset)
}

func noopPromotionRepo() *promotionRepoStub {
	return &promotionRepoStub{
		createFn: func(context.Context, *models.PromotionRequest) error { return nil },
		getByIDFn: func(context.Context, uint) (*models.PromotionRequest, error) {
			return &models.PromotionRequest{}, nil
		},
		endorseFn: func(context.Context, uint, *models.Endorsement) (*repository.EndorseOutcome, error) {
			return &repository.EndorseOutcome{Request: &models.PromotionRequest{}}, nil
		},
		rejectFn: func(context.Context, uint, uint, string) (*models.PromotionRequest, error) {
			return &models.PromotionRequest{}, nil
		},
		listPendingFn: func(context.Context, int, int) ([]models.PromotionRequest, error) { return nil, nil },
	}
}

type trustQueueStub struct {
	enqueueFn  func(context.Context, *gorm.DB, uint, string) error
	claimFn    func(context.Context, string, int, time.Duration) ([]models.TrustRecalcTask, error)
	completeFn func(context.Context, uint, string) (bool, error)
	inputsFn   func(context.Context, uint) (*repository.TrustInputs, error)
	depthFn    func(context.Context) (int64, error)
}

func (s *trustQueueStub) Enqueue(ctx context.Context, tx *gorm.DB, subjectUserID uint, reason string) error {
	return s.enqueueFn(ctx, tx, subjectUserID, reason)
}
func (s *trustQueueStub) Claim(ctx context.Context, token string, batch int, lease time.Duration) ([]models.TrustRecalcTask, error) {
	return s.claimFn(ctx, token, batch, lease)
}
func (s *trustQueueStub) Complete(ctx context.Context, taskID uint, token string) (bool, error) {
	return s.completeFn(ctx, taskID, token)
}
func (s *trustQueueStub) Inputs(ctx context.Context, userID uint) (*repository.TrustInputs, error) {
	return s.inputsFn(ctx, userID)
}
func (s *trustQueueStub) Depth(ctx context.Context) (int64, error) {
	return s.depthFn(ctx)
}

func noopTrustQueue() *trustQueueStub {
	return &trustQueueStub{
		enqueueFn: func(context.Context, *gorm.DB, uint, string) error { return nil },
		claimFn: func(context.Context, string, int, time.Duration) ([]models.TrustRecalcTask, error) {
			return nil, nil
		},
		completeFn: func(context.Context, uint, string) (bool, error) { return true, nil },
		inputsFn: func(context.Context, uint) (*repository.TrustInputs, error) {
			return &repository.TrustInputs{Role: models.RoleMember}, nil
		},
		depthFn: func(context.Context) (int64, error) { return 0, nil },
	}
}

type auditRepoStub struct {
	listFn          func(context.Context, int, int) ([]models.AuditEntry, int64, error)
	listBySubjectFn func(context.Context, uint, int, int) ([]models.AuditEntry, error)
}

func (s *auditRepoStub) List(ctx context.Context, limit, offset int) ([]models.AuditEntry, int64, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *auditRepoStub) ListBySubject(ctx context.Context, subjectUserID uint, limit, offset int) ([]models.AuditEntry, error) {
	return s.listBySubjectFn(ctx, subjectUserID, limit, offset)
}

type reevaluatorStub struct {
	reevaluateFn func(context.Context, uint) (*DecisionReport, error)
}

func (s *reevaluatorStub) Reevaluate(ctx context.Context, contentID uint) (*DecisionReport, error) {
	return s.reevaluateFn(ctx, contentID)
}

func noopReevaluator() *reevaluatorStub {
	return &reevaluatorStub{
		reevaluateFn: func(context.Context, uint) (*DecisionReport, error) {
			return &DecisionReport{
				Decision: &models.ModerationDecision{Outcome: models.DecisionBlock},
				Status:   models.ContentStatusFlagged,
			}, nil
		},
	}
}

type classifierStub struct {
	classifyFn func(context.Context, string) classify.Result
}

func (s *classifierStub) Classify(ctx context.Context, text string) classify.Result {
	return s.classifyFn(ctx, text)
}

type checkerStub struct {
	checkFn func(context.Context, string, string) originality.Verdict
}

func (s *checkerStub) Check(ctx context.Context, title, body string) originality.Verdict {
	return s.checkFn(ctx, title, body)
}

type indexStub struct {
	searchFn func(context.Context, []float32, float64, int) ([]originality.Match, error)
	upsertFn func(context.Context, uint, []float32) error
}

func (s *indexStub) Search(ctx context.Context, vec []float32, floor float64, limit int) ([]originality.Match, error) {
	return s.searchFn(ctx, vec, floor, limit)
}
func (s *indexStub) Upsert(ctx context.Context, contentID uint, vec []float32) error {
	return s.upsertFn(ctx, contentID, vec)
}

func noopIndex() *indexStub {
	return &indexStub{
		searchFn: func(context.Context, []float32, float64, int) ([]originality.Match, error) {
			return nil, nil
		},
		upsertFn: func(context.Context, uint, []float32) error { return nil },
	}
}
