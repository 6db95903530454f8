package repository

import (
	"context"
	"time"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"gorm.io/gorm"
)

// TrustInputs are the per-user aggregates the trust recomputation reads. The
// recomputation is a pure function of these, so replaying a task after a
// crashed sweep converges on the same score.
type TrustInputs struct {
	Role                 models.Role
	EndorsementsGiven    int64
	AppealsApproved      int64
	AppealsRejected      int64
	ContentBlocked       int64
	EndorsementsReceived int64
}

// TrustQueueRepository defines the interface for the trust-recalculation
// queue. Enqueue takes the caller's transaction so a task becomes visible
// exactly when the mutation that caused it commits.
type TrustQueueRepository interface {
	Enqueue(ctx context.Context, tx *gorm.DB, subjectUserID uint, reason string) error
	Claim(ctx context.Context, token string, batch int, lease time.Duration) ([]models.TrustRecalcTask, error)
	Complete(ctx context.Context, taskID uint, token string) (bool, error)
	Inputs(ctx context.Context, userID uint) (*TrustInputs, error)
	Depth(ctx context.Context) (int64, error)
}

type trustQueueRepository struct {
	db *gorm.DB
}

// NewTrustQueueRepository creates a new trust queue repository
func NewTrustQueueRepository(db *gorm.DB) TrustQueueRepository {
	return &trustQueueRepository{db: db}
}

func (r *trustQueueRepository) Enqueue(ctx context.Context, tx *gorm.DB, subjectUserID uint, reason string) error {
	if tx == nil {
		tx = r.db
	}
	task := models.TrustRecalcTask{
		SubjectUserID: subjectUserID,
		Reason:        reason,
		EnqueuedAt:    time.Now(),
	}
	if err := tx.WithContext(ctx).Create(&task).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Claim stamps up to batch unprocessed tasks with the sweep's token. A task
// already claimed by another sweep is skipped until its lease expires, so two
// concurrent sweeps never work the same entry. The conditional update is the
// arbiter under races: only tasks the update actually stamped are returned.
func (r *trustQueueRepository) Claim(ctx context.Context, token string, batch int, lease time.Duration) ([]models.TrustRecalcTask, error) {
	now := time.Now()
	cutoff := now.Add(-lease)

	var candidateIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.TrustRecalcTask{}).
		Where("processed = ? AND (claimed_at IS NULL OR claimed_at < ?)", false, cutoff).
		Order("id").
		Limit(batch).
		Pluck("id", &candidateIDs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	err = r.db.WithContext(ctx).
		Model(&models.TrustRecalcTask{}).
		Where("id IN ? AND processed = ? AND (claimed_at IS NULL OR claimed_at < ?)", candidateIDs, false, cutoff).
		Updates(map[string]interface{}{
			"claim_token": token,
			"claimed_at":  now,
		}).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var claimed []models.TrustRecalcTask
	err = r.db.WithContext(ctx).
		Where("claim_token = ? AND processed = ?", token, false).
		Order("id").
		Find(&claimed).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return claimed, nil
}

// Complete marks a claimed task processed. It reports false when the task was
// reclaimed by another sweep in the meantime, in which case the caller's work
// stands anyway because recomputation is idempotent.
func (r *trustQueueRepository) Complete(ctx context.Context, taskID uint, token string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TrustRecalcTask{}).
		Where("id = ? AND claim_token = ? AND processed = ?", taskID, token, false).
		Update("processed", true)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *trustQueueRepository) Inputs(ctx context.Context, userID uint) (*TrustInputs, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	in := TrustInputs{Role: user.Role}
	db := r.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&in.EndorsementsGiven, db.Model(&models.Endorsement{}).Where("endorser_id = ?", userID)},
		{&in.AppealsApproved, db.Model(&models.Appeal{}).Where("user_id = ? AND status = ?", userID, models.AppealStatusApproved)},
		{&in.AppealsRejected, db.Model(&models.Appeal{}).Where("user_id = ? AND status = ?", userID, models.AppealStatusRejected)},
		{&in.ContentBlocked, db.Model(&models.ContentItem{}).Where("author_id = ? AND status = ?", userID, models.ContentStatusBlocked)},
		{&in.EndorsementsReceived, db.Model(&models.Endorsement{}).
			Joins("JOIN promotion_requests ON promotion_requests.id = endorsements.request_id").
			Where("promotion_requests.user_id = ?", userID)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return &in, nil
}

func (r *trustQueueRepository) Depth(ctx context.Context) (int64, error) {
	var depth int64
	err := r.db.WithContext(ctx).
		Model(&models.TrustRecalcTask{}).
		Where("processed = ?", false).
		Count(&depth).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return depth, nil
}
