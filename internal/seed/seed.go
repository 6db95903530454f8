// Package seed provides database seeding utilities for development and
// testing. These helpers are intended for development only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers   int
	NumContent int
}

// Seeder creates demo governance data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll removes all governance data. Development only.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.TrustRecalcTask{},
		&models.AuditEntry{},
		&models.Endorsement{},
		&models.PromotionRequest{},
		&models.JurorVote{},
		&models.JuryDeliberation{},
		&models.Appeal{},
		&models.ContentEmbedding{},
		&models.ModerationDecision{},
		&models.ContentItem{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}
	log.Println("Database cleared")
	return nil
}

// SeedUsers creates n users with a realistic role mix: mostly members, a few
// trusted users and moderators, and two admins.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		role := models.RoleMember
		switch {
		case i < 2:
			role = models.RoleAdmin
		case i < 2+n/10:
			role = models.RoleModerator
		case i < 2+n/4:
			role = models.RoleTrusted
		}
		users = append(users, models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
			Password: string(hashedPassword),
			Role:     role,
		})
	}
	if err := s.db.CreateInBatches(&users, 100).Error; err != nil {
		return nil, err
	}
	log.Printf("Seeded %d users", len(users))
	return users, nil
}

// SeedContent creates content in a mix of lifecycle states, with a matching
// moderation decision for everything past draft.
func (s *Seeder) SeedContent(users []models.User, n int) error {
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		item := models.ContentItem{
			AuthorID:  author.ID,
			Title:     gofakeit.Sentence(6),
			Body:      gofakeit.Paragraph(3, 5, 12, "\n"),
			Status:    models.ContentStatusDraft,
			CreatedAt: time.Now().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour),
		}
		if err := s.db.Create(&item).Error; err != nil {
			return err
		}

		// ~70% published, ~15% flagged, rest draft
		roll := s.rng.Float64()
		if roll > 0.85 {
			continue
		}

		decision := models.ModerationDecision{
			ContentID:  item.ID,
			Outcome:    models.DecisionAllow,
			Similarity: s.rng.Float64() * 0.5,
		}
		status := models.ContentStatusPublished
		if roll > 0.70 {
			decision.Outcome = models.DecisionBlock
			decision.Flagged = true
			decision.Categories = map[string]bool{"harassment": true}
			decision.Scores = map[string]float64{"harassment": 0.6 + s.rng.Float64()*0.4}
			status = models.ContentStatusFlagged
		}
		if err := s.db.Create(&decision).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"status":             status,
			"latest_decision_id": decision.ID,
		}
		if err := s.db.Model(&item).Updates(updates).Error; err != nil {
			return err
		}
	}
	log.Printf("Seeded %d content items", n)
	return nil
}

// SeedAppeals opens an appeal with a deliberation for a sample of flagged
// content.
func (s *Seeder) SeedAppeals(jurySize int) error {
	var flagged []models.ContentItem
	if err := s.db.Where("status = ?", models.ContentStatusFlagged).Limit(20).Find(&flagged).Error; err != nil {
		return err
	}

	for _, item := range flagged {
		if s.rng.Float64() > 0.5 {
			continue
		}
		appeal := models.Appeal{
			ContentID: item.ID,
			UserID:    item.AuthorID,
			Reason:    gofakeit.Paragraph(1, 2, 10, " "),
			Status:    models.AppealStatusPending,
		}
		if err := s.db.Create(&appeal).Error; err != nil {
			return err
		}
		deliberation := models.JuryDeliberation{
			AppealID: appeal.ID,
			JurySize: jurySize,
		}
		if err := s.db.Create(&deliberation).Error; err != nil {
			return err
		}
		if err := s.db.Model(&appeal).Update("deliberation_id", deliberation.ID).Error; err != nil {
			return err
		}
	}
	log.Println("Seeded appeals for flagged content")
	return nil
}

// SeedPromotions opens a pending promotion request for a few members.
func (s *Seeder) SeedPromotions(users []models.User) error {
	count := 0
	for _, user := range users {
		if user.Role != models.RoleMember || count >= 5 {
			continue
		}
		req := models.PromotionRequest{
			UserID:                        user.ID,
			CurrentRole:                   user.Role,
			RequestedRole:                 models.RoleTrusted,
			Justification:                 gofakeit.Paragraph(1, 3, 10, " "),
			Status:                        models.PromotionStatusPending,
			RequiredModeratorEndorsements: 2,
			RequiredAdminEndorsements:     1,
		}
		if err := s.db.Create(&req).Error; err != nil {
			return err
		}
		count++
	}
	log.Printf("Seeded %d promotion requests", count)
	return nil
}
