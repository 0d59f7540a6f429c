package workers

import (
	"context"
	"log"
	"time"

	"rapidmandados_backend/internal/repositories"

	"gorm.io/gorm"
)

type VerificationWorker struct {
	db               *gorm.DB
	verificationRepo repositories.VerificationRepository
}

func NewVerificationWorker(db *gorm.DB, verificationRepo repositories.VerificationRepository) *VerificationWorker {
	return &VerificationWorker{db: db, verificationRepo: verificationRepo}
}

// Start запускает фоновые задачи верификации
func (w *VerificationWorker) Start(ctx context.Context) {
	// Протухание кодов подтверждения каждые 10 минут
	go w.expireStaleCodes(ctx)
}

// expireStaleCodes помечает pending-коды с истекшим сроком жизни
func (w *VerificationWorker) expireStaleCodes(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Verification worker stopped")
			return
		case <-ticker.C:
			expired, err := w.verificationRepo.ExpireStale(w.db, time.Now())
			if err != nil {
				log.Printf("Error expiring verification codes: %v", err)
			} else if expired > 0 {
				log.Printf("Expired %d stale verification codes", expired)
			}
		}
	}
}
