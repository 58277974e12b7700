package repository

import (
	"context"

	"gorm.io/gorm"

	appErrors "github.com/johnquangdev/meeting-analyzer/errors"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
)

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository backed by GORM
func NewAnalysisRepository(db *gorm.DB) repo.AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Save(ctx context.Context, analysis *entities.MeetingAnalysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return appErrors.ErrWarehouseFailed("insert analysis", err).
			WithDetail("document_id", analysis.DocumentID)
	}
	return nil
}

func (r *analysisRepository) ExistsByDocumentID(ctx context.Context, documentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.MeetingAnalysis{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	if err != nil {
		return false, appErrors.ErrWarehouseFailed("check processed", err).
			WithDetail("document_id", documentID)
	}
	return count > 0, nil
}

type noopAnalysisRepository struct{}

// NewNoopAnalysisRepository is used when the warehouse is disabled: nothing is
// persisted and no document is ever reported as processed.
func NewNoopAnalysisRepository() repo.AnalysisRepository {
	return noopAnalysisRepository{}
}

func (noopAnalysisRepository) Save(context.Context, *entities.MeetingAnalysis) error {
	return nil
}

func (noopAnalysisRepository) ExistsByDocumentID(context.Context, string) (bool, error) {
	return false, nil
}
