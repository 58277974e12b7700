package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
)

// DocumentStore is the folder/document capability the batch needs from the document store
type DocumentStore interface {
	ListMeetingFolders(ctx context.Context, rootFolderID string) ([]entities.Folder, error)
	// FindDocument returns nil, nil when no document matches
	FindDocument(ctx context.Context, folderID, namePattern string) (*entities.DocumentFile, error)
	ReadDocument(ctx context.Context, documentID string) (string, error)
	AppendSection(ctx context.Context, documentID, title, text string) error
	MoveFile(ctx context.Context, fileID, fromParentID, toParentID string) error
}

// AnalysisRepository defines warehouse persistence for analyses
type AnalysisRepository interface {
	Save(ctx context.Context, analysis *entities.MeetingAnalysis) error
	ExistsByDocumentID(ctx context.Context, documentID string) (bool, error)
}

// ProcessedLedger remembers which documents already received an analysis section
type ProcessedLedger interface {
	IsProcessed(ctx context.Context, documentID string) (bool, error)
	MarkProcessed(ctx context.Context, documentID string) error
}

// OutputArchive keeps raw model output for later review
type OutputArchive interface {
	ArchiveAnalysis(ctx context.Context, documentID string, record []byte) error
	ArchiveRejectedOutput(ctx context.Context, documentID, raw, kind string) error
}
