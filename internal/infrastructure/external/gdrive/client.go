package gdrive

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	appErrors "github.com/johnquangdev/meeting-analyzer/errors"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

const (
	folderMimeType   = "application/vnd.google-apps.folder"
	documentMimeType = "application/vnd.google-apps.document"
	documentURLBase  = "https://docs.google.com/document/d/"
)

var folderIDPattern = regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`)

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// ExtractFolderID returns the folder ID of a Drive folder URL
func ExtractFolderID(url string) (string, bool) {
	m := folderIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DocumentURL returns the browser URL of a Google Docs document
func DocumentURL(documentID string) string {
	return documentURLBase + documentID
}

// Client implements DocumentStore on Google Drive v3 and Docs v1
type Client struct {
	drive  *drive.Service
	docs   *docs.Service
	logger *zap.Logger
}

var _ repo.DocumentStore = (*Client)(nil)

// NewClient authenticates with the service account from cfg
func NewClient(ctx context.Context, cfg config.DriveConfig, logger *zap.Logger) (*Client, error) {
	credentials := []byte(cfg.CredentialsJSON)
	if len(credentials) == 0 && cfg.CredentialsFile != "" {
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, appErrors.ErrConfiguration(cfg.CredentialsFile, err)
		}
		credentials = b
	}
	if len(credentials) == 0 {
		return nil, appErrors.ErrConfiguration("google service account", fmt.Errorf("no credentials configured"))
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentials, drive.DriveScope, docs.DocumentsScope)
	if err != nil {
		return nil, appErrors.ErrConfiguration("google service account", err)
	}

	return NewClientWithOptions(ctx, logger, option.WithHTTPClient(jwtConfig.Client(ctx)))
}

// NewClientWithOptions builds the Drive and Docs services with explicit client options
func NewClientWithOptions(ctx context.Context, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	docsService, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docs service: %w", err)
	}

	return &Client{drive: driveService, docs: docsService, logger: logger}, nil
}

// ListMeetingFolders lists the non-trashed subfolders of rootFolderID, newest first
func (c *Client) ListMeetingFolders(ctx context.Context, rootFolderID string) ([]entities.Folder, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false", queryEscaper.Replace(rootFolderID), folderMimeType)

	var folders []entities.Folder
	err := c.drive.Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name, createdTime, modifiedTime)").
		OrderBy("createdTime desc").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				folders = append(folders, entities.Folder{
					ID:           f.Id,
					Name:         f.Name,
					CreatedTime:  parseTime(f.CreatedTime),
					ModifiedTime: parseTime(f.ModifiedTime),
				})
			}
			return nil
		})
	if err != nil {
		return nil, appErrors.ErrDriveFailed("list folders", err).WithDetail("folder_id", rootFolderID)
	}

	c.logger.Debug("📂 Listed meeting folders",
		zap.String("root_folder_id", rootFolderID),
		zap.Int("count", len(folders)))
	return folders, nil
}

// FindDocument returns the first Google Docs document in folderID whose name contains namePattern
func (c *Client) FindDocument(ctx context.Context, folderID, namePattern string) (*entities.DocumentFile, error) {
	query := fmt.Sprintf("'%s' in parents and name contains '%s' and mimeType='%s' and trashed=false",
		queryEscaper.Replace(folderID), queryEscaper.Replace(namePattern), documentMimeType)

	list, err := c.drive.Files.List().
		Q(query).
		Fields("files(id, name, createdTime)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, appErrors.ErrDriveFailed("find document", err).WithDetail("folder_id", folderID)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}

	f := list.Files[0]
	return &entities.DocumentFile{ID: f.Id, Name: f.Name}, nil
}

// ReadDocument returns the plain text of a document body, including table cells
func (c *Client) ReadDocument(ctx context.Context, documentID string) (string, error) {
	doc, err := c.docs.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		return "", appErrors.ErrDriveFailed("read document", err).WithDetail("document_id", documentID)
	}
	if doc.Body == nil {
		return "", nil
	}

	var sb strings.Builder
	writeContent(&sb, doc.Body.Content)
	return sb.String(), nil
}

func writeContent(sb *strings.Builder, content []*docs.StructuralElement) {
	for _, el := range content {
		switch {
		case el.Paragraph != nil:
			for _, pe := range el.Paragraph.Elements {
				if pe.TextRun != nil {
					sb.WriteString(pe.TextRun.Content)
				}
			}
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					writeContent(sb, cell.Content)
				}
			}
		}
	}
}

// SectionText is the text appended for one section
func SectionText(title, text string) string {
	return fmt.Sprintf("\n\n--- %s ---\n\n%s\n", title, text)
}

// AppendSection appends a titled section at the end of the document body
func (c *Client) AppendSection(ctx context.Context, documentID, title, text string) error {
	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				EndOfSegmentLocation: &docs.EndOfSegmentLocation{},
				Text:                 SectionText(title, text),
			},
		}},
	}

	if _, err := c.docs.Documents.BatchUpdate(documentID, req).Context(ctx).Do(); err != nil {
		return appErrors.ErrDriveFailed("append section", err).WithDetail("document_id", documentID)
	}

	c.logger.Info("📝 Section appended",
		zap.String("document_id", documentID),
		zap.String("title", title))
	return nil
}

// MoveFile moves fileID from one parent folder to another
func (c *Client) MoveFile(ctx context.Context, fileID, fromParentID, toParentID string) error {
	_, err := c.drive.Files.Update(fileID, &drive.File{}).
		AddParents(toParentID).
		RemoveParents(fromParentID).
		SupportsAllDrives(true).
		Fields("id, parents").
		Context(ctx).
		Do()
	if err != nil {
		return appErrors.ErrDriveFailed("move file", err).WithDetail("file_id", fileID)
	}
	return nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
