package store

import (
	"context"
	"strconv"
	"time"

	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/protocol"
	"github.com/feishukit/feishukit/pkg/tree"
)

// DriveAPI is the subset of the HTTP client used by Drive.
type DriveAPI interface {
	ListFiles(ctx context.Context, folderToken string) ([]protocol.DriveFile, error)
	CreateFolder(ctx context.Context, name, parentToken string) (string, error)
	CreateSpreadsheet(ctx context.Context, title, folderToken string) (string, error)
	CreateBitable(ctx context.Context, name, folderToken string) (string, error)
	MoveFile(ctx context.Context, token, fileType, targetFolder string) error
	RenameFile(ctx context.Context, token, fileType, newName string) error
	DeleteFile(ctx context.Context, token, fileType string) error
	RawContent(ctx context.Context, documentID string) (string, error)
	FileURL(token, fileType string) (string, error)
}

// Drive is the tree store: every node has exactly one parent folder.
type Drive struct {
	api DriveAPI
}

// NewDrive wraps a Drive API client.
func NewDrive(api DriveAPI) *Drive {
	return &Drive{api: api}
}

func (d *Drive) Mode() models.Mode { return models.ModeTree }

// ListChildren lists a folder ordered by name. spaceID is ignored.
func (d *Drive) ListChildren(ctx context.Context, _, parentID string) ([]models.Descriptor, error) {
	files, err := d.api.ListFiles(ctx, parentID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Descriptor, 0, len(files))
	for _, f := range files {
		out = append(out, driveDescriptor(f, parentID))
	}
	tree.SortByName(out)
	return out, nil
}

// Create makes a folder, spreadsheet or bitable in parentID. Documents
// cannot be created in Drive.
func (d *Drive) Create(ctx context.Context, _, parentID, name string, kind models.Kind) (models.Descriptor, error) {
	var (
		token   string
		rawType string
		err     error
	)
	switch kind {
	case models.KindFolder:
		rawType = models.TypeFolder
		token, err = d.api.CreateFolder(ctx, name, parentID)
	case models.KindTabular:
		rawType = models.TypeSheet
		token, err = d.api.CreateSpreadsheet(ctx, name, parentID)
	case models.KindRelational:
		rawType = models.TypeBitable
		token, err = d.api.CreateBitable(ctx, name, parentID)
	default:
		return models.Descriptor{}, unsupported(models.ModeTree, "create "+string(kind))
	}
	if err != nil {
		return models.Descriptor{}, err
	}
	return models.Descriptor{
		ID:       token,
		Name:     name,
		Kind:     kind,
		RawType:  rawType,
		ParentID: parentID,
	}, nil
}

func (d *Drive) Move(ctx context.Context, _ string, node models.Descriptor, newParentID string) error {
	return d.api.MoveFile(ctx, node.ID, node.RawType, newParentID)
}

func (d *Drive) Rename(ctx context.Context, node models.Descriptor, newName string) error {
	return d.api.RenameFile(ctx, node.ID, node.RawType, newName)
}

func (d *Drive) Delete(ctx context.Context, _ string, node models.Descriptor) error {
	return d.api.DeleteFile(ctx, node.ID, node.RawType)
}

func (d *Drive) URL(node models.Descriptor) (string, error) {
	return d.api.FileURL(node.ID, node.RawType)
}

// Content returns the plain text of a docx file.
func (d *Drive) Content(ctx context.Context, node models.Descriptor) (string, error) {
	if node.RawType != models.TypeDocx {
		return "", unsupported(models.ModeTree, "read content of "+node.RawType)
	}
	return d.api.RawContent(ctx, node.ID)
}

func driveDescriptor(f protocol.DriveFile, parentID string) models.Descriptor {
	parent := f.ParentToken
	if parent == "" {
		parent = parentID
	}
	return models.Descriptor{
		ID:         f.Token,
		Name:       f.Name,
		Kind:       models.KindForType(f.Type, false),
		RawType:    f.Type,
		ModifiedAt: parseUnix(f.ModifiedTime),
		ParentID:   parent,
	}
}

// parseUnix parses the API's unix-seconds strings; malformed values yield the zero time.
func parseUnix(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
