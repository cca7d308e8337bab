package store

import (
	"context"

	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/protocol"
	"github.com/feishukit/feishukit/pkg/tree"
)

// WikiAPI is the subset of the HTTP client used by Wiki.
type WikiAPI interface {
	ListSpaces(ctx context.Context) ([]protocol.WikiSpace, error)
	ListNodes(ctx context.Context, spaceID, parentToken string) ([]protocol.WikiNode, error)
	GetNode(ctx context.Context, token string) (protocol.WikiNode, error)
	CreateNode(ctx context.Context, spaceID, title, objType, parentToken string) (protocol.WikiNode, error)
	MoveNode(ctx context.Context, spaceID, token, targetParent string) error
	DeleteNode(ctx context.Context, spaceID, token string) error
	RawContent(ctx context.Context, documentID string) (string, error)
	NodeURL(token string) (string, error)
}

// Wiki is the graph store. Nodes belong to a space and expose their parent
// through GetNode; renaming is not offered by the API.
type Wiki struct {
	api WikiAPI
}

// NewWiki wraps a Wiki API client.
func NewWiki(api WikiAPI) *Wiki {
	return &Wiki{api: api}
}

func (w *Wiki) Mode() models.Mode { return models.ModeGraph }

// ListChildren lists parentID in spaceID ordered by name; an empty parent
// lists the space root.
func (w *Wiki) ListChildren(ctx context.Context, spaceID, parentID string) ([]models.Descriptor, error) {
	nodes, err := w.api.ListNodes(ctx, spaceID, parentID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Descriptor, 0, len(nodes))
	for _, n := range nodes {
		d := wikiDescriptor(n)
		if d.SpaceID == "" {
			d.SpaceID = spaceID
		}
		out = append(out, d)
	}
	tree.SortByName(out)
	return out, nil
}

func (w *Wiki) GetNode(ctx context.Context, id string) (models.Descriptor, error) {
	n, err := w.api.GetNode(ctx, id)
	if err != nil {
		return models.Descriptor{}, err
	}
	return wikiDescriptor(n), nil
}

func (w *Wiki) ListSpaces(ctx context.Context) ([]models.Space, error) {
	spaces, err := w.api.ListSpaces(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Space, 0, len(spaces))
	for _, s := range spaces {
		out = append(out, models.Space{ID: s.SpaceID, Name: s.Name, Description: s.Description})
	}
	return out, nil
}

var wikiObjTypeByKind = map[models.Kind]string{
	models.KindDocument:   models.TypeDocx,
	models.KindTabular:    models.TypeSheet,
	models.KindRelational: models.TypeBitable,
}

// Create adds a docx, sheet or bitable node. Plain folders do not exist in Wiki.
func (w *Wiki) Create(ctx context.Context, spaceID, parentID, name string, kind models.Kind) (models.Descriptor, error) {
	objType, ok := wikiObjTypeByKind[kind]
	if !ok {
		return models.Descriptor{}, unsupported(models.ModeGraph, "create "+string(kind))
	}
	n, err := w.api.CreateNode(ctx, spaceID, name, objType, parentID)
	if err != nil {
		return models.Descriptor{}, err
	}
	d := wikiDescriptor(n)
	if d.Name == "" {
		d.Name = name
	}
	if d.SpaceID == "" {
		d.SpaceID = spaceID
	}
	if d.ParentID == "" {
		d.ParentID = parentID
	}
	if d.RawType == "" {
		d.RawType = objType
		d.Kind = kind
	}
	return d, nil
}

func (w *Wiki) Move(ctx context.Context, spaceID string, node models.Descriptor, newParentID string) error {
	if node.SpaceID != "" {
		spaceID = node.SpaceID
	}
	return w.api.MoveNode(ctx, spaceID, node.ID, newParentID)
}

func (w *Wiki) Rename(context.Context, models.Descriptor, string) error {
	return unsupported(models.ModeGraph, "rename")
}

func (w *Wiki) Delete(ctx context.Context, spaceID string, node models.Descriptor) error {
	if node.SpaceID != "" {
		spaceID = node.SpaceID
	}
	return w.api.DeleteNode(ctx, spaceID, node.ID)
}

func (w *Wiki) URL(node models.Descriptor) (string, error) {
	return w.api.NodeURL(node.ID)
}

// Content returns the plain text of a docx node.
func (w *Wiki) Content(ctx context.Context, node models.Descriptor) (string, error) {
	if node.RawType != models.TypeDocx || node.ResourceID == "" {
		return "", unsupported(models.ModeGraph, "read content of "+node.RawType)
	}
	return w.api.RawContent(ctx, node.ResourceID)
}

func wikiDescriptor(n protocol.WikiNode) models.Descriptor {
	return models.Descriptor{
		ID:          n.NodeToken,
		Name:        n.Title,
		Kind:        models.KindForType(n.ObjType, n.HasChild),
		HasChildren: n.HasChild,
		RawType:     n.ObjType,
		ModifiedAt:  parseUnix(n.ObjEditTime),
		SpaceID:     n.SpaceID,
		ParentID:    n.ParentNodeToken,
		ResourceID:  n.ObjToken,
	}
}
