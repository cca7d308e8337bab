// Package store adapts the Drive and Wiki APIs to one tagged Store interface
// so the navigator never looks at remote JSON.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/feishukit/feishukit/pkg/models"
)

// ErrUnsupported is returned when a store cannot perform an operation at all.
var ErrUnsupported = errors.New("operation not supported by this store")

// Store is the capability set shared by both hierarchies.
type Store interface {
	Mode() models.Mode
	ListChildren(ctx context.Context, spaceID, parentID string) ([]models.Descriptor, error)
	Create(ctx context.Context, spaceID, parentID, name string, kind models.Kind) (models.Descriptor, error)
	Move(ctx context.Context, spaceID string, node models.Descriptor, newParentID string) error
	Rename(ctx context.Context, node models.Descriptor, newName string) error
	Delete(ctx context.Context, spaceID string, node models.Descriptor) error
	URL(node models.Descriptor) (string, error)
}

// GraphStore is a Store whose nodes can be fetched individually, exposing
// their parent, and which is partitioned into spaces.
type GraphStore interface {
	Store
	GetNode(ctx context.Context, id string) (models.Descriptor, error)
	ListSpaces(ctx context.Context) ([]models.Space, error)
}

// ContentReader is implemented by stores that can return a node's plain text.
type ContentReader interface {
	Content(ctx context.Context, node models.Descriptor) (string, error)
}

func unsupported(mode models.Mode, op string) error {
	return fmt.Errorf("%s in %s mode: %w", op, mode, ErrUnsupported)
}
