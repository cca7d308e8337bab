package nav

import (
	"errors"
	"fmt"

	"github.com/feishukit/feishukit/pkg/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotAFolder         = errors.New("not a folder")
	ErrAtRoot             = errors.New("already at root")
	ErrUnsupportedInMode  = errors.New("not supported in this mode")
	ErrUnknownAlias       = errors.New("unknown bookmark")
	ErrBrokenAncestorLink = errors.New("broken ancestor link")
	ErrRemoteFailure      = errors.New("remote request failed")
	ErrNoSpace            = errors.New("no wiki space selected")
	ErrInvalidTarget      = errors.New("invalid move target")

	errEmptyNodeID = errors.New("empty node id")
)

// UnsupportedError is returned when a verb is refused for the current mode.
// No remote call is made.
type UnsupportedError struct {
	Op   string
	Mode models.Mode
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported in %s mode", e.Op, modeLabel(e.Mode))
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupportedInMode
}

// BrokenLinkError is returned when a get_node call fails partway through an
// ancestor walk. Partial holds the chain resolved below the failing node,
// root-most first.
type BrokenLinkError struct {
	NodeID  string
	Partial Location
	Err     error
}

func (e *BrokenLinkError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("broken ancestor link: %v", e.Err)
	}
	return fmt.Sprintf("broken ancestor link at %s: %v", e.NodeID, e.Err)
}

func (e *BrokenLinkError) Is(target error) bool {
	return target == ErrBrokenAncestorLink
}

func (e *BrokenLinkError) Unwrap() error {
	return e.Err
}

// RemoteError wraps a failure reported by a store.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteFailure
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func notFound(name string) error {
	return fmt.Errorf("%q: %w", name, ErrNotFound)
}

func modeLabel(m models.Mode) string {
	switch m {
	case models.ModeTree:
		return "drive"
	case models.ModeGraph:
		return "wiki"
	}
	return string(m)
}
