package model

import (
	"fmt"
	"strings"
	"time"
)

type ItemType string

const (
	ItemTypeCategory ItemType = "category"
	ItemTypeFolder   ItemType = "folder"
	ItemTypeArticle  ItemType = "article"
	ItemTypeFile     ItemType = "file"
)

// Rank is the sibling sort priority: categories first, files last.
func (t ItemType) Rank() int {
	switch t {
	case ItemTypeCategory:
		return 0
	case ItemTypeFolder:
		return 1
	case ItemTypeArticle:
		return 2
	case ItemTypeFile:
		return 3
	default:
		return 4
	}
}

// IsContainer reports whether items of this type may own children.
func (t ItemType) IsContainer() bool {
	return t == ItemTypeCategory || t == ItemTypeFolder
}

func (t ItemType) Valid() bool {
	return t.Rank() < 4
}

func ParseItemType(s string) (ItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "category", "cat":
		return ItemTypeCategory, nil
	case "folder", "dir":
		return ItemTypeFolder, nil
	case "article", "doc":
		return ItemTypeArticle, nil
	case "file":
		return ItemTypeFile, nil
	default:
		return "", fmt.Errorf("invalid item type: %q (expected category|folder|article|file)", s)
	}
}

// Position is where a dragged item lands relative to its drop target.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "before":
		return PositionBefore, nil
	case "after":
		return PositionAfter, nil
	case "inside", "into", "":
		return PositionInside, nil
	default:
		return "", fmt.Errorf("invalid position: %q (expected before|after|inside)", s)
	}
}

type Book struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Item struct {
	ID     string   `json:"id"`
	Type   ItemType `json:"type"`
	Name   string   `json:"name"`
	BookID string   `json:"bookId"`

	// ParentID is nil for top-level items. Always serialized (as null when unset).
	ParentID *string `json:"parentId"`

	Status     string `json:"status,omitempty"`
	Content    string `json:"content,omitempty"`
	AutoExpand bool   `json:"autoExpand,omitempty"`

	// File items only.
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	if it.ParentID != nil {
		pid := *it.ParentID
		out.ParentID = &pid
	}
	return out
}

// Parent returns the parent id, or "" for top-level items.
func (it Item) Parent() string {
	if it.ParentID == nil {
		return ""
	}
	return strings.TrimSpace(*it.ParentID)
}

const (
	StatusDraft     = "draft"
	StatusReview    = "review"
	StatusPublished = "published"
)

func ParseStatus(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return "", nil
	case StatusDraft:
		return StatusDraft, nil
	case StatusReview:
		return StatusReview, nil
	case StatusPublished:
		return StatusPublished, nil
	default:
		return "", fmt.Errorf("invalid status: %q (expected draft|review|published|none)", s)
	}
}

type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	Type     string    `json:"type"`
	BookID   string    `json:"bookId,omitempty"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}

func StrPtr(s string) *string { return &s }

// SameParent compares two nullable parent ids.
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return strings.TrimSpace(*a) == strings.TrimSpace(*b)
}
