// Package dragdrop turns drag gestures over rendered tree rows into hierarchy moves.
package dragdrop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kb-cli/internal/model"
	"kb-cli/internal/mutate"
)

// Row attributes every rendered tree row must carry.
const (
	AttrID     = "data-id"
	AttrType   = "data-type"
	AttrIndent = "data-indent"
)

var (
	ErrMissingID = errors.New("row has no " + AttrID)
	// ErrStaleTarget is returned for a drop onto a row that is not in the current registration.
	ErrStaleTarget = errors.New("drop target is no longer shown")
)

// Row is the drag/drop view of a rendered item.
type Row struct {
	ID     string
	Type   model.ItemType
	Indent int
}

// Attrs returns the attribute set a renderer attaches to the row.
func (r Row) Attrs() map[string]string {
	return map[string]string{
		AttrID:     r.ID,
		AttrType:   string(r.Type),
		AttrIndent: strconv.Itoa(r.Indent),
	}
}

// ParseRow reads a row from its attributes. A missing indent means 0.
func ParseRow(attrs map[string]string) (Row, error) {
	id := strings.TrimSpace(attrs[AttrID])
	if id == "" {
		return Row{}, ErrMissingID
	}
	typ, err := model.ParseItemType(attrs[AttrType])
	if err != nil {
		return Row{}, fmt.Errorf("row %s: %w", id, err)
	}
	indent := 0
	if raw := strings.TrimSpace(attrs[AttrIndent]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Row{}, fmt.Errorf("row %s: invalid %s %q", id, AttrIndent, raw)
		}
		indent = n
	}
	return Row{ID: id, Type: typ, Indent: indent}, nil
}

// DropPosition maps the pointer offset within a target row to a position. Containers use the
// outer quarters for before/after and the middle for inside; leaves split at the midpoint.
func DropPosition(targetType model.ItemType, offsetY, height float64) model.Position {
	if targetType.IsContainer() {
		switch {
		case height <= 0:
			return model.PositionInside
		case offsetY < height*0.25:
			return model.PositionBefore
		case offsetY > height*0.75:
			return model.PositionAfter
		default:
			return model.PositionInside
		}
	}
	if height > 0 && offsetY < height/2 {
		return model.PositionBefore
	}
	return model.PositionAfter
}

// Mover is the part of the hierarchy mutator a drop needs.
type Mover interface {
	Move(bookID, itemID, targetID string, pos model.Position, itemType, targetType model.ItemType) (mutate.Result, error)
	MoveToEnd(bookID, itemID string, itemType model.ItemType) (mutate.Result, error)
}

type Controller struct {
	Mover Mover
	// Book returns the active book id at drop time.
	Book func() string

	targets map[string]Row
}

func NewController(mover Mover, book func() string) *Controller {
	return &Controller{Mover: mover, Book: book, targets: map[string]Row{}}
}

// Register replaces the set of rows that accept drops. Renderers call it after every rebuild.
func (c *Controller) Register(rows []Row) {
	c.targets = make(map[string]Row, len(rows))
	for _, r := range rows {
		c.targets[r.ID] = r
	}
}

// Target returns a registered row.
func (c *Controller) Target(id string) (Row, bool) {
	r, ok := c.targets[strings.TrimSpace(id)]
	return r, ok
}

func (c *Controller) Targets() int { return len(c.targets) }

// Drop handles a pointer drop. A nil target means empty space below the tree. The position is
// computed from the registered row, not the caller's copy.
func (c *Controller) Drop(dragged Row, target *Row, offsetY, height float64) (mutate.Result, error) {
	if target == nil {
		return c.DropAt(dragged, nil, "")
	}
	reg, ok := c.Target(target.ID)
	if !ok {
		return mutate.Result{}, ErrStaleTarget
	}
	return c.DropAt(dragged, &reg, DropPosition(reg.Type, offsetY, height))
}

// DropAt applies a drop with an explicit position. Only registered rows accept drops; dropping
// a row on itself is ignored.
func (c *Controller) DropAt(dragged Row, target *Row, pos model.Position) (mutate.Result, error) {
	book := ""
	if c.Book != nil {
		book = c.Book()
	}
	if target == nil {
		return c.Mover.MoveToEnd(book, dragged.ID, dragged.Type)
	}
	reg, ok := c.Target(target.ID)
	if !ok {
		return mutate.Result{}, ErrStaleTarget
	}
	if reg.ID == dragged.ID {
		return mutate.Result{}, nil
	}
	return c.Mover.Move(book, dragged.ID, reg.ID, pos, dragged.Type, reg.Type)
}
