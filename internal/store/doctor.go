package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"kb-cli/internal/model"
)

var ErrDoctorIssuesFound = errors.New("doctor found errors")

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	BookID  string           `json:"bookId,omitempty"`
	ItemID  string           `json:"itemId,omitempty"`
}

type DoctorReport struct {
	Issues []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

// Doctor checks the hierarchy invariants: parents exist in the same book, parent chains
// terminate, only containers own children, and every item mapping has a book.
func Doctor(db *DB) DoctorReport {
	issues := []DoctorIssue{}
	if db == nil {
		return DoctorReport{Issues: issues}
	}

	if sel := strings.TrimSpace(db.SelectedBookID); sel != "" {
		if _, ok := db.FindBook(sel); !ok {
			issues = append(issues, DoctorIssue{
				Level:   DoctorIssueLevelWarn,
				Code:    "selected_book_missing",
				Message: fmt.Sprintf("selected book %s does not exist", sel),
				BookID:  sel,
			})
		}
	}

	bookIDs := make([]string, 0, len(db.Items))
	for id := range db.Items {
		bookIDs = append(bookIDs, id)
	}
	sort.Strings(bookIDs)

	for _, bookID := range bookIDs {
		if _, ok := db.FindBook(bookID); !ok && len(db.Items[bookID]) > 0 {
			issues = append(issues, DoctorIssue{
				Level:   DoctorIssueLevelWarn,
				Code:    "book_missing",
				Message: fmt.Sprintf("items stored under unknown book %s", bookID),
				BookID:  bookID,
			})
		}
		for _, it := range db.ItemsOf(bookID) {
			issues = append(issues, checkItem(db, bookID, it)...)
		}
	}
	return DoctorReport{Issues: issues}
}

func checkItem(db *DB, bookID string, it model.Item) []DoctorIssue {
	var out []DoctorIssue
	issue := func(level DoctorIssueLevel, code, format string, args ...any) {
		out = append(out, DoctorIssue{
			Level:   level,
			Code:    code,
			Message: fmt.Sprintf(format, args...),
			BookID:  bookID,
			ItemID:  it.ID,
		})
	}

	if it.BookID != bookID {
		issue(DoctorIssueLevelError, "book_mismatch", "item %s claims book %q but is stored under %s", it.ID, it.BookID, bookID)
	}
	if !it.Type.Valid() {
		issue(DoctorIssueLevelError, "invalid_type", "item %s has invalid type %q", it.ID, it.Type)
	}

	pid := it.Parent()
	if pid == "" {
		return out
	}
	parent, ok := db.GetItem(bookID, pid)
	if !ok {
		if _, elsewhere := db.FindItem(pid); elsewhere {
			issue(DoctorIssueLevelError, "cross_book_parent", "item %s has parent %s in another book", it.ID, pid)
		} else {
			issue(DoctorIssueLevelError, "orphan", "item %s has missing parent %s", it.ID, pid)
		}
		return out
	}
	if !parent.Type.IsContainer() {
		issue(DoctorIssueLevelWarn, "leaf_parent", "item %s is a child of %s %s", it.ID, parent.Type, parent.ID)
	}
	if it.Type == model.ItemTypeCategory && parent.Type != model.ItemTypeCategory {
		issue(DoctorIssueLevelWarn, "category_under_non_category", "category %s is nested under %s %s", it.ID, parent.Type, parent.ID)
	}
	if inCycle(db, bookID, it.ID) {
		issue(DoctorIssueLevelError, "cycle", "item %s is part of a parent cycle", it.ID)
	}
	return out
}

func inCycle(db *DB, bookID, itemID string) bool {
	seen := map[string]bool{}
	cur := itemID
	for {
		if seen[cur] {
			return cur == itemID
		}
		seen[cur] = true
		it, ok := db.GetItem(bookID, cur)
		if !ok {
			return false
		}
		next := it.Parent()
		if next == "" {
			return false
		}
		cur = next
	}
}
