package doctor

import (
	"context"
	"fmt"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/record"
)

// OrphanCheck detects messages whose board no longer exists. Deleting a board
// cascades to its messages, so orphans only appear when a store file was
// edited by hand or a delete was interrupted.
type OrphanCheck struct {
	db  record.Database
	fix bool
}

// NewOrphanCheck creates a new orphan message check.
// If fix is true, orphaned messages are deleted.
func NewOrphanCheck(db record.Database, fix bool) *OrphanCheck {
	return &OrphanCheck{db: db, fix: fix}
}

func (c *OrphanCheck) Name() string {
	return "Orphan Messages"
}

func (c *OrphanCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	boards, err := c.db.Query(ctx, record.Query{Type: chat.BoardRecordType})
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "List boards",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	messages, err := c.db.Query(ctx, record.Query{
		Type: chat.MessageRecordType,
		Sort: record.Sort{Key: record.SortCreationDate, Ascending: true},
	})
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "List messages",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	known := make(map[string]bool, len(boards))
	for _, b := range boards {
		known[b.Name] = true
	}

	var orphans []record.Record
	for _, m := range messages {
		boardID, ok := chat.BoardID(m)
		if !ok || !known[boardID] {
			orphans = append(orphans, m)
		}
	}

	if len(orphans) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "No orphans",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d messages across %d boards", len(messages), len(boards)),
		})
		return result
	}

	for _, m := range orphans {
		boardID, _ := chat.BoardID(m)
		if boardID == "" {
			boardID = "none"
		}

		if !c.fix {
			result.Items = append(result.Items, CheckItem{
				Label:   m.Name,
				Status:  StatusWarn,
				Detail:  fmt.Sprintf("orphaned message (board %s missing)", boardID),
				Fixable: true,
			})
			continue
		}

		if err := c.db.Delete(ctx, m.Name); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  m.Name,
				Status: StatusFail,
				Detail: fmt.Sprintf("failed to delete: %v", err),
			})
			continue
		}
		result.Items = append(result.Items, CheckItem{
			Label:  m.Name,
			Status: StatusPass,
			Detail: "deleted orphaned message",
		})
	}

	return result
}
