package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// formatTask renders one list line, e.g.
//
//	  2. [x] buy milk  (high, due 2024-06-02, overdue) *
//
// The trailing star marks a change the server has not confirmed.
func formatTask(n int, t models.Task, now time.Time) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%3d. [%s] %s  (%s", n, mark, t.Text, t.Priority)
	if t.DueDate != nil {
		fmt.Fprintf(&b, ", due %s", t.DueDate.UTC().Format(common.DateLayout))
		if t.Overdue(now) {
			b.WriteString(", overdue")
		}
	}
	b.WriteString(")")
	if t.Pending {
		b.WriteString(" *")
	}
	return b.String()
}

func formatStats(s models.Stats, lastSync *time.Time) string {
	synced := "never"
	if lastSync != nil {
		synced = lastSync.Local().Format(time.DateTime)
	}
	return fmt.Sprintf("Total: %d  Active: %d  Completed: %d  Overdue: %d\nLast sync: %s",
		s.Total, s.Active, s.Completed, s.Overdue, synced)
}
