package models

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/google/go-cmp/cmp"
)

func TestTaskPatch_Apply(t *testing.T) {
	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	newDue := due.AddDate(0, 0, 7)
	text := "new"
	done := true
	high := common.PriorityHigh

	base := TaskFields{Text: "old", DueDate: &due, Priority: common.PriorityMedium}

	tests := []struct {
		name  string
		patch TaskPatch
		want  TaskFields
	}{
		{name: "empty patch", patch: TaskPatch{}, want: base},
		{
			name:  "all fields",
			patch: TaskPatch{Text: &text, Completed: &done, DueDate: &newDue, Priority: &high},
			want:  TaskFields{Text: "new", Completed: true, DueDate: &newDue, Priority: common.PriorityHigh},
		},
		{
			name:  "clear due date wins over value",
			patch: TaskPatch{DueDate: &newDue, ClearDueDate: true},
			want:  TaskFields{Text: "old", Priority: common.PriorityMedium},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.patch.Apply(base)); diff != "" {
				t.Fatalf("Apply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
