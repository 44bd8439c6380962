package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewriteDirectTaskLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"tasktree"},
			want: []string{"tasktree"},
		},
		{
			name: "task id first token",
			in:   []string{"tasktree", "task-abcd2345"},
			want: []string{"tasktree", "tasks", "show", "task-abcd2345"},
		},
		{
			name: "task id after value flag",
			in:   []string{"tasktree", "--dir", "./ws", "task-abcd2345"},
			want: []string{"tasktree", "--dir", "./ws", "tasks", "show", "task-abcd2345"},
		},
		{
			name: "task id after equals flag",
			in:   []string{"tasktree", "--project=proj-x", "task-abcd2345"},
			want: []string{"tasktree", "--project=proj-x", "tasks", "show", "task-abcd2345"},
		},
		{
			name: "task id after bool flag",
			in:   []string{"tasktree", "--pretty", "task-abcd2345"},
			want: []string{"tasktree", "--pretty", "tasks", "show", "task-abcd2345"},
		},
		{
			name: "task id after double dash",
			in:   []string{"tasktree", "--format", "edn", "--", "task-abcd2345"},
			want: []string{"tasktree", "--format", "edn", "--", "tasks", "show", "task-abcd2345"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"tasktree", "tasks", "show", "task-abcd2345"},
			want: []string{"tasktree", "tasks", "show", "task-abcd2345"},
		},
		{
			name: "value that looks like an id is not a positional",
			in:   []string{"tasktree", "--project", "task-abcd2345", "tasks", "list"},
			want: []string{"tasktree", "--project", "task-abcd2345", "tasks", "list"},
		},
		{
			name: "uppercase is not a generated id",
			in:   []string{"tasktree", "task-ABCD"},
			want: []string{"tasktree", "task-ABCD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectTaskLookupArgs(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("argv mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
