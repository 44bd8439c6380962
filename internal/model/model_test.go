package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestTaskPatch_MarshalKeepsClearedFields(t *testing.T) {
	cases := []struct {
		name  string
		patch TaskPatch
		want  string
	}{
		{
			name:  "moved to root",
			patch: TaskPatch{ID: "C", ParentSet: true, OrderKey: intp(2)},
			want:  `{"id":"C","parentId":null,"orderKey":2}`,
		},
		{
			name:  "nested under a dateless parent",
			patch: TaskPatch{ID: "X", ParentSet: true, ParentID: StrPtr("T"), DatesSet: true},
			want:  `{"id":"X","parentId":"T","startDate":null,"endDate":null}`,
		},
		{
			name:  "clamped dates",
			patch: TaskPatch{ID: "X", DatesSet: true, StartDate: DatePtr("2024-01-05"), EndDate: DatePtr("2024-01-08")},
			want:  `{"id":"X","startDate":"2024-01-05","endDate":"2024-01-08"}`,
		},
		{
			name:  "key only",
			patch: TaskPatch{ID: "A", OrderKey: intp(1)},
			want:  `{"id":"A","orderKey":1}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.patch)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(b))

			var back TaskPatch
			require.NoError(t, json.Unmarshal(b, &back))
			assert.Equal(t, tc.patch, back)
		})
	}
}

func TestTaskPatch_UnmarshalAbsentKeysLeaveFieldsUnchanged(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"id":"A","orderKey":4}`), &p))
	assert.False(t, p.ParentSet)
	assert.False(t, p.DatesSet)
	assert.Equal(t, []string{"orderKey"}, p.Fields())
}
