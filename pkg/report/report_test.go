package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	rep := New("audit")
	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, "audit", rep.Operation)
	assert.False(t, rep.GeneratedAt.IsZero())
	assert.Empty(t, rep.Issues)

	other := New("audit")
	assert.NotEqual(t, rep.ID, other.ID)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name       string
		severities []Severity
		want       Status
	}{
		{
			name: "no issues",
			want: StatusHealthy,
		},
		{
			name:       "only advisory issues",
			severities: []Severity{SeverityLow, SeverityInfo},
			want:       StatusHealthy,
		},
		{
			name:       "medium issue",
			severities: []Severity{SeverityLow, SeverityMedium},
			want:       StatusNeedsRepair,
		},
		{
			name:       "high issue",
			severities: []Severity{SeverityHigh},
			want:       StatusNeedsRepair,
		},
		{
			name:       "critical dominates",
			severities: []Severity{SeverityHigh, SeverityCritical, SeverityLow},
			want:       StatusCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := New("audit")
			for _, sev := range tt.severities {
				rep.Add(Issue{Severity: sev, Code: "x", Message: "m"})
			}
			assert.Equal(t, tt.want, rep.Status())
		})
	}
}

func TestCountAndAutoFixable(t *testing.T) {
	rep := New("audit")
	rep.Add(Issue{Severity: SeverityHigh, Code: "invalid-enum", Message: "bad value"})
	rep.Add(Issue{Severity: SeverityLow, Code: "duplicate-entry", Message: "dup", AutoFixable: true})
	rep.Add(Issue{Severity: SeverityLow, Code: "duplicate-entry", Message: "dup", AutoFixable: true})

	assert.Equal(t, 1, rep.Count(SeverityHigh))
	assert.Equal(t, 2, rep.Count(SeverityLow))
	assert.Equal(t, 0, rep.Count(SeverityCritical))
	assert.Len(t, rep.AutoFixable(), 2)
}

func TestJSON(t *testing.T) {
	rep := New("audit")
	rep.Add(Issue{
		Severity:   SeverityHigh,
		Code:       "invalid-enum",
		Path:       "stack.framework",
		Message:    `invalid enum value "nextjs"`,
		Suggestion: `did you mean "next"?`,
	})

	out, err := rep.JSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "audit", decoded["operation"])

	issues := decoded["issues"].([]interface{})
	require.Len(t, issues, 1)
	issue := issues[0].(map[string]interface{})
	assert.Equal(t, "HIGH", issue["severity"])
	assert.Equal(t, "stack.framework", issue["path"])
	assert.NotContains(t, issue, "auto_fixable", "false is omitted")
}
