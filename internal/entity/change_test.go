package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeReportJSON(t *testing.T) {
	report := &ChangeReport{
		SummaryChanges: "SSO added",
		ChangesDetails: []ChangeDetail{
			{Type: ChangeTypeAdded, Description: "Login by SSO"},
		},
		Recommendations: "Update the login tests",
		OldDescription:  "Login by email",
		NewDescription:  "Login by email or SSO",
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "raw_text")

	var decoded ChangeReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.IsRaw())
	assert.Equal(t, *report, decoded)
}

func TestChangeReportJSON_Raw(t *testing.T) {
	data, err := json.Marshal(NewRawChangeReport("not json", "a", "b"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw_text":"not json","old_description":"a","new_description":"b"}`, string(data))

	var decoded ChangeReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.IsRaw())
	assert.Equal(t, "not json", decoded.RawText)
	assert.Empty(t, decoded.ChangesDetails)
}
