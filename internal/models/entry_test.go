package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearsUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Years
		wantErr bool
	}{
		{"число", `{"years": 5}`, 5, false},
		{"строка", `{"years": "7"}`, 7, false},
		{"строка с пробелами", `{"years": " 2 "}`, 2, false},
		{"пустая строка", `{"years": ""}`, 0, false},
		{"null", `{"years": null}`, 0, false},
		{"нет поля", `{}`, 0, false},
		{"мусор", `{"years": "много"}`, 0, true},
		{"целое в виде float", `{"years": 4.0}`, 4, false},
		{"дробное", `{"years": 3.7}`, 0, true},
		{"дробная строка", `{"years": "3.5"}`, 0, true},
		{"огромное", `{"years": 1e20}`, 0, true},
		{"огромная строка", `{"years": "99999999999"}`, 0, true},
		{"отрицательное", `{"years": -1}`, 0, true},
		{"граница", `{"years": 100}`, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Entry
			err := json.Unmarshal([]byte(tt.input), &e)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Years)
		})
	}
}

func TestStatusSets(t *testing.T) {
	assert.True(t, IsAdminStatus(StatusCompleted))
	assert.False(t, IsActive(StatusCompleted))
	assert.False(t, IsAdminStatus(StatusConsulting))
	assert.True(t, IsActive(StatusConsulting))
	assert.False(t, IsAdminStatus(""))
}
