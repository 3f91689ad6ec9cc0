package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected timeutil.TimeOfDay
		wantErr  error
	}{
		{
			name:     "zero padded",
			input:    "09:30",
			expected: timeutil.TimeOfDay{Hour: 9, Minute: 30},
		},
		{
			name:     "no leading zero on hour",
			input:    "9:30",
			expected: timeutil.TimeOfDay{Hour: 9, Minute: 30},
		},
		{
			name:     "midnight",
			input:    "00:00",
			expected: timeutil.TimeOfDay{Hour: 0, Minute: 0},
		},
		{
			name:     "last minute of day",
			input:    "23:59",
			expected: timeutil.TimeOfDay{Hour: 23, Minute: 59},
		},
		{
			name:     "surrounding whitespace",
			input:    " 18:05 ",
			expected: timeutil.TimeOfDay{Hour: 18, Minute: 5},
		},
		{
			name:    "hour out of range",
			input:   "24:00",
			wantErr: ErrOutOfRange,
		},
		{
			name:    "minute out of range",
			input:   "12:60",
			wantErr: ErrOutOfRange,
		},
		{
			name:    "missing colon",
			input:   "0930",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "single digit minute",
			input:   "9:3",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "with seconds",
			input:   "09:30:00",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "negative hour",
			input:   "-1:30",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "not a number",
			input:   "ab:cd",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tod, err := ParseClockTime(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, tod)
		})
	}
}
