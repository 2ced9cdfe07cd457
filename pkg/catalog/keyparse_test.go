package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantID   *int64
		wantName string
	}{
		{
			name:     "id prefix with suffix",
			key:      "00083_kf_rgb.mp4",
			wantID:   int64Ptr(83),
			wantName: "00083_kf_rgb",
		},
		{
			name:     "nested key keeps basename only",
			key:      "folder/00157_abc.mp4",
			wantID:   int64Ptr(157),
			wantName: "00157_abc",
		},
		{
			name:     "no digit prefix",
			key:      "apple.mp4",
			wantID:   nil,
			wantName: "apple",
		},
		{
			name:     "mixed case is lowered",
			key:      "Apple_Pie.MP4",
			wantID:   nil,
			wantName: "apple_pie",
		},
		{
			name:     "digit run capped at six digits",
			key:      "12345678_clip.mp4",
			wantID:   int64Ptr(123456),
			wantName: "12345678_clip",
		},
		{
			name:     "bare digits",
			key:      "42.mp4",
			wantID:   int64Ptr(42),
			wantName: "42",
		},
		{
			name:     "digits not at start are ignored",
			key:      "clip_007.mp4",
			wantID:   nil,
			wantName: "clip_007",
		},
		{
			name:     "no extension",
			key:      "0012_raw",
			wantID:   int64Ptr(12),
			wantName: "0012_raw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, name := ParseKey(tt.key)
			if tt.wantID == nil {
				assert.Nil(t, id)
			} else {
				require.NotNil(t, id)
				assert.Equal(t, *tt.wantID, *id)
			}
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestParseKeyDeterministic(t *testing.T) {
	id1, name1 := ParseKey("00042_b.mp4")
	id2, name2 := ParseKey("00042_b.mp4")
	require.NotNil(t, id1)
	require.NotNil(t, id2)
	assert.Equal(t, *id1, *id2)
	assert.Equal(t, name1, name2)
}

func int64Ptr(v int64) *int64 { return &v }
