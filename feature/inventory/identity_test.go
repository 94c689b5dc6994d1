package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIdentity(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		metadata map[string]string
		want     Identity
	}{
		{
			name: "UsersDevicesLayout",
			path: "users/u1/devices/fridge-1/2024/clip.mp4",
			want: Identity{UserID: "u1", DeviceID: "fridge-1"},
		},
		{
			name: "UploadsLayout",
			path: "uploads/u2/pantry/clip.mp4",
			want: Identity{UserID: "u2", DeviceID: "pantry"},
		},
		{
			name:     "MetadataWinsOverPath",
			path:     "users/u1/devices/fridge-1/clip.mp4",
			metadata: map[string]string{"userId": "meta-user", "deviceId": "meta-device"},
			want:     Identity{UserID: "meta-user", DeviceID: "meta-device"},
		},
		{
			name:     "AmzPrefixedMetadata",
			path:     "anything/clip.mp4",
			metadata: map[string]string{"X-Amz-Meta-Userid": "u3", "X-Amz-Meta-Deviceid": "d3"},
			want:     Identity{UserID: "u3", DeviceID: "d3"},
		},
		{
			name:     "HalfMetadataCompletedFromPath",
			path:     "uploads/u4/d4/clip.mp4",
			metadata: map[string]string{"deviceid": "override"},
			want:     Identity{UserID: "u4", DeviceID: "override"},
		},
		{
			name:     "HalfMetadataUnknownPath",
			path:     "random/clip.mp4",
			metadata: map[string]string{"userId": "u5"},
			want:     Identity{UserID: "u5", DeviceID: UnknownDevice},
		},
		{
			name:     "BlankMetadataIgnored",
			path:     "uploads/u6/d6/clip.mp4",
			metadata: map[string]string{"userId": "  "},
			want:     Identity{UserID: "u6", DeviceID: "d6"},
		},
		{
			name:     "UnprefixedMetadataBeatsAmzPrefixed",
			path:     "anything/clip.mp4",
			metadata: map[string]string{"X-Amz-Meta-Userid": "prefixed", "userId": "plain", "X-Amz-Meta-Deviceid": "d8"},
			want:     Identity{UserID: "plain", DeviceID: "d8"},
		},
		{
			name:     "SpellingTiesGoToSmallestKey",
			path:     "anything/clip.mp4",
			metadata: map[string]string{"user_id": "snake", "userId": "camel", "deviceId": "d9"},
			want:     Identity{UserID: "camel", DeviceID: "d9"},
		},
		{
			name: "LeadingSlash",
			path: "/users/u7/devices/d7/clip.mp4",
			want: Identity{UserID: "u7", DeviceID: "d7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractIdentity(tt.path, tt.metadata)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractIdentity_Unrecognized(t *testing.T) {
	for _, path := range []string{"clip.mp4", "users/u1/clip.mp4", "uploads/u1/clip.mp4", ""} {
		_, err := ExtractIdentity(path, nil)
		assert.ErrorIs(t, err, ErrUnrecognizedPath, path)
	}
}
