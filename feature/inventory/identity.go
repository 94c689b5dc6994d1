package inventory

import (
	"errors"
	"strings"
)

// Sentinels used when only half of an identity could be found.
const (
	UnknownUser   = "unknown_user"
	UnknownDevice = "unknown_device"
)

// ErrUnrecognizedPath means the object carries no identity at all. The event is
// skipped.
var ErrUnrecognizedPath = errors.New("unrecognized object path")

const amzMetaPrefix = "x-amz-meta-"

// Identity names the owner and device an upload belongs to.
type Identity struct {
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
}

// ExtractIdentity resolves the owner and device of an object. Metadata
// (userId, deviceId) wins over the path layouts
// users/{userId}/devices/{deviceId}/... and uploads/{userId}/{deviceId}/....
// A missing half falls back to its sentinel.
func ExtractIdentity(objectPath string, metadata map[string]string) (Identity, error) {
	id := Identity{
		UserID:   metaValue(metadata, "userid"),
		DeviceID: metaValue(metadata, "deviceid"),
	}
	fromMeta := id.UserID != "" || id.DeviceID != ""

	if id.UserID == "" || id.DeviceID == "" {
		if user, device, ok := parsePath(objectPath); ok {
			if id.UserID == "" {
				id.UserID = user
			}
			if id.DeviceID == "" {
				id.DeviceID = device
			}
		} else if !fromMeta {
			return Identity{}, ErrUnrecognizedPath
		}
	}

	if id.UserID == "" {
		id.UserID = UnknownUser
	}
	if id.DeviceID == "" {
		id.DeviceID = UnknownDevice
	}
	return id, nil
}

// metaValue looks key up ignoring case, "-", "_" and the X-Amz-Meta- prefix.
// When several keys match, an unprefixed key beats a prefixed one, and ties go
// to the lexically smallest original key.
func metaValue(metadata map[string]string, key string) string {
	var (
		best     string
		bestKey  string
		bestRank = -1
	)
	for k, v := range metadata {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		norm := strings.ToLower(strings.TrimSpace(k))
		rank := 0
		if strings.HasPrefix(norm, amzMetaPrefix) {
			norm = strings.TrimPrefix(norm, amzMetaPrefix)
			rank = 1
		}
		norm = strings.NewReplacer("-", "", "_", "").Replace(norm)
		if norm != key {
			continue
		}
		if bestRank < 0 || rank < bestRank || (rank == bestRank && k < bestKey) {
			best, bestKey, bestRank = v, k, rank
		}
	}
	return best
}

func parsePath(objectPath string) (user, device string, ok bool) {
	parts := strings.Split(strings.Trim(objectPath, "/"), "/")
	switch {
	case len(parts) >= 5 && parts[0] == "users" && parts[2] == "devices":
		return parts[1], parts[3], true
	case len(parts) >= 4 && parts[0] == "uploads":
		return parts[1], parts[2], true
	default:
		return "", "", false
	}
}
