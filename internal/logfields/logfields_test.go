package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Path", KeyPath, "docs/intro.html", Path("docs/intro.html")},
		{"File", KeyFile, "intro.md", File("intro.md")},
		{"Intent", KeyIntent, "docs", Intent("docs")},
		{"Entity", KeyEntity, "intro", Entity("intro")},
		{"Language", KeyLanguage, "fr", Language("fr")},
		{"Version", KeyVersion, "1.0.0", Version("1.0.0")},
		{"SnapshotID", KeySnapshotID, "abc", SnapshotID("abc")},
		{"Trigger", KeyTrigger, "watch", Trigger("watch")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"RequestID", KeyRequestID, "rid", RequestID("rid")},
		{"UserAgent", KeyUserAgent, "ua", UserAgent("ua")},
		{"RemoteAddr", KeyRemoteAddr, "1.2.3.4", RemoteAddr("1.2.3.4")},
	}

	for _, tc := range cases {
		// Key drift would break log ingestion schemas.
		assert.Equal(t, tc.attrKey, tc.attr.Key, tc.name)
		assert.Equal(t, tc.attrVal, tc.attr.Value.String(), tc.name)
	}
}

func TestNumericHelpers(t *testing.T) {
	assert.Equal(t, uint64(7), Generation(7).Value.Uint64())
	assert.Equal(t, int64(3), Count(3).Value.Int64())
	assert.Equal(t, int64(404), Status(404).Value.Int64())
	assert.InDelta(t, 1.5, Duration(1500*time.Microsecond).Value.Float64(), 0.0001)
}

func TestError(t *testing.T) {
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Empty(t, Error(nil).Value.String())
}
