package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func restore(t *testing.T) {
	v, r, b := Version, Revision, BuildDate
	t.Cleanup(func() { Version, Revision, BuildDate = v, r, b })
}

func TestVersionStrings(t *testing.T) {
	assert.Equal(t, "agentsync", AppName)
	assert.Contains(t, Short(), Version)
	assert.Contains(t, Short(), Revision)
	assert.Contains(t, Detailed(), "/")
}

func TestApplyBuildInfo(t *testing.T) {
	tests := []struct {
		name                      string
		version, revision, built  string
		mainVersion               string
		settings                  map[string]string
		wantVersion, wantRevision string
		wantBuilt                 string
	}{
		{
			name:        "dev build takes vcs data",
			version:     devVersion,
			revision:    devRevision,
			mainVersion: "v1.4.0",
			settings: map[string]string{
				"vcs.revision": "abcdef1234567890",
				"vcs.modified": "true",
				"vcs.time":     "2025-06-01T10:00:00Z",
			},
			wantVersion:  "1.4.0",
			wantRevision: "abcdef123456-dirty",
			wantBuilt:    "2025-06-01T10:00:00Z",
		},
		{
			name:         "devel main version is ignored",
			version:      devVersion,
			revision:     devRevision,
			mainVersion:  "(devel)",
			settings:     map[string]string{},
			wantVersion:  devVersion,
			wantRevision: devRevision,
		},
		{
			name:         "ldflags win",
			version:      "2.0.0",
			revision:     "deadbeef",
			built:        "from-ldflags",
			mainVersion:  "v9.9.9",
			settings:     map[string]string{"vcs.revision": "abc", "vcs.time": "x"},
			wantVersion:  "2.0.0",
			wantRevision: "deadbeef",
			wantBuilt:    "from-ldflags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore(t)
			Version, Revision, BuildDate = tt.version, tt.revision, tt.built

			applyBuildInfo(tt.mainVersion, tt.settings)
			assert.Equal(t, tt.wantVersion, Version)
			assert.Equal(t, tt.wantRevision, Revision)
			assert.Equal(t, tt.wantBuilt, BuildDate)
		})
	}
}

func TestDetailed_UnknownBuildDate(t *testing.T) {
	restore(t)
	BuildDate = ""
	assert.Contains(t, Detailed(), "unknown")
}
