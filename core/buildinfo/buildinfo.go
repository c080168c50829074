package buildinfo

// Set via -ldflags at build time, for example:
//
//	-X 'github.com/m3rciful/tradebot/core/buildinfo.Version=v0.3.0'
//	-X 'github.com/m3rciful/tradebot/core/buildinfo.Commit=1f2e3d4'
//	-X 'github.com/m3rciful/tradebot/core/buildinfo.Date=2026-10-19T09:00:00Z'
var (
	// Version is the release tag of the binary.
	Version = "dev"
	// Commit is the source revision the binary was built from.
	Commit = "local"
	// Date is the RFC3339 build timestamp.
	Date = ""
)
