// Package version carries build metadata stamped via ldflags:
//
//	go build -ldflags "-X github.com/IL0VERAT/DelegateAIRepo-sub002/internal/version.Version=0.3.0 \
//	                   -X github.com/IL0VERAT/DelegateAIRepo-sub002/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/IL0VERAT/DelegateAIRepo-sub002/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the short git commit hash.
	Commit = "unknown"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// String formats the build metadata for startup logs.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
