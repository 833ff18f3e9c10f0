package build

// DeploymentType is an enum specifying the deployment to compile.
type DeploymentType byte

const (
	// Development is a deployment that writes unit test logs straight to
	// stdout at the compiled-in log level.
	Development DeploymentType = iota

	// Production is a deployment that routes every sub-logger through the
	// backend configured at startup.
	Production
)

// String returns a human readable name for a build type.
func (b DeploymentType) String() string {
	switch b {
	case Development:
		return "development"
	case Production:
		return "production"
	default:
		return "unknown"
	}
}
