package v1alpha1

import "errors"

// ErrInvalidDeploymentState is returned when an invalid desired state is specified.
var ErrInvalidDeploymentState = errors.New("invalid deployment state")

// ErrInvalidUpgradeStrategy is returned when an invalid upgrade strategy is specified.
var ErrInvalidUpgradeStrategy = errors.New("invalid upgrade strategy")

// ErrInvalidRestoreStrategy is returned when an invalid restore strategy is specified.
var ErrInvalidRestoreStrategy = errors.New("invalid restore strategy")

// ErrInvalidArtifactKind is returned when an invalid artifact kind is specified.
var ErrInvalidArtifactKind = errors.New("invalid artifact kind")

// ErrUnsupportedKind is returned when a document is not a Deployment.
var ErrUnsupportedKind = errors.New("unsupported kind")

// ErrUnsupportedAPIVersion is returned when a document targets an unknown API version.
var ErrUnsupportedAPIVersion = errors.New("unsupported apiVersion")

// ErrNameTooLong is returned when a deployment or namespace name exceeds the maximum length.
var ErrNameTooLong = errors.New("name is too long")

// ErrNameInvalid is returned when a deployment or namespace name is not DNS-1123 compliant.
var ErrNameInvalid = errors.New("name is invalid")

// ErrInvalidFlinkVersion is returned when the artifact's flinkVersion is not a version.
var ErrInvalidFlinkVersion = errors.New("invalid flinkVersion")

// ErrInvalidID is returned when metadata.id is not a UUID.
var ErrInvalidID = errors.New("invalid metadata.id")

// ErrInvalidParallelism is returned when parallelism or task manager counts are negative.
var ErrInvalidParallelism = errors.New("invalid parallelism")
