package v1alpha1

import (
	"fmt"
	"slices"
	"strings"
)

// --- Enum Interface ---

// EnumValuer is implemented by string-based enum types to provide their valid values.
// The schema generator uses this interface to discover enum constraints.
type EnumValuer interface {
	// ValidValues returns all valid string values for this enum type.
	ValidValues() []string
}

// --- Deployment State ---

// DeploymentState is the desired lifecycle state of a deployment.
type DeploymentState string

const (
	// DeploymentStateRunning starts or keeps the Flink job running.
	DeploymentStateRunning DeploymentState = "RUNNING"
	// DeploymentStateCancelled stops the job without a savepoint.
	DeploymentStateCancelled DeploymentState = "CANCELLED"
	// DeploymentStateSuspended stops the job with a savepoint.
	DeploymentStateSuspended DeploymentState = "SUSPENDED"
)

// ValidDeploymentStates returns supported desired states.
func ValidDeploymentStates() []DeploymentState {
	return []DeploymentState{
		DeploymentStateRunning,
		DeploymentStateCancelled,
		DeploymentStateSuspended,
	}
}

// Set for DeploymentState (pflag.Value interface).
func (s *DeploymentState) Set(value string) error {
	for _, state := range ValidDeploymentStates() {
		if strings.EqualFold(value, string(state)) {
			*s = state

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %s (valid options: %s)",
		ErrInvalidDeploymentState, value, strings.Join(s.ValidValues(), ", "),
	)
}

// IsValid checks if the state value is supported.
func (s *DeploymentState) IsValid() bool {
	return slices.Contains(ValidDeploymentStates(), *s)
}

// String returns the string representation of the DeploymentState.
func (s *DeploymentState) String() string {
	return string(*s)
}

// Type returns the type of the DeploymentState.
func (s *DeploymentState) Type() string {
	return "DeploymentState"
}

// Default returns the default value for DeploymentState (RUNNING).
func (s *DeploymentState) Default() any {
	return DeploymentStateRunning
}

// ValidValues returns all valid DeploymentState values as strings.
func (s *DeploymentState) ValidValues() []string {
	return enumStrings(ValidDeploymentStates())
}

// --- Status State ---

// StatusState is the observed state reported by the platform.
type StatusState string

const (
	// StatusStateRunning means the job is running.
	StatusStateRunning StatusState = "RUNNING"
	// StatusStateCancelled means the job is stopped and the deployment can be deleted.
	StatusStateCancelled StatusState = "CANCELLED"
	// StatusStateSuspended means the job is stopped with a savepoint.
	StatusStateSuspended StatusState = "SUSPENDED"
	// StatusStateTransitioning means the platform is moving towards the desired state.
	StatusStateTransitioning StatusState = "TRANSITIONING"
	// StatusStateFailed means the job failed.
	StatusStateFailed StatusState = "FAILED"
	// StatusStateFinished means a bounded job completed.
	StatusStateFinished StatusState = "FINISHED"
)

// --- Upgrade Strategy ---

// UpgradeStrategyKind defines how spec changes are rolled out.
type UpgradeStrategyKind string

const (
	// UpgradeStrategyStateful takes a savepoint before upgrading.
	UpgradeStrategyStateful UpgradeStrategyKind = "STATEFUL"
	// UpgradeStrategyStateless restarts without a savepoint.
	UpgradeStrategyStateless UpgradeStrategyKind = "STATELESS"
	// UpgradeStrategyNone leaves the running job untouched.
	UpgradeStrategyNone UpgradeStrategyKind = "NONE"
)

// ValidUpgradeStrategies returns supported upgrade strategy kinds.
func ValidUpgradeStrategies() []UpgradeStrategyKind {
	return []UpgradeStrategyKind{
		UpgradeStrategyStateful,
		UpgradeStrategyStateless,
		UpgradeStrategyNone,
	}
}

// Set for UpgradeStrategyKind (pflag.Value interface).
func (k *UpgradeStrategyKind) Set(value string) error {
	for _, kind := range ValidUpgradeStrategies() {
		if strings.EqualFold(value, string(kind)) {
			*k = kind

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %s (valid options: %s)",
		ErrInvalidUpgradeStrategy, value, strings.Join(k.ValidValues(), ", "),
	)
}

// IsValid checks if the upgrade strategy is supported.
func (k *UpgradeStrategyKind) IsValid() bool {
	return slices.Contains(ValidUpgradeStrategies(), *k)
}

// String returns the string representation of the UpgradeStrategyKind.
func (k *UpgradeStrategyKind) String() string {
	return string(*k)
}

// Type returns the type of the UpgradeStrategyKind.
func (k *UpgradeStrategyKind) Type() string {
	return "UpgradeStrategyKind"
}

// Default returns the default value for UpgradeStrategyKind (STATEFUL).
func (k *UpgradeStrategyKind) Default() any {
	return UpgradeStrategyStateful
}

// ValidValues returns all valid UpgradeStrategyKind values as strings.
func (k *UpgradeStrategyKind) ValidValues() []string {
	return enumStrings(ValidUpgradeStrategies())
}

// --- Restore Strategy ---

// RestoreStrategyKind defines which snapshot a job is started from.
type RestoreStrategyKind string

const (
	// RestoreStrategyLatestState restores from the latest savepoint or checkpoint.
	RestoreStrategyLatestState RestoreStrategyKind = "LATEST_STATE"
	// RestoreStrategyLatestSavepoint restores from the latest savepoint.
	RestoreStrategyLatestSavepoint RestoreStrategyKind = "LATEST_SAVEPOINT"
	// RestoreStrategyNone starts without state.
	RestoreStrategyNone RestoreStrategyKind = "NONE"
)

// ValidRestoreStrategies returns supported restore strategy kinds.
func ValidRestoreStrategies() []RestoreStrategyKind {
	return []RestoreStrategyKind{
		RestoreStrategyLatestState,
		RestoreStrategyLatestSavepoint,
		RestoreStrategyNone,
	}
}

// Set for RestoreStrategyKind (pflag.Value interface).
func (k *RestoreStrategyKind) Set(value string) error {
	for _, kind := range ValidRestoreStrategies() {
		if strings.EqualFold(value, string(kind)) {
			*k = kind

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %s (valid options: %s)",
		ErrInvalidRestoreStrategy, value, strings.Join(k.ValidValues(), ", "),
	)
}

// IsValid checks if the restore strategy is supported.
func (k *RestoreStrategyKind) IsValid() bool {
	return slices.Contains(ValidRestoreStrategies(), *k)
}

// String returns the string representation of the RestoreStrategyKind.
func (k *RestoreStrategyKind) String() string {
	return string(*k)
}

// Type returns the type of the RestoreStrategyKind.
func (k *RestoreStrategyKind) Type() string {
	return "RestoreStrategyKind"
}

// Default returns the default value for RestoreStrategyKind (LATEST_STATE).
func (k *RestoreStrategyKind) Default() any {
	return RestoreStrategyLatestState
}

// ValidValues returns all valid RestoreStrategyKind values as strings.
func (k *RestoreStrategyKind) ValidValues() []string {
	return enumStrings(ValidRestoreStrategies())
}

// --- Artifact Kind ---

// ArtifactKind names the type of job artifact.
type ArtifactKind string

const (
	// ArtifactKindJar is a Java/Scala jar.
	ArtifactKindJar ArtifactKind = "JAR"
	// ArtifactKindPython is a PyFlink program.
	ArtifactKindPython ArtifactKind = "PYTHON"
	// ArtifactKindSQLScript is a Flink SQL script.
	ArtifactKindSQLScript ArtifactKind = "SQLSCRIPT"
)

// ValidArtifactKinds returns supported artifact kinds.
func ValidArtifactKinds() []ArtifactKind {
	return []ArtifactKind{ArtifactKindJar, ArtifactKindPython, ArtifactKindSQLScript}
}

// Set for ArtifactKind (pflag.Value interface).
func (k *ArtifactKind) Set(value string) error {
	for _, kind := range ValidArtifactKinds() {
		if strings.EqualFold(value, string(kind)) {
			*k = kind

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %s (valid options: %s)",
		ErrInvalidArtifactKind, value, strings.Join(k.ValidValues(), ", "),
	)
}

// IsValid checks if the artifact kind is supported.
func (k *ArtifactKind) IsValid() bool {
	return slices.Contains(ValidArtifactKinds(), *k)
}

// String returns the string representation of the ArtifactKind.
func (k *ArtifactKind) String() string {
	return string(*k)
}

// Type returns the type of the ArtifactKind.
func (k *ArtifactKind) Type() string {
	return "ArtifactKind"
}

// Default returns the default value for ArtifactKind (JAR).
func (k *ArtifactKind) Default() any {
	return ArtifactKindJar
}

// ValidValues returns all valid ArtifactKind values as strings.
func (k *ArtifactKind) ValidValues() []string {
	return enumStrings(ValidArtifactKinds())
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = string(value)
	}

	return out
}
