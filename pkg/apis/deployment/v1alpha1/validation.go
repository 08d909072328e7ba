package v1alpha1

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

// nameRegex matches DNS-1123 labels: lowercase alphanumerics and hyphens,
// starting and ending with an alphanumeric.
var nameRegex = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// NameMaxLength is the maximum length of deployment and namespace names.
const NameMaxLength = 63

// ValidateName validates that a deployment or namespace name is DNS-1123 compliant.
func ValidateName(name string) error {
	if len(name) > NameMaxLength {
		return fmt.Errorf(
			"%w: %q exceeds max %d characters (got %d)",
			ErrNameTooLong, name, NameMaxLength, len(name),
		)
	}

	if !nameRegex.MatchString(name) {
		return fmt.Errorf(
			"%w: %q must be DNS-1123 compliant "+
				"(lowercase letters, numbers, and hyphens; must not start or end with a hyphen)",
			ErrNameInvalid, name,
		)
	}

	return nil
}

// Validate checks the identity fields.
func (i Identity) Validate() error {
	err := ValidateName(i.Name)
	if err != nil {
		return fmt.Errorf("metadata.name: %w", err)
	}

	err = ValidateName(i.Namespace)
	if err != nil {
		return fmt.Errorf("metadata.namespace: %w", err)
	}

	return nil
}

// Validate checks a deployment for values the platform would reject.
// An empty name is not reported here; callers check required fields first.
func (d *Deployment) Validate() error {
	var errs []error

	if d.APIVersion != "" && d.APIVersion != APIVersion {
		errs = append(errs, fmt.Errorf("%w: %q (expected %q)", ErrUnsupportedAPIVersion, d.APIVersion, APIVersion))
	}

	if d.Kind != "" && d.Kind != Kind {
		errs = append(errs, fmt.Errorf("%w: %q (expected %q)", ErrUnsupportedKind, d.Kind, Kind))
	}

	if d.Metadata.Name != "" {
		errs = append(errs, d.Identity().Validate())
	}

	if d.Metadata.ID != "" {
		_, err := uuid.Parse(d.Metadata.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidID, err))
		}
	}

	errs = append(errs, d.Spec.validate()...)

	return errors.Join(errs...)
}

func (s *DeploymentSpec) validate() []error {
	var errs []error

	if s.State != "" && !s.State.IsValid() {
		errs = append(errs, fmt.Errorf("spec.state: %w: %s", ErrInvalidDeploymentState, s.State))
	}

	if s.UpgradeStrategy != nil && !s.UpgradeStrategy.Kind.IsValid() {
		errs = append(errs, fmt.Errorf(
			"spec.upgradeStrategy.kind: %w: %s", ErrInvalidUpgradeStrategy, s.UpgradeStrategy.Kind,
		))
	}

	if s.RestoreStrategy != nil && !s.RestoreStrategy.Kind.IsValid() {
		errs = append(errs, fmt.Errorf(
			"spec.restoreStrategy.kind: %w: %s", ErrInvalidRestoreStrategy, s.RestoreStrategy.Kind,
		))
	}

	template := s.Template.Spec

	if template.Parallelism < 0 || template.NumberOfTaskManagers < 0 {
		errs = append(errs, fmt.Errorf(
			"spec.template.spec: %w: parallelism=%d numberOfTaskManagers=%d",
			ErrInvalidParallelism, template.Parallelism, template.NumberOfTaskManagers,
		))
	}

	artifact := template.Artifact

	if artifact.Kind != "" && !artifact.Kind.IsValid() {
		errs = append(errs, fmt.Errorf(
			"spec.template.spec.artifact.kind: %w: %s", ErrInvalidArtifactKind, artifact.Kind,
		))
	}

	if artifact.FlinkVersion != "" {
		_, err := semver.NewVersion(artifact.FlinkVersion)
		if err != nil {
			errs = append(errs, fmt.Errorf(
				"spec.template.spec.artifact.flinkVersion: %w: %q: %w",
				ErrInvalidFlinkVersion, artifact.FlinkVersion, err,
			))
		}
	}

	return errs
}
