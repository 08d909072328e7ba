package v1alpha1

const (
	// APIVersion is the Ververica Platform API version served under /api/v1.
	APIVersion = "v1"
	// Kind is the resource kind reconciled by vvpctl.
	Kind = "Deployment"
	// DefaultNamespace is used when a document does not name its namespace.
	DefaultNamespace = "default"
)

// --- Core Types ---

// Deployment is a Ververica Platform Deployment resource.
type Deployment struct {
	APIVersion string         `json:"apiVersion,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	Metadata   Metadata       `json:"metadata"`
	Spec       DeploymentSpec `json:"spec,omitzero"`
	Status     *Status        `json:"status,omitempty" jsonschema:"-"`
}

// Metadata identifies a deployment. Only name is required.
type Metadata struct {
	Name            string            `json:"name"                      jsonschema:"required"`
	Namespace       string            `json:"namespace,omitempty"`
	ID              string            `json:"id,omitempty"              jsonschema:"format=uuid"`
	DisplayName     string            `json:"displayName,omitempty"`
	Labels          map[string]string `json:"labels,omitempty"`
	Annotations     map[string]string `json:"annotations,omitempty"`
	ResourceVersion int64             `json:"resourceVersion,omitempty" jsonschema:"-"`
	CreatedAt       string            `json:"createdAt,omitempty"       jsonschema:"-"`
	ModifiedAt      string            `json:"modifiedAt,omitempty"      jsonschema:"-"`
}

// DeploymentSpec is the desired state of a deployment.
type DeploymentSpec struct {
	State                        DeploymentState    `json:"state,omitempty"`
	UpgradeStrategy              *UpgradeStrategy   `json:"upgradeStrategy,omitempty"`
	RestoreStrategy              *RestoreStrategy   `json:"restoreStrategy,omitempty"`
	DeploymentTargetName         string             `json:"deploymentTargetName,omitempty"`
	SessionClusterName           string             `json:"sessionClusterName,omitempty"`
	MaxJobCreationAttempts       int                `json:"maxJobCreationAttempts,omitempty"`
	MaxSavepointCreationAttempts int                `json:"maxSavepointCreationAttempts,omitempty"`
	Template                     DeploymentTemplate `json:"template,omitzero"`
}

// UpgradeStrategy controls how a running job picks up spec changes.
type UpgradeStrategy struct {
	Kind UpgradeStrategyKind `json:"kind"`
}

// RestoreStrategy controls which state a job starts from.
type RestoreStrategy struct {
	Kind                  RestoreStrategyKind `json:"kind"`
	AllowNonRestoredState bool                `json:"allowNonRestoredState,omitempty"`
}

// DeploymentTemplate describes the Flink job started for the deployment.
type DeploymentTemplate struct {
	Metadata TemplateMetadata `json:"metadata,omitzero"`
	Spec     TemplateSpec     `json:"spec,omitzero"`
}

// TemplateMetadata carries annotations passed to the Flink job.
type TemplateMetadata struct {
	Annotations map[string]string `json:"annotations,omitempty"`
}

// TemplateSpec is the Flink job specification.
type TemplateSpec struct {
	Artifact             Artifact                `json:"artifact,omitzero"`
	Parallelism          int                     `json:"parallelism,omitempty"`
	NumberOfTaskManagers int                     `json:"numberOfTaskManagers,omitempty"`
	Resources            map[string]ResourceSpec `json:"resources,omitempty"`
	FlinkConfiguration   map[string]string       `json:"flinkConfiguration,omitempty"`
	Logging              *Logging                `json:"logging,omitempty"`
	Kubernetes           map[string]any          `json:"kubernetes,omitempty"`
}

// Artifact points at the job code.
type Artifact struct {
	Kind                   ArtifactKind `json:"kind,omitempty"`
	JarURI                 string       `json:"jarUri,omitempty"`
	PythonArtifactURI      string       `json:"pythonArtifactUri,omitempty"`
	SQLScript              string       `json:"sqlScript,omitempty"`
	EntryClass             string       `json:"entryClass,omitempty"`
	MainArgs               string       `json:"mainArgs,omitempty"`
	AdditionalDependencies []string     `json:"additionalDependencies,omitempty"`
	FlinkVersion           string       `json:"flinkVersion,omitempty"`
	FlinkImageRegistry     string       `json:"flinkImageRegistry,omitempty"`
	FlinkImageRepository   string       `json:"flinkImageRepository,omitempty"`
	FlinkImageTag          string       `json:"flinkImageTag,omitempty"`
}

// ResourceSpec sizes a Flink process (jobmanager or taskmanager).
type ResourceSpec struct {
	CPU    float64 `json:"cpu,omitempty"`
	Memory string  `json:"memory,omitempty"`
}

// Logging configures Flink job logging.
type Logging struct {
	LoggingProfile string            `json:"loggingProfile,omitempty"`
	Log4jLoggers   map[string]string `json:"log4jLoggers,omitempty"`
}

// Status is reported by the platform and never sent by vvpctl.
type Status struct {
	State   StatusState `json:"state,omitempty"`
	Running *struct {
		JobID string `json:"jobId,omitempty"`
	} `json:"running,omitempty"`
}

// Identity correlates desired and live state of one deployment.
type Identity struct {
	Namespace string
	Name      string
}

// String renders the identity as namespace/name.
func (i Identity) String() string {
	return i.Namespace + "/" + i.Name
}

// Identity returns the deployment identity, defaulting the namespace.
func (d *Deployment) Identity() Identity {
	namespace := d.Metadata.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return Identity{Namespace: namespace, Name: d.Metadata.Name}
}
