package vvp

import (
	"context"
	"fmt"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/tidwall/gjson"
)

// Client is the subset of the platform API vvpctl uses.
type Client interface {
	// Get returns the deployment or an error matching ErrNotFound.
	Get(ctx context.Context, id v1alpha1.Identity) (*Resource, error)
	// List returns all deployments in a namespace ordered by name.
	List(ctx context.Context, namespace string) ([]*Resource, error)
	// Create posts a complete deployment document.
	Create(ctx context.Context, namespace string, body tree.Tree) (*Resource, error)
	// Patch applies a JSON merge patch.
	Patch(ctx context.Context, id v1alpha1.Identity, patch tree.Tree) (*Resource, error)
	// Delete removes a deployment. The deployment must be cancelled first.
	Delete(ctx context.Context, id v1alpha1.Identity) error
}

// Resource is a deployment as returned by the platform.
type Resource struct {
	Tree            tree.Tree
	Name            string
	Namespace       string
	ResourceVersion int64
	DesiredState    string
	StatusState     string
}

// NewResource builds a Resource from a response body.
func NewResource(body []byte) (*Resource, error) {
	doc, err := tree.FromJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode deployment: %w", err)
	}

	fields := gjson.GetManyBytes(
		body,
		"metadata.name",
		"metadata.namespace",
		"metadata.resourceVersion",
		"spec.state",
		"status.state",
	)

	return &Resource{
		Tree:            doc,
		Name:            fields[0].String(),
		Namespace:       fields[1].String(),
		ResourceVersion: fields[2].Int(),
		DesiredState:    fields[3].String(),
		StatusState:     fields[4].String(),
	}, nil
}

// Identity returns the identity the platform reports for the resource.
func (r *Resource) Identity() v1alpha1.Identity {
	return v1alpha1.Identity{Namespace: r.Namespace, Name: r.Name}
}

// Deployment decodes the typed view of the resource.
func (r *Resource) Deployment() (*v1alpha1.Deployment, error) {
	var deployment v1alpha1.Deployment

	err := r.Tree.Decode(&deployment)
	if err != nil {
		return nil, err
	}

	return &deployment, nil
}
