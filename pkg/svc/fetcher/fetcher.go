// Package fetcher reads the live state of a deployment from the platform.
package fetcher

import (
	"context"
	"errors"
	"fmt"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/sirupsen/logrus"
)

// LiveState is the current state of one deployment. A deployment that does
// not exist has Exists false and an empty Tree.
type LiveState struct {
	Identity        v1alpha1.Identity
	Tree            tree.Tree
	ResourceVersion int64
	StatusState     string
	Exists          bool
}

// Fetcher reads live state through a vvp.Client.
type Fetcher struct {
	client vvp.Client
	logger logrus.FieldLogger
}

// New creates a Fetcher.
func New(client vvp.Client, logger logrus.FieldLogger) *Fetcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Fetcher{client: client, logger: logger}
}

// Fetch returns the live state for id. A missing deployment is not an error.
func (f *Fetcher) Fetch(ctx context.Context, id v1alpha1.Identity) (*LiveState, error) {
	resource, err := f.client.Get(ctx, id)
	if errors.Is(err, vvp.ErrNotFound) {
		f.logger.WithField("deployment", id.String()).Debug("deployment not found, treating live state as empty")

		return &LiveState{Identity: id, Tree: tree.Tree{}}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to fetch deployment %s: %w", id, err)
	}

	return &LiveState{
		Identity:        id,
		Tree:            resource.Tree,
		ResourceVersion: resource.ResourceVersion,
		StatusState:     resource.StatusState,
		Exists:          true,
	}, nil
}
