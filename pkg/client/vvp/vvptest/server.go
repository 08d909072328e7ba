// Package vvptest provides an in-memory Ververica Platform API for tests.
//
// The server stores deployments in memory, applies JSON merge patches,
// maintains resource versions, fills server-managed fields and can be told
// to fail requests.
package vvptest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/client/netretry"
	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const apiPrefix = "/api/v1/namespaces/"

var (
	resourceVersionPath = tree.Path{"metadata", "resourceVersion"}
	specStatePath       = tree.Path{"spec", "state"}
	statusStatePath     = tree.Path{"status", "state"}
)

type failure struct {
	method string
	status int
	times  int
}

// Server is a fake platform API. It is safe for concurrent use.
type Server struct {
	*httptest.Server

	mu              sync.Mutex
	deployments     map[v1alpha1.Identity]tree.Tree
	defaults        tree.Tree
	failures        []failure
	mutationBudget  int
	budgetStatus    int
	transitionPolls int
	pendingPolls    map[v1alpha1.Identity]int
	requests        []string
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	server := &Server{
		deployments:    map[v1alpha1.Identity]tree.Tree{},
		mutationBudget: -1,
		pendingPolls:   map[v1alpha1.Identity]int{},
	}
	server.Server = httptest.NewServer(http.HandlerFunc(server.handle))
	t.Cleanup(server.Close)

	return server
}

// NewClient returns a client for the server with a fast retry policy.
func (s *Server) NewClient(t testing.TB) *vvp.HTTPClient {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := vvp.NewHTTPClient(vvp.Options{
		Server: s.URL,
		Token:  "test-token",
		Retry: netretry.Policy{
			MaxAttempts: 3,
			BaseWait:    time.Millisecond,
			MaxWait:     5 * time.Millisecond,
		},
		UserAgent: "vvpctl/test",
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return client
}

// SetDefaults sets fields the server fills on create when the body omits them.
func (s *Server) SetDefaults(defaults tree.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.defaults = defaults.Clone()
}

// Seed stores a deployment as if it had been created earlier.
func (s *Server) Seed(doc tree.Tree) v1alpha1.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := doc.Clone()
	id := identityOf(stored, v1alpha1.DefaultNamespace)
	s.initialize(stored, id)
	s.deployments[id] = stored

	return id
}

// Deployment returns a copy of the stored deployment.
func (s *Server) Deployment(id v1alpha1.Identity) (tree.Tree, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.deployments[id]

	return doc.Clone(), ok
}

// Touch bumps the resource version of a stored deployment, as a concurrent writer would.
func (s *Server) Touch(id v1alpha1.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.deployments[id]; ok {
		bumpVersion(doc)
	}
}

// FailNext makes the next times requests with method answer status.
func (s *Server) FailNext(method string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, failure{method: method, status: status, times: times})
}

// FailMutationsAfter lets n mutating requests succeed and answers every
// following one with status.
func (s *Server) FailMutationsAfter(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mutationBudget = n
	s.budgetStatus = status
}

// SetTransitionPolls makes a cancelled deployment report TRANSITIONING for n
// reads before it reports CANCELLED.
func (s *Server) SetTransitionPolls(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transitionPolls = n
}

// Requests returns "METHOD path" for every request received.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.requests)
}

// MutatingRequests returns the received requests other than GET.
func (s *Server) MutatingRequests() []string {
	var mutating []string

	for _, request := range s.Requests() {
		if !strings.HasPrefix(request, http.MethodGet+" ") {
			mutating = append(mutating, request)
		}
	}

	return mutating
}

func (s *Server) handle(writer http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req.Method+" "+req.URL.Path)

	if status, failed := s.injectedFailure(req.Method); failed {
		writeError(writer, status, "injected failure")

		return
	}

	namespace, name, ok := parsePath(req.URL.Path)
	if !ok {
		writeError(writer, http.StatusNotFound, "unknown path")

		return
	}

	id := v1alpha1.Identity{Namespace: namespace, Name: name}

	switch {
	case name == "" && req.Method == http.MethodGet:
		s.list(writer, namespace)
	case name == "" && req.Method == http.MethodPost:
		s.create(writer, req, namespace)
	case name != "" && req.Method == http.MethodGet:
		s.get(writer, id)
	case name != "" && req.Method == http.MethodPatch:
		s.patch(writer, req, id)
	case name != "" && req.Method == http.MethodDelete:
		s.delete(writer, id)
	default:
		writeError(writer, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) injectedFailure(method string) (int, bool) {
	for i := range s.failures {
		if s.failures[i].method == method && s.failures[i].times > 0 {
			s.failures[i].times--

			return s.failures[i].status, true
		}
	}

	if method == http.MethodGet || s.mutationBudget < 0 {
		return 0, false
	}

	if s.mutationBudget == 0 {
		return s.budgetStatus, true
	}

	s.mutationBudget--

	return 0, false
}

func (s *Server) list(writer http.ResponseWriter, namespace string) {
	items := []any{}

	for id, doc := range s.deployments {
		if id.Namespace == namespace {
			items = append(items, map[string]any(doc))
		}
	}

	writeJSON(writer, http.StatusOK, map[string]any{"kind": "DeploymentList", "items": items})
}

func (s *Server) get(writer http.ResponseWriter, id v1alpha1.Identity) {
	doc, ok := s.deployments[id]
	if !ok {
		writeError(writer, http.StatusNotFound, fmt.Sprintf("deployment %s not found", id))

		return
	}

	if remaining, pending := s.pendingPolls[id]; pending {
		if remaining > 0 {
			s.pendingPolls[id] = remaining - 1
		} else {
			doc.Set(statusStatePath, string(v1alpha1.StatusStateCancelled))
			delete(s.pendingPolls, id)
		}
	}

	writeJSON(writer, http.StatusOK, map[string]any(doc))
}

func (s *Server) create(writer http.ResponseWriter, req *http.Request, namespace string) {
	doc, err := readTree(req)
	if err != nil {
		writeError(writer, http.StatusBadRequest, err.Error())

		return
	}

	id := identityOf(doc, namespace)
	if id.Namespace != namespace {
		writeError(writer, http.StatusBadRequest, "metadata.namespace does not match the request path")

		return
	}

	if _, exists := s.deployments[id]; exists {
		writeError(writer, http.StatusConflict, fmt.Sprintf("deployment %s already exists", id))

		return
	}

	stored, err := tree.MergePatch(s.defaults, doc)
	if err != nil {
		writeError(writer, http.StatusBadRequest, err.Error())

		return
	}

	s.initialize(stored, id)
	s.deployments[id] = stored

	writeJSON(writer, http.StatusCreated, map[string]any(stored))
}

func (s *Server) patch(writer http.ResponseWriter, req *http.Request, id v1alpha1.Identity) {
	doc, ok := s.deployments[id]
	if !ok {
		writeError(writer, http.StatusNotFound, fmt.Sprintf("deployment %s not found", id))

		return
	}

	patch, err := readTree(req)
	if err != nil {
		writeError(writer, http.StatusBadRequest, err.Error())

		return
	}

	if expected, set := patch.Get(resourceVersionPath); set {
		current, _ := doc.Get(resourceVersionPath)
		if !tree.Equal(expected, current) {
			writeError(writer, http.StatusConflict, fmt.Sprintf(
				"resourceVersion mismatch: expected %v, current %v", expected, current,
			))

			return
		}

		patch.Delete(resourceVersionPath)
	}

	updated, err := tree.MergePatch(doc, patch)
	if err != nil {
		writeError(writer, http.StatusBadRequest, err.Error())

		return
	}

	updated.Set(tree.Path{"metadata", "namespace"}, id.Namespace)
	updated.Set(tree.Path{"metadata", "name"}, id.Name)
	updated.Set(resourceVersionPath, mustGet(doc, resourceVersionPath))
	bumpVersion(updated)
	s.syncStatus(updated, id)
	s.deployments[id] = updated

	writeJSON(writer, http.StatusOK, map[string]any(updated))
}

func (s *Server) delete(writer http.ResponseWriter, id v1alpha1.Identity) {
	doc, ok := s.deployments[id]
	if !ok {
		writeError(writer, http.StatusNotFound, fmt.Sprintf("deployment %s not found", id))

		return
	}

	if doc.GetString(statusStatePath) != string(v1alpha1.StatusStateCancelled) {
		writeError(writer, http.StatusBadRequest, "deployment must be CANCELLED before deletion")

		return
	}

	delete(s.deployments, id)
	writer.WriteHeader(http.StatusNoContent)
}

func (s *Server) initialize(doc tree.Tree, id v1alpha1.Identity) {
	doc.Set(tree.Path{"metadata", "namespace"}, id.Namespace)

	if doc.GetString(tree.Path{"metadata", "id"}) == "" {
		doc.Set(tree.Path{"metadata", "id"}, uuid.NewString())
	}

	doc.Set(tree.Path{"metadata", "createdAt"}, time.Now().UTC().Format(time.RFC3339))
	doc.Set(resourceVersionPath, float64(1))
	s.syncStatus(doc, id)
}

// syncStatus moves the observed state to the desired state, going through
// TRANSITIONING on cancellation when configured.
func (s *Server) syncStatus(doc tree.Tree, id v1alpha1.Identity) {
	desired := doc.GetString(specStatePath)
	if desired == "" {
		desired = string(v1alpha1.DeploymentStateRunning)
	}

	if desired == string(v1alpha1.DeploymentStateCancelled) &&
		doc.GetString(statusStatePath) != desired &&
		s.transitionPolls > 0 {
		doc.Set(statusStatePath, string(v1alpha1.StatusStateTransitioning))
		s.pendingPolls[id] = s.transitionPolls - 1

		return
	}

	doc.Set(statusStatePath, desired)
}

func bumpVersion(doc tree.Tree) {
	current, _ := doc.Get(resourceVersionPath)
	version, _ := current.(float64)
	doc.Set(resourceVersionPath, version+1)
	doc.Set(tree.Path{"metadata", "modifiedAt"}, time.Now().UTC().Format(time.RFC3339))
}

func mustGet(doc tree.Tree, path tree.Path) any {
	value, _ := doc.Get(path)

	return value
}

func identityOf(doc tree.Tree, fallbackNamespace string) v1alpha1.Identity {
	namespace := doc.GetString(tree.Path{"metadata", "namespace"})
	if namespace == "" {
		namespace = fallbackNamespace
	}

	return v1alpha1.Identity{Namespace: namespace, Name: doc.GetString(tree.Path{"metadata", "name"})}
}

// parsePath splits /api/v1/namespaces/{ns}/deployments[/{name}].
func parsePath(path string) (string, string, bool) {
	rest, ok := strings.CutPrefix(path, apiPrefix)
	if !ok {
		return "", "", false
	}

	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")

	switch {
	case len(parts) == 2 && parts[1] == "deployments":
		return parts[0], "", true
	case len(parts) == 3 && parts[1] == "deployments" && parts[2] != "":
		return parts[0], parts[2], true
	default:
		return "", "", false
	}
}

func readTree(req *http.Request) (tree.Tree, error) {
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return tree.FromJSON(data)
}

func writeJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(body)
}

func writeError(writer http.ResponseWriter, status int, message string) {
	writeJSON(writer, status, map[string]any{"message": message, "status": status})
}
