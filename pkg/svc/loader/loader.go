package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/envvar"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/sirupsen/logrus"
)

// StdinPath is the path that makes Load read YAML from standard input.
const StdinPath = "-"

var (
	namePath       = tree.Path{"metadata", "name"}
	namespacePath  = tree.Path{"metadata", "namespace"}
	apiVersionPath = tree.Path{"apiVersion"}
	kindPath       = tree.Path{"kind"}
)

// Document is one desired deployment. It is immutable once loaded.
type Document struct {
	// Source names the file and, for multi-document files, the document index.
	Source string
	// Identity correlates the document with live state.
	Identity v1alpha1.Identity
	// Tree is the normalized structural form used for diffing.
	Tree tree.Tree
	// Deployment is the typed view of Tree.
	Deployment *v1alpha1.Deployment
}

// Loader reads and validates deployment documents.
type Loader struct {
	expander         *envvar.Expander
	defaultNamespace string
	stdin            io.Reader
	logger           logrus.FieldLogger
}

// Option configures a Loader.
type Option func(*Loader)

// WithDefaultNamespace sets the namespace used when a document omits metadata.namespace.
func WithDefaultNamespace(namespace string) Option {
	return func(l *Loader) {
		if namespace != "" {
			l.defaultNamespace = namespace
		}
	}
}

// WithExpander replaces the environment expander.
func WithExpander(expander *envvar.Expander) Option {
	return func(l *Loader) {
		l.expander = expander
	}
}

// WithStdin sets the reader used for StdinPath.
func WithStdin(stdin io.Reader) Option {
	return func(l *Loader) {
		l.stdin = stdin
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	loader := &Loader{
		expander:         envvar.NewExpander(),
		defaultNamespace: v1alpha1.DefaultNamespace,
		stdin:            os.Stdin,
		logger:           logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(loader)
	}

	return loader
}

// Load reads every document at path. A directory contributes each supported
// file directly inside it, in name order. Two documents with the same
// identity are rejected.
func (l *Loader) Load(path string) ([]*Document, error) {
	files, err := l.resolveFiles(path)
	if err != nil {
		return nil, err
	}

	var docs []*Document

	for _, file := range files {
		loaded, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}

		docs = append(docs, loaded...)
	}

	if len(docs) == 0 {
		return nil, &ParseError{Source: path, Err: ErrNoDocuments}
	}

	err = checkDuplicates(docs)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// Decode reads every document in r. source names the input in errors.
func (l *Loader) Decode(r io.Reader, format Format, source string) ([]*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Source: source, Err: fmt.Errorf("failed to read: %w", err)}
	}

	expanded, _ := l.expander.ExpandBytes(data)

	raws, err := decodeRaw(expanded, format)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	docs := make([]*Document, 0, len(raws))

	for _, raw := range raws {
		docSource := source
		if len(raws) > 1 || raw.index > 0 {
			docSource = source + "#" + strconv.Itoa(raw.index)
		}

		doc, err := l.build(raw.value, docSource)
		if err != nil {
			return nil, err
		}

		l.logger.WithFields(logrus.Fields{
			"source":     doc.Source,
			"deployment": doc.Identity.String(),
		}).Debug("loaded document")

		docs = append(docs, doc)
	}

	return docs, nil
}

func (l *Loader) build(value any, source string) (*Document, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &ParseError{Source: source, Err: fmt.Errorf("%w: got %T", tree.ErrNotObject, value)}
	}

	doc := tree.Tree(obj)
	doc.DropNulls()

	metadata, present := doc.Get(tree.Path{"metadata"})
	if present && !tree.IsObject(metadata) {
		return nil, &ParseError{Source: source, Err: fmt.Errorf("metadata: %w", tree.ErrNotObject)}
	}

	name, _ := doc.Get(namePath)
	if nameStr, isString := name.(string); !isString || nameStr == "" {
		return nil, &MissingFieldError{Source: source, Field: namePath.String()}
	}

	l.applyDefaults(doc)

	var deployment v1alpha1.Deployment

	err := doc.Decode(&deployment)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	err = deployment.Validate()
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	return &Document{
		Source:     source,
		Identity:   deployment.Identity(),
		Tree:       doc,
		Deployment: &deployment,
	}, nil
}

// applyDefaults fills the fields the platform would otherwise fill itself,
// so the desired tree matches what is read back.
func (l *Loader) applyDefaults(doc tree.Tree) {
	if _, ok := doc.Get(apiVersionPath); !ok {
		doc.Set(apiVersionPath, v1alpha1.APIVersion)
	}

	if _, ok := doc.Get(kindPath); !ok {
		doc.Set(kindPath, v1alpha1.Kind)
	}

	if doc.GetString(namespacePath) == "" {
		doc.Set(namespacePath, l.defaultNamespace)
	}
}

func (l *Loader) loadFile(file string) ([]*Document, error) {
	if file == StdinPath {
		return l.Decode(l.stdin, FormatYAML, "<stdin>")
	}

	format, err := FormatFromPath(file)
	if err != nil {
		return nil, &ParseError{Source: file, Err: err}
	}

	handle, err := os.Open(file) //nolint:gosec // path is provided by the user on purpose
	if err != nil {
		return nil, &ParseError{Source: file, Err: fmt.Errorf("failed to open: %w", err)}
	}

	defer func() { _ = handle.Close() }()

	return l.Decode(handle, format, file)
}

func (l *Loader) resolveFiles(path string) ([]string, error) {
	if path == StdinPath {
		return []string{StdinPath}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: fmt.Errorf("failed to stat: %w", err)}
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: fmt.Errorf("failed to read directory: %w", err)}
	}

	var files []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		_, err := FormatFromPath(entry.Name())
		if err != nil {
			l.logger.WithField("file", entry.Name()).Debug("skipping file with unsupported extension")

			continue
		}

		files = append(files, filepath.Join(path, entry.Name()))
	}

	slices.Sort(files)

	return files, nil
}

func checkDuplicates(docs []*Document) error {
	seen := make(map[v1alpha1.Identity]string, len(docs))

	for _, doc := range docs {
		if first, ok := seen[doc.Identity]; ok {
			return &ParseError{
				Source: doc.Source,
				Err:    fmt.Errorf("%w: %s is already defined in %s", ErrDuplicateIdentity, doc.Identity, first),
			}
		}

		seen[doc.Identity] = doc.Source
	}

	return nil
}
