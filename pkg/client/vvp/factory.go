package vvp

// Factory creates API clients.
type Factory interface {
	Create(opts Options) (Client, error)
}

// DefaultFactory creates HTTP clients.
type DefaultFactory struct{}

// Create implements Factory.
func (DefaultFactory) Create(opts Options) (Client, error) {
	client, err := NewHTTPClient(opts)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// StaticFactory always returns Client, ignoring the options.
type StaticFactory struct {
	Client Client
}

// Create implements Factory.
func (f StaticFactory) Create(Options) (Client, error) {
	return f.Client, nil
}
