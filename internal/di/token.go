package di

// Token is a typed handle for a registered service.
type Token[T any] struct {
	name string
}

// NewToken creates a token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registration name of the token.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a lazy factory for the token's service.
func RegisterToken[T any](c Container, t Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(t.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves the token's service with type safety.
func GetToken[T any](sr ServiceRegistry, t Token[T]) T {
	return sr.Get(t.name).(T)
}
