package config

// Builder constructs a Config by layering user values over the defaults.
type Builder struct {
	resolver *Resolver
	layers   []map[string]Value
}

// NewBuilder creates a builder that resolves presets from registry.
func NewBuilder(registry *Registry) *Builder {
	return &Builder{resolver: NewResolver(registry)}
}

// Add adds a layer of user values. Later layers take precedence per key.
func (b *Builder) Add(layer map[string]Value) *Builder {
	if len(layer) > 0 {
		b.layers = append(b.layers, layer)
	}
	return b
}

// Merged returns the combined user values of every layer.
func (b *Builder) Merged() map[string]Value {
	merged := make(map[string]Value)
	for _, layer := range b.layers {
		for k, v := range layer {
			if v != nil {
				merged[k] = v
			}
		}
	}
	return merged
}

// Resolve merges the layers and resolves them.
func (b *Builder) Resolve() (Resolved, error) {
	return b.resolver.Resolve(b.Merged())
}

// Build resolves the layers and converts the result into a Config.
func (b *Builder) Build() (*Config, error) {
	resolved, err := b.Resolve()
	if err != nil {
		return nil, err
	}
	return Build(resolved)
}
