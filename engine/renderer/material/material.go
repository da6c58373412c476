package material

// material is the implementation of the Material interface.
type material struct {
	name        string
	pipelineKey string
}

// Material is an opaque render material handle. The fractal core never inspects it
// beyond handing it to the render backend with each instanced draw.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string
}

var _ Material = &material{}

// NewMaterial creates a new Material with the given options.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the newly created material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}
