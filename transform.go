package ezfs

// Transform is a reversible byte-to-byte mapping applied to file contents
// before they reach raw storage and undone after they are fetched.
//
// Common transforms are compression, encoding, and encryption. Apply runs on
// the write path, Remove on the read path, and `Remove(Apply(x)) == x` must
// hold for all valid inputs. Implementations must be stateless or manage
// their own per-caller state; a single Transform is shared across every File
// opened with it.
type Transform interface {
	// Apply runs the transformation against raw data before writing.
	Apply(data []byte) ([]byte, error)

	// Remove reverses the transformation on previously transformed data.
	Remove(data []byte) ([]byte, error)

	// Name identifies the transform in errors.
	Name() string
}

// funcTransform adapts a pure function pair into a Transform.
type funcTransform struct {
	name   string
	apply  func(data []byte) ([]byte, error)
	remove func(data []byte) ([]byte, error)
}

// NewTransform builds a Transform from an apply/remove function pair.
//
// The pair must be inverse operations: remove(apply(x)) == x.
func NewTransform(name string, apply, remove func(data []byte) ([]byte, error)) Transform {
	return &funcTransform{name: name, apply: apply, remove: remove}
}

func (t *funcTransform) Apply(data []byte) ([]byte, error)  { return t.apply(data) }
func (t *funcTransform) Remove(data []byte) ([]byte, error) { return t.remove(data) }
func (t *funcTransform) Name() string                       { return t.name }

// chainTransform composes stages. Immutable once built.
type chainTransform struct {
	stages []Transform
}

// Chain combines transforms so they modify data together on read and write.
//
// Stages apply in ascending order on write and unwind in descending order on
// read: Chain(A, B).Apply(x) == B.Apply(A.Apply(x)), and Remove peels B off
// before A. Chaining never mutates its inputs; nested chains are flattened.
// Chain() with no arguments returns nil, meaning no transformation.
func Chain(transforms ...Transform) Transform {
	var stages []Transform
	for _, t := range transforms {
		if t == nil {
			continue
		}
		if c, ok := t.(*chainTransform); ok {
			stages = append(stages, c.stages...)
			continue
		}
		stages = append(stages, t)
	}
	switch len(stages) {
	case 0:
		return nil
	case 1:
		return stages[0]
	default:
		return &chainTransform{stages: stages}
	}
}

func (c *chainTransform) Apply(data []byte) ([]byte, error) {
	var err error
	for _, stage := range c.stages {
		data, err = stage.Apply(data)
		if err != nil {
			return nil, transformFailure(stage, "apply", err)
		}
	}
	return data, nil
}

func (c *chainTransform) Remove(data []byte) ([]byte, error) {
	var err error
	for i := len(c.stages) - 1; i >= 0; i-- {
		stage := c.stages[i]
		data, err = stage.Remove(data)
		if err != nil {
			return nil, transformFailure(stage, "remove", err)
		}
	}
	return data, nil
}

func (c *chainTransform) Name() string {
	name := "chain("
	for i, stage := range c.stages {
		if i > 0 {
			name += ","
		}
		name += stage.Name()
	}
	return name + ")"
}

// applyTransform runs t.Apply over data, treating nil as the identity and
// tagging failures with the stage name.
func applyTransform(t Transform, data []byte) ([]byte, error) {
	if t == nil {
		return data, nil
	}
	out, err := t.Apply(data)
	if err != nil {
		return nil, transformFailure(t, "apply", err)
	}
	return out, nil
}

// removeTransform runs t.Remove over data, treating nil as the identity and
// tagging failures with the stage name.
func removeTransform(t Transform, data []byte) ([]byte, error) {
	if t == nil {
		return data, nil
	}
	out, err := t.Remove(data)
	if err != nil {
		return nil, transformFailure(t, "remove", err)
	}
	return out, nil
}

func transformFailure(stage Transform, op string, err error) error {
	if te, ok := err.(*TransformError); ok {
		return te
	}
	return &TransformError{Stage: stage.Name(), Op: op, cause: err}
}
