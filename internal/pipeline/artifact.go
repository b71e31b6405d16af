package pipeline

// Artifact is one output file produced by a pipeline run.
type Artifact struct {
	// Name is the derived artifact filename.
	Name string
	// Path is the artifact's location in the output directory.
	Path string
	// Size is the artifact size in bytes.
	Size uint64
}
