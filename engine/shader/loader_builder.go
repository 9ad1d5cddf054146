package shader

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(l *loader)

// WithReadFunc replaces the function used to read stage and include files.
//
// Parameters:
//   - read: the read function, ignored when nil
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithReadFunc(read func(path string) ([]byte, error)) LoaderBuilderOption {
	return func(l *loader) {
		if read != nil {
			l.read = read
		}
	}
}

// WithBaseDir sets the directory that includes in inline sources resolve against.
//
// Parameters:
//   - dir: the base directory
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithBaseDir(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.baseDir = dir
	}
}

// WithLabel sets the label used for module descriptors and error messages.
//
// Parameters:
//   - label: the program label
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithLabel(label string) LoaderBuilderOption {
	return func(l *loader) {
		if label != "" {
			l.label = label
		}
	}
}
