package config

// File is the decoded task file. Every field is optional; a nil pointer means
// the attribute was not set.
type File struct {
	Algorithm *Algorithm `hcl:"algorithm,block"`
	NDEx      *NDEx      `hcl:"ndex,block"`
	Output    *string    `hcl:"output,optional"`
	Notify    *string    `hcl:"notify,optional"`
	Timeout   *string    `hcl:"timeout,optional"`
}

// Algorithm selects and tunes the clustering executable. The block label is
// the method name.
type Algorithm struct {
	Method string   `hcl:"method,label"`
	Path   *string  `hcl:"path,optional"`
	Alpha  *float64 `hcl:"alpha,optional"`
	Beta   *float64 `hcl:"beta,optional"`
}

// NDEx holds the publishing target.
type NDEx struct {
	Server     *string `hcl:"server,optional"`
	Identity   *string `hcl:"identity,optional"`
	Secret     *string `hcl:"secret,optional"`
	Name       *string `hcl:"name,optional"`
	Layout     *string `hcl:"layout,optional"`
	Visibility *string `hcl:"visibility,optional"`
}
