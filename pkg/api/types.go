package api

const (
	StepKindSearch     = "search"
	StepKindDownload   = "download"
	StepKindFind       = "find"
	StepKindVerify     = "verify"
	StepKindExtract    = "extract"
	StepKindCopy       = "copy"
	StepKindCheckpoint = "checkpoint"
	StepKindShell      = "shell"
	StepKindJSONKey    = "json-key"
	StepKindVendor     = "vendor"
)

// Recipe is the *.recipe.yaml configuration format: seed variables plus an
// ordered list of processing steps. Immutable once loaded.
type Recipe struct {
	Description string            `yaml:"description,omitempty"`
	Input       map[string]string `yaml:"input,omitempty"`
	Process     []StepConfig      `yaml:"process"`

	// Set by the loader, not from YAML.
	Dir      string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// StepConfig defines a single step within a recipe. Exactly one of the
// kind-specific configs is set, matching Kind.
type StepConfig struct {
	Name       string            `yaml:"name"`
	Kind       string            `yaml:"kind"`
	Search     *SearchConfig     `yaml:"search,omitempty"`
	Download   *DownloadConfig   `yaml:"download,omitempty"`
	Find       *FindConfig       `yaml:"find,omitempty"`
	Verify     *VerifyConfig     `yaml:"verify,omitempty"`
	Extract    *ExtractConfig    `yaml:"extract,omitempty"`
	Copy       *CopyConfig       `yaml:"copy,omitempty"`
	Checkpoint *CheckpointConfig `yaml:"checkpoint,omitempty"`
	Shell      *ShellConfig      `yaml:"shell,omitempty"`
	JSONKey    *JSONKeyConfig    `yaml:"json-key,omitempty"`
	Vendor     *VendorConfig     `yaml:"vendor,omitempty"`
}

// SearchConfig fetches a page and extracts the first regex match into the
// "match" variable.
type SearchConfig struct {
	URL     string `yaml:"url"`
	Pattern string `yaml:"pattern"`
}

// DownloadConfig retrieves a URL into the cache. Filename defaults to the
// URL's base name, resolved relative to the cache directory.
type DownloadConfig struct {
	URL      string `yaml:"url"`
	Filename string `yaml:"filename,omitempty"`
}

// FindConfig resolves a glob (relative to the cache directory) to exactly
// one file, exposed as "found_filename".
type FindConfig struct {
	Pattern string `yaml:"pattern"`
}

// VerifyConfig checks a file's code signature against a requirement
// expression.
type VerifyConfig struct {
	Path        string `yaml:"path"`
	Requirement string `yaml:"requirement,omitempty"`
}

// ExtractConfig reads one key from a metadata file into the variable named
// by Output ("version" when empty).
type ExtractConfig struct {
	Path   string `yaml:"path"`
	Key    string `yaml:"key"`
	Output string `yaml:"output,omitempty"`
}

// CopyConfig stages a file at a destination path.
type CopyConfig struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

// CheckpointConfig may carry an expression evaluated against the context;
// when it holds, the run halts successfully without executing later steps.
// With no expression the checkpoint halts when the last download reported
// an unchanged artifact.
type CheckpointConfig struct {
	When string `yaml:"when,omitempty"`
}

// ShellConfig runs an external command. With no Args the command string is
// split on whitespace.
type ShellConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	// TimeoutSeconds defaults to 30.
	TimeoutSeconds int `yaml:"timeout,omitempty"`
}

// JSONKeyConfig fetches a JSON document and extracts one key into the
// variable named by Output.
type JSONKeyConfig struct {
	URL    string `yaml:"url"`
	Key    string `yaml:"key"`
	Output string `yaml:"output"`
}

// VendorConfig mirrors one repository folder at a pinned commit into a
// local directory, stamping every file with provenance comments. With no
// Destination the files land in a scratch directory that is removed when
// the run ends.
type VendorConfig struct {
	Repo        string `yaml:"repo"`
	Folder      string `yaml:"folder"`
	Commit      string `yaml:"commit"`
	Destination string `yaml:"destination,omitempty"`
	// Convert rewrites plist-encoded files as YAML. Defaults to true.
	Convert *bool `yaml:"convert,omitempty"`
}
