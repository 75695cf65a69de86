package config

// File is the on-disk shape of ratchet.toml and ratchet.yaml.
// Pointer fields distinguish "unset" from an explicit zero value.
type File struct {
	// Root is the scan root, relative to the config file directory.
	Root *string `yaml:"root" toml:"root"`
	// Self is excluded from every scan, relative to the scan root.
	Self *string `yaml:"self" toml:"self"`
	// DefaultRules enables the built-in rule catalogue. Defaults to true.
	DefaultRules *bool `yaml:"default_rules" toml:"default_rules"`
	// DefaultTools enables the built-in tool checks. Defaults to false.
	DefaultTools *bool `yaml:"default_tools" toml:"default_tools"`
	// Disable lists rule or tool IDs to skip.
	Disable []string `yaml:"disable" toml:"disable"`

	SkipDirs      *[]string `yaml:"skip_dirs" toml:"skip_dirs"`
	ExtraSkipDirs []string  `yaml:"extra_skip_dirs" toml:"extra_skip_dirs"`
	Exclude       []string  `yaml:"exclude" toml:"exclude"`
	MaxFileSize   *int64    `yaml:"max_file_size" toml:"max_file_size"`
	ContextLines  *int      `yaml:"context_lines" toml:"context_lines"`
	Workers       *int      `yaml:"workers" toml:"workers"`
	Timeout       *string   `yaml:"timeout" toml:"timeout"`
	CountsFile    *string   `yaml:"counts_file" toml:"counts_file"`

	// Baselines override rule baselines by ID; they can only lower them.
	Baselines map[string]int `yaml:"baselines" toml:"baselines"`

	Rules []RuleSpec `yaml:"rules" toml:"rules"`
	Tools []ToolSpec `yaml:"tools" toml:"tools"`
}

// RuleSpec declares a rule. Kind is inferred from which matcher field is set when
// left empty.
type RuleSpec struct {
	ID          string `yaml:"id" toml:"id"`
	Name        string `yaml:"name" toml:"name"`
	Description string `yaml:"description" toml:"description"`
	Kind        string `yaml:"kind" toml:"kind"`
	Baseline    int    `yaml:"baseline" toml:"baseline"`

	// Pattern, Extension, Multiline and IgnoreCase configure regex rules.
	Pattern    string `yaml:"pattern" toml:"pattern"`
	Extension  string `yaml:"extension" toml:"extension"`
	Multiline  bool   `yaml:"multiline" toml:"multiline"`
	IgnoreCase bool   `yaml:"ignore_case" toml:"ignore_case"`

	// Language and Query configure tree-sitter query rules.
	Language string `yaml:"language" toml:"language"`
	Query    string `yaml:"query" toml:"query"`

	// Evaluator names a structural evaluator.
	Evaluator string `yaml:"evaluator" toml:"evaluator"`

	// Include restricts regex and query rules to matching paths.
	Include []string `yaml:"include" toml:"include"`
}

// ToolSpec declares an external tool check.
type ToolSpec struct {
	ID          string   `yaml:"id" toml:"id"`
	Name        string   `yaml:"name" toml:"name"`
	Description string   `yaml:"description" toml:"description"`
	Command     string   `yaml:"command" toml:"command"`
	Args        []string `yaml:"args" toml:"args"`
	Dir         string   `yaml:"dir" toml:"dir"`
	Timeout     string   `yaml:"timeout" toml:"timeout"`
}

// Rule kinds.
const (
	KindRegex      = "regex"
	KindQuery      = "query"
	KindStructural = "structural"
)
