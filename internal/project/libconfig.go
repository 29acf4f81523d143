package project

import (
	"os"

	"gopkg.in/yaml.v3"

	"fdg/internal/errors"
)

// LibConfigFile is the per-library configuration file name inside the data dir
const LibConfigFile = "config.yaml"

// LibConfig is the custom configuration of one target library
type LibConfig struct {
	// ProjectName is the name used by the build script
	ProjectName string `yaml:"project_name"`
	// StaticLibName is the file name of the static library
	StaticLibName string `yaml:"static_lib_name"`
	// DynLibName is the file name of the dynamic library
	DynLibName string `yaml:"dyn_lib_name"`
	// Ban lists API names generated drivers must not call
	Ban []string `yaml:"ban,omitempty"`
	// NullTerm indicates the fuzzer input must be null terminated
	NullTerm bool `yaml:"null_term,omitempty"`
	// ExtraCFlags are extra flags passed to the compiler
	ExtraCFlags []string `yaml:"extra_c_flags,omitempty"`
	// Landmark enables embedding a corpus example into prompts
	Landmark bool `yaml:"landmark,omitempty"`
	// ForceTypes lists type names that are always added to the prompt
	ForceTypes []string `yaml:"force_types,omitempty"`
	// FuzzFork runs the library's fuzzers in fork mode
	FuzzFork bool `yaml:"fuzz_fork,omitempty"`
	// Desc is a short description of the library for the prompt
	Desc string `yaml:"desc,omitempty"`
	// Spec holds statements that must open every generated driver
	Spec string `yaml:"spec,omitempty"`
	// InitFile is an additional initialization file used during setup
	InitFile string `yaml:"init_file,omitempty"`
	// ASanOption appends extra ASAN_OPTIONS entries for this library
	ASanOption string `yaml:"asan_option,omitempty"`
	// DisableFmemopen rewrites fmemopen usage hints to plain file reads
	DisableFmemopen bool `yaml:"disable_fmemopen,omitempty"`
	// RSSLimitMB is the memory limit passed to libFuzzer
	RSSLimitMB int `yaml:"rss_limit_mb,omitempty"`
}

// IsBanned reports whether the API name is on the library's ban list
func (c *LibConfig) IsBanned(api string) bool {
	for _, b := range c.Ban {
		if b == api {
			return true
		}
	}
	return false
}

// LoadLibConfig reads a library configuration from a YAML file.
// A missing file yields an empty configuration, since most libraries
// need no customization.
func LoadLibConfig(path string) (*LibConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LibConfig{}, nil
		}
		return nil, errors.New(errors.ConfigInvalid, "failed to read "+path, err)
	}

	var cfg LibConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "failed to parse "+path, err)
	}
	return &cfg, nil
}
