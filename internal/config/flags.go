package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Compile flag tables for generated fuzz drivers. These are the standard
// libFuzzer + ASan/UBSan invocations; a workspace may override them with a
// .fdg/flags.toml profile.

// SanitizerFlags are used when sanitizing candidate drivers
var SanitizerFlags = []string{
	"-fsanitize=fuzzer",
	"-g",
	"-O1",
	"-fsanitize=address,undefined",
	"-ftrivial-auto-var-init=zero",
	"-fsanitize-trap=undefined",
	"-fno-sanitize-recover=undefined",
}

// FuzzerFlags are used when building drivers for fuzzing runs
var FuzzerFlags = []string{
	"-fsanitize=fuzzer",
	"-O1",
	"-g",
	"-fsanitize=address,undefined",
	"-ftrivial-auto-var-init=zero",
}

// CoverageFlags are used when building drivers for coverage collection
var CoverageFlags = []string{
	"-g",
	"-fsanitize=fuzzer",
	"-fprofile-instr-generate",
	"-fcoverage-mapping",
	"-Wl,--no-as-needed",
	"-Wl,-ldl",
	"-Wl,-lm",
	"-Wno-unused-command-line-argument",
	"-ftrivial-auto-var-init=zero",
}

// ASanOptions are passed through the ASAN_OPTIONS environment variable
var ASanOptions = []string{
	"exitcode=168",
	"alloc_dealloc_mismatch=0",
}

// FlagsProfile is an optional override of the built-in flag tables,
// stored as .fdg/flags.toml in the workspace
type FlagsProfile struct {
	Sanitizer []string `toml:"sanitizer,omitempty"`
	Fuzzer    []string `toml:"fuzzer,omitempty"`
	Coverage  []string `toml:"coverage,omitempty"`
	ASan      []string `toml:"asan,omitempty"`
}

// FlagsProfileFile is the file name of the flag override profile
const FlagsProfileFile = "flags.toml"

// LoadFlagsProfile reads .fdg/flags.toml from the workspace and merges it over
// the built-in tables. A missing file returns the built-ins unchanged.
func LoadFlagsProfile(workspace string) (*FlagsProfile, error) {
	profile := &FlagsProfile{
		Sanitizer: SanitizerFlags,
		Fuzzer:    FuzzerFlags,
		Coverage:  CoverageFlags,
		ASan:      ASanOptions,
	}

	path := filepath.Join(workspace, ".fdg", FlagsProfileFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return profile, nil
	}

	var override FlagsProfile
	if _, err := toml.DecodeFile(path, &override); err != nil {
		return nil, err
	}

	if len(override.Sanitizer) > 0 {
		profile.Sanitizer = override.Sanitizer
	}
	if len(override.Fuzzer) > 0 {
		profile.Fuzzer = override.Fuzzer
	}
	if len(override.Coverage) > 0 {
		profile.Coverage = override.Coverage
	}
	if len(override.ASan) > 0 {
		profile.ASan = override.ASan
	}

	return profile, nil
}
