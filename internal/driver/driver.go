// Package driver persists generated fuzz drivers and assembles the compile
// commands that build them against the target library.
package driver

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"

	"fdg/internal/config"
	"fdg/internal/project"
)

// Program is one generated fuzz driver candidate.
type Program struct {
	ID        uuid.UUID
	Source    string
	Model     string
	CreatedAt time.Time
}

// NewProgram wraps generated source into a Program with a fresh identity.
func NewProgram(source, model string) *Program {
	return &Program{
		ID:        uuid.New(),
		Source:    source,
		Model:     model,
		CreatedAt: time.Now().UTC(),
	}
}

// FileName returns the driver's source file name.
func (p *Program) FileName() string {
	return "driver_" + p.ID.String() + ".cc"
}

// Manifest describes one saved driver, stored next to its source.
type Manifest struct {
	ID         string    `toml:"id"`
	Library    string    `toml:"library"`
	Model      string    `toml:"model"`
	Source     string    `toml:"source"`
	LibHeaders []string  `toml:"lib_headers"`
	SysHeaders []string  `toml:"sys_headers"`
	CreatedAt  time.Time `toml:"created_at"`
}

// manifestName returns the manifest file name for a driver ID.
func manifestName(id uuid.UUID) string {
	return "driver_" + id.String() + ".toml"
}

// Save writes the driver source and its manifest into the library's driver
// directory, creating it if needed.
func Save(proj *project.Project, prog *Program, libHeaders, sysHeaders []string) (string, error) {
	dir := proj.DriverDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	sourcePath := filepath.Join(dir, prog.FileName())
	if err := os.WriteFile(sourcePath, []byte(prog.Source), 0644); err != nil {
		return "", err
	}

	manifest := Manifest{
		ID:         prog.ID.String(),
		Library:    proj.Name,
		Model:      prog.Model,
		Source:     prog.FileName(),
		LibHeaders: libHeaders,
		SysHeaders: sysHeaders,
		CreatedAt:  prog.CreatedAt,
	}
	data, err := toml.Marshal(manifest)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName(prog.ID)), data, 0644); err != nil {
		return "", err
	}

	return sourcePath, nil
}

// LoadManifest reads a saved driver manifest.
func LoadManifest(proj *project.Project, id uuid.UUID) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(proj.DriverDir(), manifestName(id)))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Mode selects the flag table a driver is compiled with.
type Mode string

const (
	// ModeSanitize builds with full ASan/UBSan trapping, for candidate vetting
	ModeSanitize Mode = "sanitize"
	// ModeFuzz builds for long fuzzing runs
	ModeFuzz Mode = "fuzz"
	// ModeCoverage builds with coverage instrumentation
	ModeCoverage Mode = "coverage"
)

// CompileCommand assembles the full compiler argument vector that builds a
// saved driver against the library's static archive. The first element is the
// compiler binary.
func CompileCommand(proj *project.Project, flags *config.FlagsProfile, compiler, sourcePath string, mode Mode) []string {
	args := []string{compiler}

	switch mode {
	case ModeFuzz:
		args = append(args, flags.Fuzzer...)
	case ModeCoverage:
		args = append(args, flags.Coverage...)
	default:
		args = append(args, flags.Sanitizer...)
	}

	cfg := proj.LibConfig()
	args = append(args, cfg.ExtraCFlags...)
	args = append(args, "-I"+proj.HeaderDir(), "-L"+proj.LibDir())
	args = append(args, sourcePath)

	if cfg.StaticLibName != "" {
		args = append(args, filepath.Join(proj.LibDir(), cfg.StaticLibName))
	}

	out := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".out"
	args = append(args, "-o", out)
	return args
}

// ASanEnv renders the ASAN_OPTIONS value for running a built driver,
// appending any per-library extras.
func ASanEnv(proj *project.Project, flags *config.FlagsProfile) string {
	options := flags.ASan
	if extra := proj.LibConfig().ASanOption; extra != "" {
		options = append(append([]string{}, options...), extra)
	}
	return strings.Join(options, ":")
}
