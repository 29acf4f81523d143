package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fdg/internal/gadget"
	"fdg/internal/project"
)

// prepare lays out a workspace for one library with the given config.yaml
// content and opens it.
func prepare(t *testing.T, libConfig string) *project.Project {
	t.Helper()
	ws := t.TempDir()
	const lib = "cjson"
	dataDir := filepath.Join(ws, "data", lib)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		t.Fatal(err)
	}
	if libConfig != "" {
		if err := os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte(libConfig), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(ws, "output", lib, "build", "include"), 0755); err != nil {
		t.Fatal(err)
	}
	proj, err := project.Open(ws, lib)
	if err != nil {
		t.Fatal(err)
	}
	return proj
}

func testGadgets() []gadget.Gadget {
	return []gadget.Gadget{
		{Name: "cJSON_Parse", Kind: gadget.KindFunction, Signature: "cJSON *cJSON_Parse(const char *value)"},
		{Name: "cJSON", Kind: gadget.KindType, Signature: "typedef struct cJSON cJSON"},
	}
}

func TestBuildFillsSlots(t *testing.T) {
	proj := prepare(t, "")
	p := NewBuilder(proj).Build("stddef.h\nstdint.h", testGadgets())

	if strings.Contains(p.System, "{project}") || strings.Contains(p.System, "{headers}") ||
		strings.Contains(p.System, "{APIs}") || strings.Contains(p.System, "{context}") {
		t.Errorf("unfilled slot in system prompt:\n%s", p.System)
	}
	if !strings.Contains(p.System, "stddef.h\nstdint.h") {
		t.Error("system headers missing from system prompt")
	}
	if !strings.Contains(p.System, "cJSON *cJSON_Parse(const char *value)") {
		t.Error("API listing missing from system prompt")
	}
	if !strings.Contains(p.System, "typedef struct cJSON cJSON") {
		t.Error("type listing missing from system prompt")
	}
	if !strings.Contains(p.System, "LLVMFuzzerTestOneInput") {
		t.Error("driver prototype missing from system prompt")
	}
	if !strings.Contains(p.User, "cjson library APIs") {
		t.Errorf("user prompt not specialized to the library:\n%s", p.User)
	}
}

func TestBuildAppliesSpec(t *testing.T) {
	proj := prepare(t, "spec: |\n  #include <cjson/cJSON.h>\n")
	p := NewBuilder(proj).Build("", nil)

	if !strings.Contains(p.User, "The beginning of the fuzz driver is") {
		t.Error("spec preamble missing")
	}
	if !strings.Contains(p.User, "#include <cjson/cJSON.h>") {
		t.Error("spec content missing")
	}
}

func TestBuildDisableFmemopen(t *testing.T) {
	proj := prepare(t, "disable_fmemopen: true\n")
	p := NewBuilder(proj).Build("", nil)

	if strings.Contains(p.User, "fmemopen") {
		t.Error("fmemopen hint kept despite disable_fmemopen")
	}
	if !strings.Contains(p.User, `fopen("input_file", "rb")`) {
		t.Error("file based replacement missing")
	}
}

func TestBuildLandmarkCorpus(t *testing.T) {
	proj := prepare(t, "landmark: true\n")
	corpusDir := filepath.Join(proj.DataDir(), "corpus")
	if err := os.MkdirAll(corpusDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(corpusDir, "seed"), []byte(`{"k":1}`), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewBuilder(proj).Build("", nil)
	if !strings.HasPrefix(p.User, `The input data is: {"k":1}`) {
		t.Errorf("landmark corpus not prepended:\n%s", p.User[:min(len(p.User), 120)])
	}
}

func TestBuildForceTypes(t *testing.T) {
	proj := prepare(t, "force_types:\n  - cJSON_Hooks\n")
	p := NewBuilder(proj).Build("", testGadgets())

	if !strings.Contains(p.System, "cJSON_Hooks") {
		t.Error("forced type missing from system prompt")
	}
}
