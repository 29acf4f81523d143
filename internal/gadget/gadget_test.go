package gadget

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fdg/internal/project"
)

const cjsonHeader = `#ifndef CJSON_H
#define CJSON_H

#define CJSON_VERSION_MAJOR 1
#define cJSON_IsInvalid(item) (((item)->type) == 0)

typedef struct cJSON {
    struct cJSON *next;
    int type;
} cJSON;

cJSON *cJSON_Parse(const char *value);
void cJSON_Delete(cJSON *item);
char *cJSON_Print(const cJSON *item);

extern int cjson_counter;

#endif
`

func byName(gadgets []Gadget) map[string]Gadget {
	m := make(map[string]Gadget, len(gadgets))
	for _, g := range gadgets {
		m[g.Name] = g
	}
	return m
}

func TestExtractSourceFunctions(t *testing.T) {
	e := NewExtractor()
	gadgets, err := e.ExtractSource(context.Background(), "cjson.h", []byte(cjsonHeader))
	if err != nil {
		t.Fatal(err)
	}
	m := byName(gadgets)

	parse, ok := m["cJSON_Parse"]
	if !ok {
		t.Fatal("cJSON_Parse not extracted")
	}
	if parse.Kind != KindFunction {
		t.Errorf("cJSON_Parse kind = %s, want function", parse.Kind)
	}
	if !strings.Contains(parse.Signature, "cJSON_Parse") ||
		!strings.Contains(parse.Signature, "const char") {
		t.Errorf("cJSON_Parse signature = %q", parse.Signature)
	}
	if parse.Header != "cjson.h" {
		t.Errorf("header = %q, want cjson.h", parse.Header)
	}

	if _, ok := m["cJSON_Delete"]; !ok {
		t.Error("cJSON_Delete not extracted")
	}
	if _, ok := m["cJSON_Print"]; !ok {
		t.Error("cJSON_Print not extracted")
	}
	if _, ok := m["cjson_counter"]; ok {
		t.Error("variable declaration extracted as a gadget")
	}
}

func TestExtractSourceMacros(t *testing.T) {
	e := NewExtractor()
	gadgets, err := e.ExtractSource(context.Background(), "cjson.h", []byte(cjsonHeader))
	if err != nil {
		t.Fatal(err)
	}
	m := byName(gadgets)

	if _, ok := m["CJSON_H"]; ok {
		t.Error("include guard extracted as a gadget")
	}

	version, ok := m["CJSON_VERSION_MAJOR"]
	if !ok {
		t.Fatal("CJSON_VERSION_MAJOR not extracted")
	}
	if version.Kind != KindMacro {
		t.Errorf("kind = %s, want macro", version.Kind)
	}

	isInvalid, ok := m["cJSON_IsInvalid"]
	if !ok {
		t.Fatal("cJSON_IsInvalid not extracted")
	}
	if !strings.Contains(isInvalid.Signature, "(item)") {
		t.Errorf("function macro signature = %q, want parameter list", isInvalid.Signature)
	}
}

func TestExtractSourceTypes(t *testing.T) {
	e := NewExtractor()
	gadgets, err := e.ExtractSource(context.Background(), "cjson.h", []byte(cjsonHeader))
	if err != nil {
		t.Fatal(err)
	}
	m := byName(gadgets)

	typ, ok := m["cJSON"]
	if !ok {
		t.Fatal("cJSON typedef not extracted")
	}
	if typ.Kind != KindType {
		t.Errorf("kind = %s, want type", typ.Kind)
	}
	if !strings.HasPrefix(typ.Signature, "typedef struct") {
		t.Errorf("signature = %q", typ.Signature)
	}
}

func TestExtractProjectBansAndDedupes(t *testing.T) {
	ws := t.TempDir()
	const lib = "cjson"
	dataDir := filepath.Join(ws, "data", lib)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "config.yaml"),
		[]byte("ban:\n  - cJSON_Delete\n"), 0644); err != nil {
		t.Fatal(err)
	}
	headerDir := filepath.Join(ws, "output", lib, "build", "include")
	if err := os.MkdirAll(headerDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(headerDir, "cjson.h"), []byte(cjsonHeader), 0644); err != nil {
		t.Fatal(err)
	}
	// A second header redeclaring the same prototype must not duplicate it.
	if err := os.WriteFile(filepath.Join(headerDir, "compat.h"),
		[]byte("cJSON *cJSON_Parse(const char *value);\n"), 0644); err != nil {
		t.Fatal(err)
	}

	proj, err := project.Open(ws, lib)
	if err != nil {
		t.Fatal(err)
	}

	gadgets, err := NewExtractor().ExtractProject(context.Background(), proj,
		[]string{"cjson.h", "compat.h"})
	if err != nil {
		t.Fatal(err)
	}

	count := map[string]int{}
	for _, g := range gadgets {
		count[g.Name]++
	}
	if count["cJSON_Delete"] != 0 {
		t.Error("banned API extracted")
	}
	if count["cJSON_Parse"] != 1 {
		t.Errorf("cJSON_Parse extracted %d times, want 1", count["cJSON_Parse"])
	}
}

func TestFormatAPIs(t *testing.T) {
	gadgets := []Gadget{
		{Name: "cJSON_Parse", Kind: KindFunction, Signature: "cJSON *cJSON_Parse(const char *value)"},
		{Name: "cJSON", Kind: KindType, Signature: "typedef struct cJSON cJSON"},
		{Name: "cJSON_IsInvalid", Kind: KindMacro, Signature: "#define cJSON_IsInvalid(item)"},
	}

	apis := FormatAPIs(gadgets)
	if strings.Contains(apis, "typedef") {
		t.Error("type gadget leaked into API listing")
	}
	if !strings.Contains(apis, "cJSON_Parse") || !strings.Contains(apis, "cJSON_IsInvalid") {
		t.Errorf("API listing = %q", apis)
	}

	types := FormatTypes(gadgets)
	if types != "typedef struct cJSON cJSON" {
		t.Errorf("type listing = %q", types)
	}
}
