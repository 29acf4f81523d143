// Package prompt assembles the chat messages that instruct a model to write
// a libFuzzer driver for one library. The system message fixes the driver
// prototype and lays out the library's usable surface: system headers,
// exported APIs, and custom types. The user message carries the step-by-step
// task, adjusted by the per-library configuration.
package prompt

import (
	"strings"

	"fdg/internal/gadget"
	"fdg/internal/project"
)

// systemRoleTemplate fixes the role and the driver entry point.
const systemRoleTemplate = `Act as a C++ language Developer, write a fuzz driver that follows the user's instructions.
The prototype of the fuzz driver is: ` + "`extern \"C\" int LLVMFuzzerTestOneInput(const uint8_t *data, size_t size)`" + `.
`

// systemContextTemplate describes the library surface. The {headers}, {APIs}
// and {context} slots are filled per library.
const systemContextTemplate = `
The fuzz driver should focus on the usage of the {project} library, and several essential aspects of the library are provided below.
Here are the system headers included in {project}. You can utilize the public elements of these headers:
----------------------
{headers}
----------------------

Here are the APIs exported from {project}. You are encouraged to use any of the following APIs once you need to create, initialize or destroy variables:
----------------------
{APIs}
----------------------

Here are the custom types declared in {project}. Ensure that the variables you use do not violate declarations:
----------------------
{context}
----------------------

Additionally, follow these rules:
- Check the return status of every call that reports one; free objects you created when a call fails before ownership transferred.
- Objects returned by *_Create*, *_Parse*, *_New* style functions are caller-owned: ensure each is either handed to a container or freed.
- Pointers returned by getter style functions are borrowed: do not free them.
- Buffers returned as printable or serialized output are caller-owned: always free() them after use.
- Release all allocated resources (FILE*, malloc, new[]) on every path, success or failure.
`

// userTaskTemplate is the step-by-step task.
const userTaskTemplate = `Create a C++ language program step by step by using {project} library APIs and following the instructions below:
1. Here are several APIs in {project}. Specify an event that those APIs could achieve together, if the input is a byte stream of {project}'s output data.
2. Complete the LLVMFuzzerTestOneInput function to achieve this event by using those APIs. Each API should be called at least once, if possible.
3. The input data and its size are passed as parameters of LLVMFuzzerTestOneInput: ` + "`const uint8_t *data` and `size_t size`" + `. They must be consumed by the {project} APIs.
4. Once you need a ` + "`FILE *`" + ` variable to read the input data, use ` + "`FILE *in_file = fmemopen((void *)data, size, \"rb\")`" + ` to produce it.
   Once you need a ` + "`FILE *`" + ` variable to write output data, use ` + "`FILE *out_file = fopen(\"output_file\", \"wb\")`" + ` to produce it.
5. Once you need an ` + "`int`" + ` type file descriptor, use ` + "`fileno(in_file)` or `fileno(out_file)`" + ` to produce one for reading or writing.
6. Once you just need a string of a file name, directly use "input_file" or "output_file" as the file name.
7. Release all allocated resources before return.
`

// Prompt is a fully rendered generation request.
type Prompt struct {
	System string
	User   string
}

// Builder renders prompts for one library.
type Builder struct {
	proj *project.Project
}

// NewBuilder creates a prompt builder for the library.
func NewBuilder(proj *project.Project) *Builder {
	return &Builder{proj: proj}
}

// Build renders the prompt from the library's resolved system headers and
// extracted gadgets.
func (b *Builder) Build(sysHeaders string, gadgets []gadget.Gadget) *Prompt {
	return &Prompt{
		System: b.buildSystem(sysHeaders, gadgets),
		User:   b.buildUser(),
	}
}

func (b *Builder) buildSystem(sysHeaders string, gadgets []gadget.Gadget) string {
	cfg := b.proj.LibConfig()

	context := gadget.FormatTypes(gadgets)
	if len(cfg.ForceTypes) > 0 {
		forced := strings.Join(cfg.ForceTypes, "\n")
		if context == "" {
			context = forced
		} else {
			context += "\n" + forced
		}
	}

	body := fill(systemContextTemplate, b.proj.Name, map[string]string{
		"{headers}": sysHeaders,
		"{APIs}":    gadget.FormatAPIs(gadgets),
		"{context}": context,
	})

	system := systemRoleTemplate + body
	if cfg.Desc != "" {
		system += "\nAbout " + b.proj.Name + ": " + cfg.Desc + "\n"
	}
	return system
}

func (b *Builder) buildUser() string {
	cfg := b.proj.LibConfig()
	user := fill(userTaskTemplate, b.proj.Name, nil)

	if cfg.Landmark {
		if landmark, ok := b.proj.LandmarkCorpus(); ok {
			user = "The input data is: " + landmark + "\n\n\n" + user
		}
	}
	if cfg.Spec != "" {
		user += "\nThe beginning of the fuzz driver is: \n" + cfg.Spec
	}
	if cfg.DisableFmemopen {
		user = strings.ReplaceAll(user,
			`fmemopen((void *)data, size, "rb")`,
			`fopen("input_file", "rb")`)
	}
	return user
}

// fill replaces the {project} slot plus any extra slots in a template.
func fill(template, projectName string, slots map[string]string) string {
	out := strings.ReplaceAll(template, "{project}", projectName)
	for slot, value := range slots {
		out = strings.ReplaceAll(out, slot, value)
	}
	return out
}
