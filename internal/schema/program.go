package schema

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

//go:embed schema.cue
var schemaSource string

// Program is a compiled set of declarations, sorted by name.
type Program struct {
	Classes  []*ClassDecl
	Typedefs []*TypedefDecl
	Value    cue.Value
	Files    int
}

// Class returns the declaration named name.
func (p *Program) Class(name string) (*ClassDecl, bool) {
	for _, d := range p.Classes {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Load compiles every CUE file in dir.
func Load(dir string) (*Program, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("specs directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("accessing specs directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded")
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	p, err := Compile(value)
	if p != nil {
		p.Files = len(files)
	}
	return p, err
}

// LoadString compiles a single CUE source. filename is used in positions.
func LoadString(filename, src string) (*Program, error) {
	value := cuecontext.New().CompileString(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	p, err := Compile(value)
	if p != nil {
		p.Files = 1
	}
	return p, err
}

// Compile checks v against the declaration schema and compiles every class
// and typedef. All errors are collected; the returned error is an ErrorList.
// The program is returned alongside errors so callers can report partial
// results.
func Compile(v cue.Value) (*Program, error) {
	schema := v.Context().CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("declaration schema: %w", err)
	}
	v = v.Unify(schema)

	p := &Program{Value: v}
	var errs ErrorList
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return p, append(errs, formatCUEError(err))
	}

	if classes := v.LookupPath(cue.ParsePath("class")); classes.Exists() {
		iter, err := classes.Fields()
		if err != nil {
			return p, append(errs, formatCUEError(err))
		}
		for iter.Next() {
			d, err := CompileClass(iter.Value())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			p.Classes = append(p.Classes, d)
		}
	}

	if typedefs := v.LookupPath(cue.ParsePath("typedef")); typedefs.Exists() {
		iter, err := typedefs.Fields()
		if err != nil {
			return p, append(errs, formatCUEError(err))
		}
		for iter.Next() {
			d, err := CompileTypedef(iter.Value())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			p.Typedefs = append(p.Typedefs, d)
		}
	}

	if len(p.Classes) == 0 && len(p.Typedefs) == 0 && len(errs) == 0 {
		errs = append(errs, &CompileError{Field: "class", Message: "no classes or typedefs declared", Pos: v.Pos()})
	}
	sortDecls(p)
	if len(errs) > 0 {
		return p, errs
	}
	return p, nil
}

func sortDecls(p *Program) {
	sortByName(p.Classes, func(d *ClassDecl) string { return d.Name })
	sortByName(p.Typedefs, func(d *TypedefDecl) string { return d.Name })
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
