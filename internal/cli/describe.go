package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/types"
)

// MemberDescription is one member of a described class.
type MemberDescription struct {
	Name      string `json:"name"`
	Sig       string `json:"sig,omitempty"`
	Extension bool   `json:"extension,omitempty"`
}

// ClassDescription is the runtime view of one class.
type ClassDescription struct {
	Name         string              `json:"name"`
	Family       string              `json:"family,omitempty"`
	TypeArgs     []string            `json:"type_args,omitempty"`
	Supertypes   []string            `json:"supertypes"`
	Mixins       []string            `json:"mixins,omitempty"`
	Interfaces   []string            `json:"interfaces,omitempty"`
	Fields       []string            `json:"fields,omitempty"`
	Constructors []MemberDescription `json:"constructors,omitempty"`
	Methods      []MemberDescription `json:"methods,omitempty"`
	Getters      []string            `json:"getters,omitempty"`
	Statics      []MemberDescription `json:"statics,omitempty"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <specs-dir> <class>",
		Short: "Describe a class as the runtime sees it",
		Long: `Describe a declared class or generic instantiation: its supertype chain,
mixins, interfaces, fields and member signatures with type arguments
substituted.

With --verbose the compiled declaration is dumped to stderr.

Examples:
  rtype describe ./specs Circle
  rtype describe ./specs 'LabeledBox<String>' --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runDescribe(opts *RootOptions, specsDir, classSrc string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, err := loadInstalled(opts, specsDir, cmd)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	t, err := loadResult.Scope.Resolve(classSrc)
	if err != nil {
		return reportQueryError(formatter, ErrCodeUnknownType, err)
	}
	c, ok := t.(*types.Class)
	if !ok {
		return reportQueryError(formatter, ErrCodeNotClass, fmt.Errorf("%s is not a class", types.Name(t)))
	}

	desc := describeClass(c)
	if formatter.Verbose {
		if d, ok := loadResult.Program.Class(declName(c)); ok {
			spew.Fdump(formatter.diag(), d)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(desc)
	}
	writeDescription(formatter.Writer, desc)
	return nil
}

// declName is the declared name behind c: the family name for generic
// instantiations.
func declName(c *types.Class) string {
	if g, err := meta.GenericClass(c); err == nil {
		return g.FamilyName()
	}
	return c.Name()
}

func describeClass(c *types.Class) ClassDescription {
	desc := ClassDescription{
		Name:       c.String(),
		Supertypes: []string{},
		Fields:     c.Fields(),
	}
	if g, err := meta.GenericClass(c); err == nil {
		desc.Family = g.FamilyName()
		args, _ := meta.GenericArgs(c)
		for _, a := range args {
			desc.TypeArgs = append(desc.TypeArgs, types.Name(a))
		}
	}
	for s := c.SuperClass(); s != nil; s = s.SuperClass() {
		desc.Supertypes = append(desc.Supertypes, s.String())
	}
	for k := c; k != nil; k = k.SuperClass() {
		for _, m := range k.Mixins() {
			desc.Mixins = append(desc.Mixins, m.String())
		}
	}
	for _, i := range c.Interfaces() {
		desc.Interfaces = append(desc.Interfaces, types.Name(i))
	}

	desc.Constructors = describeSigs(c.ConstructorSigs())
	desc.Methods = describeSigs(c.MethodSigs())
	desc.Statics = describeSigs(c.StaticSigs())
	for k := range c.OwnGetters() {
		desc.Getters = append(desc.Getters, k.Name)
	}
	sort.Strings(desc.Getters)
	return desc
}

func describeSigs(sigs types.Signatures) []MemberDescription {
	out := make([]MemberDescription, 0, len(sigs))
	for k, sig := range sigs {
		out = append(out, MemberDescription{Name: k.Name, Sig: types.Name(sig), Extension: k.Extension})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return !out[i].Extension && out[j].Extension
	})
	return out
}

func writeDescription(w io.Writer, d ClassDescription) {
	fmt.Fprintf(w, "class %s\n", d.Name)
	if d.Family != "" {
		fmt.Fprintf(w, "  family:     %s<%s>\n", d.Family, strings.Join(d.TypeArgs, ", "))
	}
	if len(d.Supertypes) > 0 {
		fmt.Fprintf(w, "  extends:    %s\n", strings.Join(d.Supertypes, " -> "))
	}
	if len(d.Mixins) > 0 {
		fmt.Fprintf(w, "  mixins:     %s\n", strings.Join(d.Mixins, ", "))
	}
	if len(d.Interfaces) > 0 {
		fmt.Fprintf(w, "  implements: %s\n", strings.Join(d.Interfaces, ", "))
	}
	if len(d.Fields) > 0 {
		fmt.Fprintf(w, "  fields:     %s\n", strings.Join(d.Fields, ", "))
	}
	writeMembers(w, "constructors", d.Constructors)
	writeMembers(w, "methods", d.Methods)
	if len(d.Getters) > 0 {
		fmt.Fprintf(w, "  getters:    %s\n", strings.Join(d.Getters, ", "))
	}
	writeMembers(w, "statics", d.Statics)
}

func writeMembers(w io.Writer, title string, members []MemberDescription) {
	if len(members) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", title)
	for _, m := range members {
		name := m.Name
		if name == "" {
			name = "(unnamed)"
		}
		if m.Extension {
			name += " [extension]"
		}
		fmt.Fprintf(w, "    %s: %s\n", name, m.Sig)
	}
}
