package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tangzhangming/sstc/internal/jvmgen"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.class>",
		Short: "Print the structure of a class file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := jvmgen.ParseFile(args[0])
			if err != nil {
				return err
			}
			return printClass(cmd.OutOrStdout(), pc)
		},
	}
}

func printClass(w io.Writer, pc *jvmgen.ParsedClass) error {
	heading := color.New(color.FgCyan, color.Bold)
	name := color.New(color.FgGreen)

	this, err := pc.ThisClassName()
	if err != nil {
		return err
	}
	super, err := pc.SuperClassName()
	if err != nil {
		return err
	}

	heading.Fprintf(w, "class %s", this)
	fmt.Fprintf(w, " extends %s\n", super)
	fmt.Fprintf(w, "  version: %d.%d\n", pc.MajorVersion, pc.MinorVersion)
	fmt.Fprintf(w, "  flags: 0x%04X\n", pc.AccessFlags)
	if src, ok := pc.SourceFile(); ok {
		fmt.Fprintf(w, "  source: %s\n", src)
	}
	fmt.Fprintln(w)

	jvmgen.DumpConstantPool(w, pc.Pool)
	fmt.Fprintln(w)

	heading.Fprintln(w, "Fields:")
	for i := range pc.Fields {
		f := &pc.Fields[i]
		fmt.Fprintf(w, "  0x%04X ", f.AccessFlags)
		name.Fprint(w, f.Name)
		fmt.Fprintf(w, " %s", f.Descriptor)
		if v, ok := f.ConstantValue(pc.Pool); ok {
			fmt.Fprintf(w, " = %d", v)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	heading.Fprintln(w, "Methods:")
	for i := range pc.Methods {
		m := &pc.Methods[i]
		fmt.Fprintf(w, "  0x%04X ", m.AccessFlags)
		name.Fprint(w, m.Name)
		fmt.Fprintf(w, " %s\n", m.Descriptor)
		if m.Code == nil {
			continue
		}
		fmt.Fprintf(w, "    stack=%d, locals=%d, code_length=%d\n",
			m.Code.MaxStack, m.Code.MaxLocals, len(m.Code.Code))
		jvmgen.Disassemble(w, m.Code.Code)
		jvmgen.HexDump(w, m.Code.Code)
	}
	return nil
}
