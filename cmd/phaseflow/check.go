package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/phaseflow/internal/compute"
	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/field"
	"github.com/san-kum/phaseflow/internal/render"
)

var showShader bool

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [dx] [dy]",
		Short: "compile a pair of equations and print the generated GLSL",
		Args:  cobra.ExactArgs(2),
		RunE:  runCheck,
	}
	cmd.Flags().BoolVar(&showShader, "shader", false, "print the full fragment shader")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	for i, name := range []string{field.ComponentX, field.ComponentY} {
		if strings.TrimSpace(args[i]) == "" {
			return fmt.Errorf("%s: %w", name, dynamo.ErrEmptyExpression)
		}
	}

	f, err := field.Compile(args[0], args[1])
	if err != nil {
		var ce *dynamo.CompileError
		if errors.As(err, &ce) && ce.Pos >= 0 {
			src := args[0]
			if ce.Component == field.ComponentY {
				src = args[1]
			}
			return fmt.Errorf("%w\n%s", err, caret(src, ce.Pos))
		}
		return err
	}

	shader := render.FieldShader(f)
	if err := compute.ValidateGLSL("fragment", shader); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s = %s\n", field.ComponentX, f.DX.Code)
	fmt.Fprintf(out, "%s = %s\n", field.ComponentY, f.DY.Code)
	if params := f.Params(); len(params) > 0 {
		fmt.Fprintf(out, "params: %s\n", strings.Join(params, ", "))
	} else {
		fmt.Fprintln(out, "params: none")
	}
	if showShader {
		fmt.Fprintln(out)
		fmt.Fprint(out, shader)
	}
	return nil
}

// caret quotes src as the compiler saw it, surrounding space trimmed, with a
// marker under byte offset pos.
func caret(src string, pos int) string {
	src = strings.TrimSpace(src)
	return fmt.Sprintf("  %s\n  %s^", src, strings.Repeat(" ", max(0, min(pos, len(src)))))
}
