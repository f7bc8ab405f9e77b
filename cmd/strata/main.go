// Command strata inspects field layouts and descriptors from the command
// line: declare a storage chain and dump its index mapping, describe a
// sample field, or probe the host GPU adapter.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quarkframe/strata/backend"
	"github.com/quarkframe/strata/field"
	"github.com/quarkframe/strata/vis"
)

var (
	flagConfig string
	flagArch   string
	flagDebug  bool
)

func main() {
	root := &cobra.Command{
		Use:           "strata",
		Short:         "Field layout and descriptor inspection for the strata bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				log, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				backend.SetLogger(log)
			}
			if flagConfig != "" {
				if err := backend.InitFromFile(flagConfig); err != nil {
					return err
				}
			}
			if flagArch != "" {
				arch, err := backend.ParseArch(flagArch)
				if err != nil {
					return err
				}
				backend.Init(backend.WithArch(arch), backend.WithDebug(flagDebug))
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML backend config file")
	root.PersistentFlags().StringVar(&flagArch, "arch", "", "active arch (x64, arm64, cuda, vulkan)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	root.AddCommand(newLayoutCmd(), newDescribeCmd(), newProbeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "strata:", err)
		os.Exit(1)
	}
}

func newLayoutCmd() *cobra.Command {
	var denseSpecs []string

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Declare a dense chain and print its index mapping and strides",
		Example: `  strata layout --dense j:32 --dense i:16
  strata layout --dense i:128 --dense j:32 --dense k:8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(denseSpecs) == 0 {
				return fmt.Errorf("at least one --dense axis:extent is required")
			}
			node := field.NewTree().Root()
			for _, spec := range denseSpecs {
				axis, extent, err := parseDense(spec)
				if err != nil {
					return err
				}
				node = node.Dense(axis, extent)
			}
			f := field.NewScalar("layout", field.F32)
			if err := node.Place(f); err != nil {
				return err
			}

			mapping, err := f.PhysicalIndexPosition()
			if err != nil {
				return err
			}
			strides, err := axisStrides(f)
			if err != nil {
				return err
			}
			out := struct {
				Shape                 []int       `json:"shape"`
				PhysicalIndexPosition map[int]int `json:"physical_index_position"`
				ByteStrides           map[int]int `json:"byte_strides"`
			}{f.Shape(), mapping, strides}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().StringArrayVar(&denseSpecs, "dense", nil,
		"dense level as axis:extent, outermost first (repeatable)")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var (
		shapeSpec  string
		dtypeSpec  string
		vectorN    int
		matrixSpec string
	)

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Build a sample field and print its descriptor",
		Example: `  strata describe --shape 128,32,8 --dtype f32
  strata --arch cuda describe --shape 64 --matrix 3x3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := field.ParseDType(dtypeSpec)
			if err != nil {
				return err
			}
			shape, err := parseShape(shapeSpec)
			if err != nil {
				return err
			}

			var f *field.Field
			switch {
			case matrixSpec != "":
				rows, cols, err := parseMatrix(matrixSpec)
				if err != nil {
					return err
				}
				f = field.NewMatrix("sample", dt, rows, cols)
			case vectorN > 0:
				f = field.NewVector("sample", dt, vectorN)
			default:
				f = field.NewScalar("sample", dt)
			}

			axes := make([]field.Axis, len(shape))
			for i := range shape {
				axes[i] = field.Axis(i)
			}
			if err := field.NewTree().Root().DenseAxes(axes, shape).Place(f); err != nil {
				return err
			}

			desc, err := vis.Describe(f)
			if err != nil {
				return err
			}
			return printJSON(cmd, descriptorView(desc))
		},
	}
	cmd.Flags().StringVar(&shapeSpec, "shape", "8", "comma-separated extents, axis 0 first")
	cmd.Flags().StringVar(&dtypeSpec, "dtype", "f32", "element dtype")
	cmd.Flags().IntVar(&vectorN, "vector", 0, "element is an n-component vector")
	cmd.Flags().StringVar(&matrixSpec, "matrix", "", "element is an NxM matrix, e.g. 3x3")
	return cmd
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Probe the host GPU adapter and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := backend.ProbeJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

/* ---------- helpers ---------- */

// descriptorView renders a FieldDescriptor with readable enum names.
func descriptorView(d vis.FieldDescriptor) any {
	return struct {
		Valid  bool   `json:"valid"`
		Source string `json:"source"`
		Shape  []int  `json:"shape"`
		DType  string `json:"dtype"`
		SNode  int64  `json:"snode"`
		Kind   string `json:"kind"`
		Rows   int    `json:"rows"`
		Cols   int    `json:"cols"`
	}{d.Valid, d.Source.String(), d.Shape, d.DType.String(), int64(d.SNode), d.Kind.String(), d.Rows, d.Cols}
}

// axisStrides reports the byte distance of a unit step along each axis from
// the origin.
func axisStrides(f *field.Field) (map[int]int, error) {
	shape := f.Shape()
	origin := make([]int, len(shape))
	base, err := f.Address(origin...)
	if err != nil {
		return nil, err
	}
	out := make(map[int]int, len(shape))
	for i := range shape {
		if shape[i] < 2 {
			out[i] = 0
			continue
		}
		idx := make([]int, len(shape))
		idx[i] = 1
		addr, err := f.Address(idx...)
		if err != nil {
			return nil, err
		}
		out[i] = int(addr - base)
	}
	return out, nil
}

func parseDense(spec string) (field.Axis, int, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad dense spec %q, want axis:extent", spec)
	}
	axis, err := parseAxis(parts[0])
	if err != nil {
		return 0, 0, err
	}
	extent, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad extent in %q: %w", spec, err)
	}
	return axis, extent, nil
}

func parseAxis(s string) (field.Axis, error) {
	switch s {
	case "i":
		return field.AxisI, nil
	case "j":
		return field.AxisJ, nil
	case "k":
		return field.AxisK, nil
	case "l":
		return field.AxisL, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad axis %q", s)
	}
	return field.Axis(n), nil
}

func parseShape(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad shape %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseMatrix(s string) (int, int, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad matrix spec %q, want NxM", s)
	}
	rows, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad matrix rows in %q: %w", s, err)
	}
	cols, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad matrix cols in %q: %w", s, err)
	}
	return rows, cols, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
