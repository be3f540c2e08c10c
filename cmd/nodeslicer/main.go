// Command nodeslicer compiles node graph documents into printable
// output: validation reports, G-code files, or full 3MF archives.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/printforge/nodeslicer/pkg/compiler"
	"github.com/printforge/nodeslicer/pkg/gcode"
	"github.com/printforge/nodeslicer/pkg/graph"
	"github.com/printforge/nodeslicer/pkg/threemf"
)

var (
	verbose    bool
	outPath    string
	title      string
	hotendTemp int
	bedTemp    int

	rootCmd = &cobra.Command{
		Use:           "nodeslicer",
		Short:         "Compile node graphs into printable G-code and 3MF archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	validateCmd = &cobra.Command{
		Use:   "validate <graph.json>",
		Short: "Check a graph document and report every finding",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	compileCmd = &cobra.Command{
		Use:   "compile <graph.json>",
		Short: "Compile a graph document to G-code",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}

	exportCmd = &cobra.Command{
		Use:   "export <graph.json>",
		Short: "Compile a graph document and package it as a 3MF archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&hotendTemp, "hotend", 0, "override hotend temperature (C)")
	rootCmd.PersistentFlags().IntVar(&bedTemp, "bed", 0, "override bed temperature (C)")

	compileCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVarP(&outPath, "output", "o", "out.3mf", "output archive path")
	exportCmd.Flags().StringVar(&title, "title", "Untitled", "project title written into the archive")

	rootCmd.AddCommand(validateCmd, compileCmd, exportCmd)
}

// newCompiler builds the pipeline from the CLI flags.
func newCompiler() *compiler.Compiler {
	profile := gcode.DefaultProfile()
	if hotendTemp > 0 {
		profile.HotendTemp = float64(hotendTemp)
	}
	if bedTemp > 0 {
		profile.BedTemp = float64(bedTemp)
	}

	export := threemf.DefaultExportConfig()
	export.Title = title
	if hotendTemp > 0 {
		export.NozzleTemp = hotendTemp
	}
	if bedTemp > 0 {
		export.BedTemp = bedTemp
	}

	return compiler.New(nil, profile, export, slog.Default())
}

// loadGraph reads and decodes a graph document from disk.
func loadGraph(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return graph.Decode(f)
}

func runValidate(cmd *cobra.Command, args []string) error {
	g, err := loadGraph(args[0])
	if err != nil {
		return err
	}

	res := newCompiler().Validate(g)
	for _, f := range res.Errors {
		fmt.Printf("error: %s\n", f.Error())
	}
	for _, f := range res.Warnings {
		fmt.Printf("warning: %s\n", f.Error())
	}
	if !res.OK() {
		return fmt.Errorf("%d error(s), %d warning(s)", len(res.Errors), len(res.Warnings))
	}
	fmt.Printf("ok: %d node(s), %d warning(s)\n", g.NodeCount(), len(res.Warnings))
	return nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	g, err := loadGraph(args[0])
	if err != nil {
		return err
	}

	art, err := newCompiler().Compile(g)
	if err != nil {
		return err
	}

	if outPath == "" {
		fmt.Print(art.GCode)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(art.GCode), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d layer(s), %.2fg filament, estimated %s\n",
		outPath, art.LayerCount, art.Stats.WeightG, art.Estimated)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	g, err := loadGraph(args[0])
	if err != nil {
		return err
	}

	data, err := newCompiler().Export(g)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", outPath, len(data))
	return nil
}
