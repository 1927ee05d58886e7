package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srcmaptools/mappings/internal/helpers"
	"github.com/srcmaptools/mappings/internal/logger"
	"github.com/srcmaptools/mappings/pkg/mappings"
)

// srcmap is a debugging tool for poking at the raw "mappings" string of a
// source map. It takes the string itself (not the JSON document) from a file
// argument or stdin.

var (
	flagTiming bool
	flagBias   string

	flagLine   uint32
	flagColumn uint32

	flagSource    uint32
	flagHasColumn bool
	flagAll       bool

	log = logger.NewStderrLog(logger.OutputOptions{})
)

func main() {
	root := &cobra.Command{
		Use:           "srcmap",
		Short:         "Inspect source map mappings strings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&flagTiming, "timing", false, "log timing information for each phase")

	stats := &cobra.Command{
		Use:   "stats [file]",
		Short: "Summarize a mappings string",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStats,
	}

	lookup := &cobra.Command{
		Use:   "lookup [file]",
		Short: "Find the original location for a generated line/column",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLookup,
	}
	lookup.Flags().Uint32Var(&flagLine, "line", 0, "generated line (0-based)")
	lookup.Flags().Uint32Var(&flagColumn, "column", 0, "generated column (0-based)")
	lookup.Flags().StringVar(&flagBias, "bias", "glb", "bias when there is no exact match: glb or lub")

	rlookup := &cobra.Command{
		Use:   "rlookup [file]",
		Short: "Find generated locations for an original source/line/column",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReverseLookup,
	}
	rlookup.Flags().Uint32Var(&flagSource, "source", 0, "source index")
	rlookup.Flags().Uint32Var(&flagLine, "line", 0, "original line (0-based)")
	rlookup.Flags().Uint32Var(&flagColumn, "column", 0, "original column (0-based)")
	rlookup.Flags().StringVar(&flagBias, "bias", "glb", "bias when there is no exact match: glb or lub")
	rlookup.Flags().BoolVar(&flagAll, "all", false, "list every match instead of the closest one")

	root.AddCommand(stats, lookup, rlookup)

	if err := root.Execute(); err != nil {
		log.AddError(err.Error())
		os.Exit(1)
	}
}

func parseInput(args []string) (*mappings.Mappings, error) {
	var input []byte
	var err error
	if len(args) == 1 {
		input, err = os.ReadFile(args[0])
	} else {
		input, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, err
	}

	var timer *helpers.Timer
	if flagTiming {
		timer = &helpers.Timer{}
	}

	parsed, err := mappings.ParseWithHook(input, timer)
	if err != nil {
		return nil, err
	}
	timer.Log(log)
	return parsed, nil
}

func parseBias() (mappings.Bias, error) {
	switch flagBias {
	case "glb":
		return mappings.GreatestLowerBound, nil
	case "lub":
		return mappings.LeastUpperBound, nil
	}
	return 0, fmt.Errorf("invalid bias %q (want \"glb\" or \"lub\")", flagBias)
}

func runStats(cmd *cobra.Command, args []string) error {
	parsed, err := parseInput(args)
	if err != nil {
		return err
	}

	byGenerated := parsed.ByGeneratedLocation()
	withOriginal := 0
	named := 0
	for i := range byGenerated {
		if byGenerated[i].HasOriginal {
			withOriginal++
			if byGenerated[i].Original.Name.IsValid() {
				named++
			}
		}
	}

	lines := uint32(0)
	if n := len(byGenerated); n > 0 {
		lines = byGenerated[n-1].GeneratedLine + 1
	}

	bold := color.New(color.Bold)
	bold.Printf("%d mappings\n", len(byGenerated))
	fmt.Printf("  generated lines: %d\n", lines)
	fmt.Printf("  with original:   %d\n", withOriginal)
	fmt.Printf("  with name:       %d\n", named)
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	bias, err := parseBias()
	if err != nil {
		return err
	}
	parsed, err := parseInput(args)
	if err != nil {
		return err
	}

	mapping := parsed.OriginalLocationFor(flagLine, flagColumn, bias)
	if mapping == nil {
		color.Yellow("no mapping")
		return nil
	}
	printMapping(mapping)
	return nil
}

func runReverseLookup(cmd *cobra.Command, args []string) error {
	flagHasColumn = cmd.Flags().Changed("column")

	parsed, err := parseInput(args)
	if err != nil {
		return err
	}

	if flagAll {
		var column mappings.Index32
		if flagHasColumn {
			column = mappings.MakeIndex32(flagColumn)
		}
		results := parsed.AllGeneratedLocationsFor(flagSource, flagLine, column)
		found := false
		for mapping := results.Next(); mapping != nil; mapping = results.Next() {
			printMapping(mapping)
			found = true
		}
		if !found {
			color.Yellow("no mappings")
		}
		return nil
	}

	bias, err := parseBias()
	if err != nil {
		return err
	}
	mapping := parsed.GeneratedLocationFor(flagSource, flagLine, flagColumn, bias)
	if mapping == nil {
		color.Yellow("no mapping")
		return nil
	}
	printMapping(mapping)
	return nil
}

func printMapping(mapping *mappings.Mapping) {
	generated := color.New(color.FgGreen)
	generated.Printf("%d:%d", mapping.GeneratedLine, mapping.GeneratedColumn)
	if mapping.LastGeneratedColumn.IsValid() {
		generated.Printf("-%d", mapping.LastGeneratedColumn.GetIndex())
	}

	if mapping.HasOriginal {
		fmt.Printf(" -> ")
		original := color.New(color.FgCyan)
		original.Printf("source %d @ %d:%d",
			mapping.Original.Source, mapping.Original.Line, mapping.Original.Column)
		if mapping.Original.Name.IsValid() {
			fmt.Printf(" (name %d)", mapping.Original.Name.GetIndex())
		}
	}
	fmt.Println()
}
