// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/mattersci/matex/internal/catalog"
	"github.com/mattersci/matex/internal/match"
	"github.com/mattersci/matex/pkg/types"
)

var compareCmd = &cobra.Command{
	Use:   "compare <material-id-a> <material-id-b>",
	Short: "Judge geometric equivalence of two crystal structures",
	Long: `Compare fetches the crystal structures of two materials and judges their
geometric equivalence under the configured tolerances. Either argument may
instead be a local structure YAML file (as written by "get --structure")
when prefixed with "file:".`,
	Args:          cobra.ExactArgs(2),
	RunE:          runCompare,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errNotEquivalent carries the negative judgment out through the process
// exit code.
var errNotEquivalent = errors.New("structures are not equivalent")

func init() {
	compareCmd.Flags().Float64("ltol", match.DefaultLengthTol, "relative tolerance on lattice vector lengths")
	compareCmd.Flags().Float64("stol", match.DefaultSiteTol, "site displacement tolerance (fraction of mean free length)")
	compareCmd.Flags().Float64("angle-tol", match.DefaultAngleTol, "cell angle tolerance in degrees")
	compareCmd.Flags().Bool("primitive", true, "reduce to primitive cells before comparing")
	compareCmd.Flags().Bool("scale", true, "normalize lattices to the same volume per atom")
	compareCmd.Flags().Bool("supercell", false, "allow matching cells related by an integer supercell factor")
	compareCmd.Flags().Bool("ignore-species", false, "compare geometry only, disregarding species")
	compareCmd.Flags().Int("max-results", 0, "maximum number of records to return")

	rootCmd.AddCommand(compareCmd)
}

// runCompare reports the judgment on stdout and through the exit code:
// a non-equivalent pair fails the command.
func runCompare(cmd *cobra.Command, args []string) error {
	err := compareStructures(cmd, args)
	if err != nil && !errors.Is(err, errNotEquivalent) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func compareStructures(cmd *cobra.Command, args []string) error {
	matcher := matcherFromFlags(cmd)

	client := catalog.NewClient(catalogConfig(cmd), nil)
	defer client.Close()

	a, err := loadStructure(client, args[0])
	if err != nil {
		return err
	}
	b, err := loadStructure(client, args[1])
	if err != nil {
		return err
	}

	equivalent, err := matcher.Fit(a, b)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !equivalent {
		fmt.Fprintf(out, "%s and %s are not equivalent\n", a.MaterialID, b.MaterialID)
		return errNotEquivalent
	}
	fmt.Fprintf(out, "%s and %s are equivalent\n", a.MaterialID, b.MaterialID)
	return nil
}

func matcherFromFlags(cmd *cobra.Command) *match.Matcher {
	ltol, _ := cmd.Flags().GetFloat64("ltol")
	stol, _ := cmd.Flags().GetFloat64("stol")
	angleTol, _ := cmd.Flags().GetFloat64("angle-tol")
	primitive, _ := cmd.Flags().GetBool("primitive")
	scale, _ := cmd.Flags().GetBool("scale")
	supercell, _ := cmd.Flags().GetBool("supercell")
	ignoreSpecies, _ := cmd.Flags().GetBool("ignore-species")

	return match.New(types.MatcherConfig{
		LengthTol:        ltol,
		SiteTol:          stol,
		AngleTol:         angleTol,
		PrimitiveCell:    primitive,
		ScaleVolume:      scale,
		AttemptSupercell: supercell,
		IgnoreSpecies:    ignoreSpecies,
	})
}

// loadStructure resolves an argument to a structure: "file:" arguments read
// a local YAML file, anything else is fetched from the catalog.
func loadStructure(client *catalog.Client, arg string) (types.Structure, error) {
	const filePrefix = "file:"
	if len(arg) > len(filePrefix) && arg[:len(filePrefix)] == filePrefix {
		path := arg[len(filePrefix):]
		data, err := os.ReadFile(path)
		if err != nil {
			return types.Structure{}, fmt.Errorf("reading structure file: %w", err)
		}
		var s types.Structure
		if err := yaml.Unmarshal(data, &s); err != nil {
			return types.Structure{}, fmt.Errorf("parsing structure file %s: %w", path, err)
		}
		if s.MaterialID == "" {
			s.MaterialID = path
		}
		return s, nil
	}
	return client.GetStructure(context.Background(), arg)
}
