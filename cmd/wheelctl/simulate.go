package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"prizewheel/internal/simulate"
)

func newSimulateCmd(opts *options) *cobra.Command {
	var (
		rounds   int
		seed     uint64
		progress bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay many draws locally against the current prizes",
		Long: `simulate fetches the prize list and runs the server's weighted draw many times
without touching the server, then compares observed and expected shares.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prizes, err := opts.client().Prizes(cmd.Context())
			if err != nil {
				return err
			}

			randFloat := rand.Float64
			if seed != 0 {
				randFloat = rand.New(rand.NewPCG(seed, seed)).Float64
			}

			bar := pb.New(rounds)
			if !progress {
				bar.SetWriter(io.Discard)
			}
			bar.Start()
			result, err := simulate.Run(prizes, rounds, randFloat, bar)
			bar.Finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-20s %10s %10s %10s\n", "NAME", "EXPECTED", "OBSERVED", "COUNT")
			for _, s := range result.Shares {
				fmt.Fprintf(out, "%-20s %9.2f%% %9.2f%% %10d\n", s.Name, s.Expected*100, s.Observed*100, s.Count)
			}
			fmt.Fprintf(out, "chi-square %.4f (df %d), p-value %.4f\n", result.ChiSquare, result.DegreesOfFreedom, result.PValue)
			return nil
		},
	}
	cmd.Flags().IntVarP(&rounds, "rounds", "n", 100000, "Number of draws")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed; 0 picks a random one")
	cmd.Flags().BoolVar(&progress, "progress", true, "Show a progress bar")
	return cmd
}
