package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
	"github.com/spf13/cobra"
)

func newRecordingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "Browse recordings uploaded to the configured bucket",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recording keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s3c := a.cfg.Recorder.S3
			cli, err := builder.NewS3Client(cmd.Context(), s3c)
			if err != nil {
				return err
			}
			keys, err := builder.ListRecordings(cmd.Context(), cli, s3c.Bucket, s3c.Prefix)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show KEY",
		Short: "Summarise a session recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s3c := a.cfg.Recorder.S3
			cli, err := builder.NewS3Client(cmd.Context(), s3c)
			if err != nil {
				return err
			}
			rows, err := builder.DownloadSession(cmd.Context(), cli, s3c.Bucket, args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "session\twindow\tstart s\tthreshold\tsamples")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.3f\t%d\n", r.SessionID, r.WindowIndex, r.StartSeconds, r.Threshold, len(r.Samples))
			}
			return tw.Flush()
		},
	})
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the configuration after file, environment and flags are merged",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "write FILE",
		Short: "Write the resolved configuration as a starting config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.cfg.WriteFile(args[0])
		},
	})
	return cmd
}
