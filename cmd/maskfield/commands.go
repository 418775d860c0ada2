package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"maskfield/internal/config"
	"maskfield/internal/mask"
	"maskfield/internal/store"
)

func newFormatCmd() *cobra.Command {
	var opts mask.Options
	var maskType string

	cmd := &cobra.Command{
		Use:   "format <keystrokes>...",
		Short: "Type keystrokes into a masked field and print the result",
		Example: `  maskfield format --type date --mask 99/99/9999 01012024
  maskfield format --type currency --divider , 1234567.89`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := mask.ParseMaskType(maskType)
			if err != nil {
				return err
			}
			opts.MaskType = t
			if opts.MaskType != mask.MaskCurrency && opts.MaskType != mask.MaskNone && opts.Mask == "" {
				opts.Mask = mask.DefaultPattern(opts.MaskType)
			}

			spec, err := mask.NewSpec(opts)
			if err != nil {
				return err
			}
			for _, keystrokes := range args {
				fmt.Fprintln(cmd.OutOrStdout(), mask.Type(spec, "", keystrokes))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&maskType, "type", "t", "", "mask type (phone, date, card, currency)")
	cmd.Flags().StringVarP(&opts.Mask, "mask", "m", "", "pattern, defaults to the built-in one for --type")
	cmd.Flags().StringVarP(&opts.CurrencyDivider, "divider", "d", "", `currency divider, "," or "."`)
	return cmd
}

func newInitCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := root.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			created, err := config.SaveDefaultConfig(path)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func newListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print recorded submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			recorder := store.NewFileRecorder(cfg.Output.Path)
			submissions, err := recorder.List(ctx)
			if err != nil {
				return err
			}
			if len(submissions) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No submissions recorded in %s\n", recorder.Path())
				return nil
			}
			for _, s := range submissions {
				parts := make([]string, 0, len(s.Values))
				for _, v := range s.Values {
					parts = append(parts, fmt.Sprintf("%s=%s", v.Label, v.Value))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", s.At.Format("2006-01-02 15:04:05"), strings.Join(parts, ", "))
			}
			return nil
		},
	}
}
