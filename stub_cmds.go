package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// errNotImplemented is returned by the CLI-surface stubs for the
// collaborator tools this build does not carry (the pretty-printer, find,
// get, stream). They are registered as real Cobra subcommands, with their
// documented flags parsed, so scripts probing the tool's surface see the
// full verb set, but none of them carries engine logic.
var errNotImplemented = errors.New("not implemented: out of scope for this build")

func newPprintCmd() *cobra.Command {
	var flagExpr []string

	cmd := &cobra.Command{
		Use:         "pprint PATH...",
		Short:       "Pretty-print reqres files (not implemented)",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(*cobra.Command, []string) error {
			return errNotImplemented
		},
	}

	cmd.Flags().StringArrayVar(&flagExpr, "expr", nil, "expression to print (not implemented)")

	return cmd
}

func newGetCmd() *cobra.Command {
	var flagExpr []string

	cmd := &cobra.Command{
		Use:         "get PATH EXPR...",
		Short:       "Evaluate an expression against a single reqres file (not implemented)",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(*cobra.Command, []string) error {
			return errNotImplemented
		},
	}

	cmd.Flags().StringArrayVar(&flagExpr, "expr", nil, "expression to evaluate (not implemented)")

	return cmd
}

func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "find PATH...",
		Short:       "Print paths of reqres files matching a filter (not implemented)",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(*cobra.Command, []string) error {
			return errNotImplemented
		},
	}

	return cmd
}

func newStreamCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:         "stream PATH...",
		Short:       "Stream reqres files as a sequence of structured records (not implemented)",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(*cobra.Command, []string) error {
			return errNotImplemented
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "json", "output format (not implemented)")

	return cmd
}
