package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <subject> <predicate> <object>",
	Short: "Assert a triple",
	Long: `Assert one triple. Subject and predicate are URIs or QNames resolved
against the session prefix table; the object is a QName, URI, or literal
text.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(ctx) }()

		return s.Add(ctx, args[0], args[1], args[2])
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <subject> <predicate> <object>",
	Short: "Retract a triple",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(ctx) }()

		return s.Remove(ctx, args[0], args[1], args[2])
	},
}

var containsCmd = &cobra.Command{
	Use:   "contains <subject> <predicate> <object>",
	Short: "Test whether a triple exists",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(ctx) }()

		found, err := s.Contains(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Println(found)
		return nil
	},
}
