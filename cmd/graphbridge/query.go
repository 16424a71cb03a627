package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360/graphbridge/term"
)

var queryBindings []string

var selectCmd = &cobra.Command{
	Use:   "select <query>",
	Short: "Run a select query and print solution rows as JSON lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(ctx) }()

		bindings, err := parseBindings(queryBindings)
		if err != nil {
			return err
		}
		result, err := s.Select(ctx, args[0], bindings)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		for _, row := range result.Rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	},
}

var constructCmd = &cobra.Command{
	Use:   "construct <query>",
	Short: "Run a construct query and print the resulting triples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(ctx) }()

		quads, err := s.Construct(ctx, args[0])
		if err != nil {
			return err
		}
		for _, q := range quads {
			fmt.Printf("%s %s %s\n", q.Subject, q.Predicate, q.Object)
		}
		return nil
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression on the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(ctx) }()

		bindings, err := parseBindings(queryBindings)
		if err != nil {
			return err
		}
		result, err := s.Eval(ctx, args[0], bindings)
		if err != nil {
			return err
		}
		if t, ok := result.(term.Term); ok {
			fmt.Println(t.String())
			return nil
		}
		return json.NewEncoder(os.Stdout).Encode(result)
	},
}

// parseBindings turns repeated --bind name=value flags into query bindings.
// Values are passed as plain strings; the server coerces them per the query.
func parseBindings(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	bindings := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid binding %q, expected name=value", pair)
		}
		bindings[name] = value
	}
	return bindings, nil
}

func init() {
	for _, cmd := range []*cobra.Command{selectCmd, evalCmd} {
		cmd.Flags().StringArrayVar(&queryBindings, "bind", nil,
			"Pre-bound query variable as name=value (repeatable)")
	}
}
