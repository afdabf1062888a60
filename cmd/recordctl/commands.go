package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"travel-records-service/internal/domain/entity"
	"travel-records-service/internal/usecase"
)

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts and flight cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, c.service.Statistics())
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [client|airline|flight]",
		Short: "List records, optionally of one kind",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind entity.Kind
			if len(args) == 1 {
				k, err := entity.ParseKind(args[0])
				if err != nil {
					return err
				}
				kind = k
			}
			return printJSON(cmd, external(c.service.ReadAll(kind)))
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := kindAndID(args)
			if err != nil {
				return err
			}
			rec, ok := c.service.Read(id, kind)
			if !ok {
				return fmt.Errorf("%s %d: %w", kind, id, entity.ErrNotFound)
			}
			return printJSON(cmd, entity.ToExternal(rec))
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <type> <json>",
		Short: "Create a record from a JSON object",
		Example: `  recordctl create airline '{"Company Name": "Delta"}'
  recordctl create flight '{"Client_ID": 1, "Airline_ID": 2, "Date": "2024-12-15", "Start City": "NYC", "End City": "LON"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := entity.ParseKind(args[0])
			if err != nil {
				return err
			}
			dec := json.NewDecoder(bytes.NewReader([]byte(args[1])))
			dec.UseNumber()
			var data map[string]any
			if err := dec.Decode(&data); err != nil {
				return fmt.Errorf("parse record JSON: %w", err)
			}
			rec, err := c.service.CreateAs(kind, data)
			if err != nil {
				return err
			}
			return printJSON(cmd, entity.ToExternal(rec))
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete a record; flights of a deleted client or airline go with it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := kindAndID(args)
			if err != nil {
				return err
			}
			deleted, err := c.service.Delete(id, kind)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("%s %d: %w", kind, id, entity.ErrNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", kind, id)
			return nil
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "search <type> <value>",
		Short: "Find records whose field contains value, ignoring case",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.service.SearchByField(args[0], field, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, external(results))
		},
	}
	cmd.Flags().StringVar(&field, "field", usecase.SearchAllFields, "field to search, or all")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Write every record to another file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.service.Export(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", n, args[0])
			return nil
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	var merge bool
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Load records from a file, replacing the current set unless --merge is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.service.Import(args[0], merge)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "append to the current records instead of replacing them")
	return cmd
}

func (c *cli) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			if err := c.service.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All records removed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal of every record")
	return cmd
}

func (c *cli) nextIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-id [type]",
		Short: "Print the ID the next create would get, or the per-kind maximum plus one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind entity.Kind
			if len(args) == 1 {
				k, err := entity.ParseKind(args[0])
				if err != nil {
					return err
				}
				kind = k
			}
			fmt.Fprintln(cmd.OutOrStdout(), usecase.NextID(c.service.Snapshot(), kind))
			return nil
		},
	}
}

func kindAndID(args []string) (entity.Kind, int, error) {
	kind, err := entity.ParseKind(args[0])
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid ID %q", args[1])
	}
	return kind, id, nil
}

func external(records []entity.Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, entity.ToExternal(rec))
	}
	return out
}
