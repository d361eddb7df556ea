package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/card-catalog/internal/deckfile"
)

func newDeckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage saved decks",
	}
	cmd.AddCommand(
		newDeckListCmd(a),
		newDeckExportCmd(a),
		newDeckImportCmd(a),
	)
	return cmd
}

func newDeckListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer a.closeEngine(eng)

			decks, err := eng.ListDecks(ctx)
			if err != nil {
				return err
			}

			table := tablewriter.NewTable(cmd.OutOrStdout())
			table.Header("ID", "Name", "Legend", "Colors", "Cards", "Updated")
			for _, d := range decks {
				if err := table.Append([]string{
					strconv.FormatInt(d.ID, 10),
					d.Name,
					d.LegendName,
					colorList(d.LegendColors),
					strconv.Itoa(d.TotalCards),
					d.UpdatedAt.Local().Format(time.DateTime),
				}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

func newDeckExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a deck as a TOML deck file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("deck ID must be a positive integer, got '%s'", args[0])
			}

			ctx, cancel := signalContext()
			defer cancel()

			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer a.closeEngine(eng)

			deck, err := eng.GetDeck(ctx, id)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			return deckfile.Write(w, deck, time.Now())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func newDeckImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Save a TOML deck file as a new deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			deck, err := deckfile.Read(f)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			eng, err := a.openEngine()
			if err != nil {
				return err
			}
			defer a.closeEngine(eng)

			id, err := eng.SaveDeck(ctx, deck)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deck '%s' as %d\n", okText("Saved"), deck.Name, id)
			return nil
		},
	}
}
