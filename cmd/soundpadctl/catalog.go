package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codewandler/soundpad-go/client"
	"github.com/codewandler/soundpad-go/core/catalog"
)

type categoryView struct {
	Path   string `json:"path" yaml:"path"`
	Hidden bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Icon   bool   `json:"icon,omitempty" yaml:"icon,omitempty"`
	Sounds []int  `json:"sounds,omitempty" yaml:"sounds,omitempty,flow"`
}

type catalogView struct {
	Fingerprint string           `json:"fingerprint" yaml:"fingerprint"`
	Sounds      []*catalog.Sound `json:"sounds" yaml:"sounds"`
	Categories  []categoryView   `json:"categories,omitempty" yaml:"categories,omitempty"`
}

func newCatalogView(l *catalog.SoundList, fingerprint string) catalogView {
	v := catalogView{Fingerprint: fingerprint, Sounds: l.Sounds()}
	_ = l.Walk(func(path []string, c *catalog.Category) error {
		cv := categoryView{
			Path:   strings.Join(append(path[:len(path):len(path)], c.Name), "/"),
			Hidden: c.Hidden,
			Icon:   c.HasIcon(),
		}
		for _, s := range c.Sounds() {
			cv.Sounds = append(cv.Sounds, s.ID)
		}
		v.Categories = append(v.Categories, cv)
		return nil
	})
	return v
}

func newCatalogCmd(a *app) *cobra.Command {
	var (
		file  string
		query string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the sound catalog",
		Long: `Catalog fetches the sound list from Soundpad, or reads an exported sound list
file with --file, and prints its sounds and category tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				l, err := catalog.ParseString(string(data))
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), a.output, newCatalogView(l, catalog.Fingerprint(data)))
			}

			c, err := a.dial(client.Options{})
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			snap, err := c.Catalog(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to fetch catalog: %w", err)
			}
			return write(cmd.OutOrStdout(), a.output, newCatalogView(snap.List, snap.Fingerprint))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read an exported sound list instead of querying Soundpad")
	cmd.Flags().StringVar(&query, "query", client.DefaultCatalogQuery, "remote control query returning the sound list")
	cmd.MarkFlagsMutuallyExclusive("file", "query")
	return cmd
}
