package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens/internal/domain/tags"
)

func newRecategorizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recategorize",
		Short: "Re-derive tag assignments for all non-overridden transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			tagSet, err := a.store.LoadTags()
			if err != nil {
				return err
			}
			txs, err := a.store.LoadTransactions()
			if err != nil {
				return err
			}

			recategorized := tags.NewMatcher(tagSet).Recategorize(txs)
			if err := a.store.SaveTransactions(recategorized); err != nil {
				return err
			}

			var tagged, overridden int
			for _, tx := range recategorized {
				if tx.ManualTagOverride {
					overridden++
				} else if len(tx.TagIDs) > 0 {
					tagged++
				}
			}
			fmt.Printf("recategorized %d transactions: %d tagged, %d manually overridden left untouched\n",
				len(recategorized), tagged, overridden)
			return nil
		},
	}
}

func newTagsCommand() *cobra.Command {
	var suggest string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags, or suggest tags for a narrative",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			tagSet, err := a.store.LoadTags()
			if err != nil {
				return err
			}
			if len(tagSet) == 0 {
				fmt.Println("no tags defined; run import to seed the defaults")
				return nil
			}

			if suggest != "" {
				suggestions := tags.NewMatcher(tagSet).Suggest(suggest, 5)
				if len(suggestions) == 0 {
					fmt.Println("no tag suggestions")
					return nil
				}
				for _, s := range suggestions {
					fmt.Printf("%s (keyword %q)\n", s.TagName, s.Keyword)
				}
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKEYWORDS\tDEFAULT")
			for _, tag := range tagSet {
				fmt.Fprintf(w, "%s\t%s\t%v\n", tag.Name, strings.Join(tag.Keywords, ", "), tag.IsDefault)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&suggest, "suggest", "", "narrative to fuzzy-rank tags against")

	return cmd
}
