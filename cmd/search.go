package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docuchat/pkg/cache"
	"docuchat/pkg/core"
	"docuchat/pkg/index"
	"docuchat/pkg/types"
)

var (
	searchDir  string
	searchTopK int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search extracted document text and print cited passages",
	Long: "Builds a TF-IDF index over the extracted text of every supported\n" +
		"document in the data directory, then prints the passages most similar\n" +
		"to the query with file and page citations. Documents not yet in the\n" +
		"extraction cache are extracted on the fly.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := searchDir
		if dir == "" {
			dir = appConfig.DataDir
		}
		return runSearch(cmd.Context(), dir, strings.Join(args, " "))
	},
}

func runSearch(ctx context.Context, dir, query string) error {
	store, err := cache.NewStore(&appConfig.Cache, appLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	loader, err := core.NewLoader(appConfig, store, appLogger, ocrProgressPrinter(appLogger))
	if err != nil {
		return err
	}

	appLogger.Progress("📚", "Indexing documents in %s", dir)
	ix, err := index.BuildFromDirectory(ctx, dir, loader, appLogger)
	if err != nil {
		return err
	}
	if ix.Len() == 0 {
		appLogger.ProgressAlways("📭", "Nothing indexed; no supported documents in %s", dir)
		return nil
	}

	topK := searchTopK
	if topK <= 0 {
		topK = appConfig.Chat.MaxContextDocs
	}

	matches := ix.Search(query, topK, appConfig.Chat.SimilarityThreshold)
	if len(matches) == 0 {
		fmt.Printf("No passages matched %q (similarity threshold %.2f)\n",
			query, appConfig.Chat.SimilarityThreshold)
		return nil
	}

	fmt.Printf("Top %d passages for %q:\n\n", len(matches), query)
	for i, m := range matches {
		printMatch(i+1, m)
	}
	return nil
}

func printMatch(rank int, m index.Match) {
	method := "text layer"
	if m.Document.Method == types.MethodOCR {
		method = "OCR"
	}
	marker := ""
	if m.Document.Incomplete {
		marker = " [incomplete: some pages failed recognition]"
	}

	fmt.Printf("%d. %s, page %d (score %.3f, %s)%s\n",
		rank, m.Document.File, m.Document.Page, m.Score, method, marker)

	snippet := strings.Join(strings.Fields(m.Document.Text), " ")
	if len(snippet) > 300 {
		snippet = snippet[:300] + "..."
	}
	fmt.Printf("   %s\n\n", snippet)
}

func init() {
	searchCmd.Flags().StringVarP(&searchDir, "dir", "d", "",
		"Directory to index (defaults to the configured data directory)")
	searchCmd.Flags().IntVarP(&searchTopK, "top", "k", 0,
		"Maximum number of passages to return (defaults to chat.max_context_docs)")
	rootCmd.AddCommand(searchCmd)
}
