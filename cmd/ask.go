package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jama7777/Inifinite-wiki/internal/app"
	"github.com/jama7777/Inifinite-wiki/internal/config"
	"github.com/jama7777/Inifinite-wiki/internal/i18n"
	"github.com/jama7777/Inifinite-wiki/internal/log"
)

var (
	askSearch bool
	askLang   string
)

var askCmd = &cobra.Command{
	Use:   "ask [topic]",
	Short: "Generate one article and print it, without the interactive interface",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askSearch, "search", false, "ground the answer in live web search")
	askCmd.Flags().StringVar(&askLang, "lang", "", "output language (default from config)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf(i18n.T("error.config"), err)
	}
	if askLang != "" {
		cfg.Language = askLang
	}

	application, err := app.New(cmd.Context(), cfg, log.NewNop())
	if err != nil {
		return err
	}
	defer func() { _ = application.Close() }()

	topic := strings.Join(args, " ")
	ctx := application.Context()

	if askSearch {
		text, sources, err := application.Gemini.Search(ctx, topic, cfg.Language)
		if err != nil {
			return fmt.Errorf(i18n.T("error.generate"), err)
		}
		fmt.Println(text)
		if len(sources) > 0 {
			fmt.Println()
			fmt.Println(i18n.T("tab.sources") + ":")
			for i, s := range sources {
				fmt.Printf("  %d. %s (%s)\n", i+1, s.Title, s.URI)
			}
		}
		return nil
	}

	for ev := range application.Gemini.StreamDefinition(ctx, topic, 0, cfg.Language) {
		if ev.Err != nil {
			return fmt.Errorf(i18n.T("error.generate"), ev.Err)
		}
		fmt.Print(ev.Delta)
	}
	fmt.Println()
	return nil
}
