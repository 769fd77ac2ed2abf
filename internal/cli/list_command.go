package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"onboarding-videos/internal/catalog"
)

var (
	listHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	listMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type listOutput struct {
	Cinematic  []catalog.Entry `json:"cinematic"`
	Explainers []catalog.Entry `json:"explainers"`
	Total      int             `json:"total"`
}

// runList only reads the in-memory catalog.
func runList(cat *catalog.Catalog, jsonOut bool) error {
	if jsonOut {
		return printJSON(listOutput{
			Cinematic:  cat.Cinematic(),
			Explainers: cat.Explainers(),
			Total:      cat.Len(),
		})
	}

	fmt.Println(listHeadingStyle.Render("Cinematic Videos:"))
	printListEntries(cat.Cinematic())
	fmt.Println()
	fmt.Println(listHeadingStyle.Render("Explainer Videos:"))
	printListEntries(cat.Explainers())
	fmt.Printf("\nTotal: %d videos\n", cat.Len())
	return nil
}

func printListEntries(entries []catalog.Entry) {
	for _, e := range entries {
		fmt.Printf("  Step %d: %s -> %s\n", e.StepID, e.Title, listMutedStyle.Render(e.Filename))
	}
}
