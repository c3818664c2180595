package render

import (
	"fmt"
	"strings"

	"github.com/futig/mindtrace-ai/internal/entity"
)

// MaxMessageLength keeps messages under the Telegram limit of 4096 UTF-16 units
const MaxMessageLength = 4000

// snippetLength bounds the chunk text shown per search hit
const snippetLength = 300

const (
	MsgWelcome = `👋 Bonjour ! Je suis l'assistant MindTrace.

Je réponds à vos questions à partir des documents indexés d'un projet.`

	MsgHelp = `🤖 Commandes :

/project <id> - Choisir le projet à interroger
/search <texte> - Rechercher les passages les plus proches
/ask <question> - Poser une question (ou écrivez-la directement)
/reset - Oublier le projet choisi
/help - Afficher cette aide`

	MsgProjectBound   = `📁 Projet « %s » sélectionné. Posez votre question.`
	MsgProjectCurrent = `📁 Projet actuel : « %s ».`
	MsgProjectUsage   = `Indiquez l'identifiant du projet : /project <id>`
	MsgNoProject      = `📁 Aucun projet sélectionné. Utilisez /project <id>.`
	MsgUnbound        = `👋 Projet oublié. Choisissez-en un autre avec /project <id>.`
	MsgSearchUsage    = `Indiquez le texte à rechercher : /search <texte>`
	MsgAskUsage       = `Indiquez votre question : /ask <question>`
	MsgNoResults      = `🔍 Aucun passage trouvé pour « %s ».`
	MsgNoLastQuery    = `Lancez d'abord une recherche avec /search <texte>.`
	MsgAnswerSources  = `📚 Sources :`

	ErrGeneric            = `❌ Une erreur est survenue. Réessayez ou tapez /help`
	ErrUnknownCommand     = `❌ Commande inconnue. Tapez /help`
	ErrInvalidInput       = `❌ Requête invalide. Vérifiez le texte envoyé.`
	ErrTimeout            = `❌ L'opération a pris trop de temps. Réessayez.`
	ErrNetworkIssue       = `❌ Problème de connexion. Réessayez dans un instant.`
	ErrServiceUnavailable = `❌ Le service est temporairement indisponible. Réessayez dans quelques minutes.`
	ErrRateLimited        = `⚠️ Trop de requêtes. Patientez un peu avant de recommencer.`
)

// RenderProjectBound confirms the project selection
func RenderProjectBound(projectID string) string {
	return fmt.Sprintf(MsgProjectBound, projectID)
}

// RenderProjectCurrent shows the bound project
func RenderProjectCurrent(projectID string) string {
	return fmt.Sprintf(MsgProjectCurrent, projectID)
}

// RenderSearchResults lists the hits with their score and a text snippet
func RenderSearchResults(query string, results []entity.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf(MsgNoResults, query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 %d résultat(s) pour « %s »\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&sb, "\n%d. %s (score %.2f)\n", i+1, describe(r.Filename, r.Title, r.PageNumbers), r.Score)
		sb.WriteString(truncate(strings.TrimSpace(r.Text), snippetLength))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderAnswer formats the answer followed by its distinct sources
func RenderAnswer(answer *entity.Answer) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(answer.Answer))

	seen := make(map[string]bool)
	var sources []string
	for _, c := range answer.Contexts {
		label := describe(c.Filename, c.Title, c.PageNumbers)
		if seen[label] {
			continue
		}
		seen[label] = true
		sources = append(sources, label)
	}

	if len(sources) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(MsgAnswerSources)
		for _, s := range sources {
			sb.WriteString("\n• ")
			sb.WriteString(s)
		}
	}
	return sb.String()
}

// SplitMessage cuts text into parts of at most limit runes, preferring
// line breaks as cut points.
func SplitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

func describe(filename, title *string, pages []int) string {
	name := "Document"
	if filename != nil && *filename != "" {
		name = *filename
	}
	if title != nil && *title != "" {
		name += " › " + *title
	}
	if len(pages) > 0 {
		ps := make([]string, len(pages))
		for i, p := range pages {
			ps[i] = fmt.Sprint(p)
		}
		name += " (p. " + strings.Join(ps, ", ") + ")"
	}
	return name
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
