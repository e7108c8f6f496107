package agent

import (
	"strings"

	"carbot_backend/internal/session"
	"carbot_backend/platform/textnorm"
)

// Phrases users write when they mean "one of the cars we just talked
// about". Compared against the folded message text.
var referencePhrases = []string{
	"mas barato",
	"mas caro",
	"el primero",
	"el segundo",
	"el tercero",
	"el ultimo",
	"la primera",
	"ese",
	"esa",
	"este",
	"esta",
	"el mejor",
	"cualquiera de esos",
}

// applyClarifyGuards rewrites decisions that would act on context the
// session does not have. The classifier sees history, but it can still emit
// a financing or reference decision against an empty session; these guards
// keep such turns conversational instead of failing downstream.
func applyClarifyGuards(decision Decision, text string, conv *session.ConversationContext) Decision {
	hasContext := conv.SelectedStockID != nil || len(conv.LastSearchResults) > 0

	if decision.Action == ActionGetFinancingOptions && decision.StockID == 0 && !hasContext {
		return Decision{
			Action:        ActionClarify,
			Message:       "¿Qué vehículo te interesa financiar? Puedes decirme la marca y el modelo.",
			MissingFields: []string{"stock_id"},
		}
	}

	if decision.Action == ActionGetCarDetails && decision.StockID == 0 && !hasContext && referencesPrior(text) {
		return Decision{
			Action:  ActionClarify,
			Message: "¿Te refieres a algún vehículo de una búsqueda previa? Si no, dime qué marca, modelo o presupuesto tienes en mente.",
		}
	}

	return decision
}

func referencesPrior(text string) bool {
	folded := textnorm.Fold(text)
	for _, phrase := range referencePhrases {
		if strings.Contains(folded, phrase) {
			return true
		}
	}
	return false
}
