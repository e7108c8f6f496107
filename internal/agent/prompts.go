package agent

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"carbot_backend/internal/session"
)

const classifierSystemInstruction = `Eres el clasificador de intenciones de un asistente comercial de Kavak,
una plataforma mexicana de compra y venta de autos seminuevos.

Analiza el último mensaje del usuario junto con el historial de la
conversación y produce UNA decisión en JSON con el esquema indicado.

Acciones disponibles:
- search_cars: el usuario busca vehículos. Extrae make, model, year,
  price_max (presupuesto máximo en MXN) y km_max cuando aparezcan.
- get_car_details: el usuario pregunta por un vehículo concreto. Usa
  stock_id solo si el usuario da un número de ID explícito.
- get_financing_options: el usuario pregunta por financiamiento,
  mensualidades o enganche. Extrae down_payment (porcentaje de
  enganche), annual_rate y duration (plazo en meses) si los menciona.
- get_kavak_info: preguntas sobre Kavak como empresa (sucursales,
  garantías, proceso de compra o venta). Pon la pregunta en info_query.
- respond: saludos, agradecimientos o comentarios que no requieren
  datos. Escribe la respuesta en message, en español.
- clarify: la petición es ambigua o le faltan datos. Escribe la
  pregunta aclaratoria en message y lista los campos que faltan en
  missing_information.
- out_of_scope: el tema no tiene relación con autos, financiamiento ni
  Kavak. Explica brevemente en reason.

Reglas:
- Nunca inventes stock_id, precios ni datos del catálogo.
- Si el usuario se refiere a "ese", "el primero" o "el más barato" sin
  que haya contexto, elige clarify.
- Responde únicamente con el JSON de la decisión.`

// decisionSchema constrains the model's output to the Decision shape.
func decisionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"action": {
				Type: genai.TypeString,
				Enum: []string{
					string(ActionSearchCars),
					string(ActionGetCarDetails),
					string(ActionGetFinancingOptions),
					string(ActionGetCompanyInfo),
					string(ActionRespond),
					string(ActionClarify),
					string(ActionOutOfScope),
				},
			},
			"make":                {Type: genai.TypeString},
			"model":               {Type: genai.TypeString},
			"year":                {Type: genai.TypeInteger},
			"price_max":           {Type: genai.TypeNumber},
			"km_max":              {Type: genai.TypeInteger},
			"stock_id":            {Type: genai.TypeInteger},
			"down_payment":        {Type: genai.TypeNumber},
			"annual_rate":         {Type: genai.TypeNumber},
			"duration":            {Type: genai.TypeInteger},
			"info_query":          {Type: genai.TypeString},
			"message":             {Type: genai.TypeString},
			"missing_information": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"reason":              {Type: genai.TypeString},
		},
		Required: []string{"action"},
	}
}

// conversationPrompt renders the session history plus the new message into
// the classifier's user prompt.
func conversationPrompt(text string, conv *session.ConversationContext) string {
	var b strings.Builder

	if conv != nil && len(conv.Turns) > 0 {
		b.WriteString("Historial de la conversación:\n")
		for _, turn := range conv.Turns {
			role := "Usuario"
			if turn.Role == session.RoleAssistant {
				role = "Asistente"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, turn.Text)
		}
		b.WriteString("\n")
	}

	if conv != nil {
		if conv.SelectedStockID != nil {
			fmt.Fprintf(&b, "Vehículo en discusión: stock_id %d\n", *conv.SelectedStockID)
		}
		if len(conv.LastSearchResults) > 0 {
			fmt.Fprintf(&b, "IDs de la última búsqueda: %v\n", conv.LastSearchResults)
		}
		if conv.SelectedStockID != nil || len(conv.LastSearchResults) > 0 {
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "Mensaje del usuario: %s", text)
	return b.String()
}

const humanizerSystemInstruction = `Eres un asesor comercial de Kavak, cálido y profesional.
Reescribe la respuesta del sistema en un tono natural y cercano, en
español de México. Conserva todos los datos: IDs, precios, kilómetros,
plazos y montos deben quedar exactamente como están. No inventes
información nueva ni ofrezcas nada que no esté en la respuesta.
Responde solo con el texto reescrito, sin comillas ni prefijos.`

func humanizePrompt(userText string, result ActionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mensaje del usuario: %s\n\n", userText)
	fmt.Fprintf(&b, "Respuesta del sistema: %s", result.Message)
	return b.String()
}
