package agent

import (
	"context"
	"fmt"

	catalogservice "carbot_backend/internal/catalog/service"
	"carbot_backend/internal/financing"
	"carbot_backend/internal/session"
	"carbot_backend/platform/logger"
)

// User-facing messages. The humanizer may rewrite them; they must stand on
// their own when it is disabled.
const (
	msgProcessingError = "Lo siento, ocurrió un problema al procesar tu solicitud. Por favor, intenta de nuevo."
	msgOutOfScope      = "Lo siento, solo puedo ayudarte con la compra de autos seminuevos, su financiamiento e información de Kavak."
	msgDefaultClarify  = "¿Podrías proporcionar más información?"
	msgWhichVehicle    = "¿De cuál de los vehículos encontrados te gustaría saber más? Indícame el ID o dime marca y modelo."
	msgNoCompanyInfo   = "No pude encontrar información de la empresa para tu consulta en este momento."
)

type handlerFunc func(ctx context.Context, decision Decision, conv *session.ConversationContext) ActionResult

// Dispatcher maps a Decision's action tag to its handler and executes it
// against the catalog and financing services. It is stateless between calls
// except for what handlers read and write on the conversation context.
type Dispatcher struct {
	catalog  *catalogservice.Service
	info     InfoLookup
	log      *logger.Logger
	handlers map[Action]handlerFunc
}

// NewDispatcher builds the action table.
func NewDispatcher(catalog *catalogservice.Service, info InfoLookup, log *logger.Logger) *Dispatcher {
	d := &Dispatcher{catalog: catalog, info: info, log: log}
	d.handlers = map[Action]handlerFunc{
		ActionSearchCars:          d.handleSearchCars,
		ActionGetCarDetails:       d.handleGetCarDetails,
		ActionGetFinancingOptions: d.handleGetFinancingOptions,
		ActionGetCompanyInfo:      d.handleGetCompanyInfo,
		ActionRespond:             d.handleRespond,
		ActionClarify:             d.handleClarify,
		ActionOutOfScope:          d.handleOutOfScope,
	}
	return d
}

// Dispatch executes the decision's handler. Unknown actions become a failed
// result, never a panic.
func (d *Dispatcher) Dispatch(ctx context.Context, decision Decision, conv *session.ConversationContext) ActionResult {
	handler, ok := d.handlers[decision.Action]
	if !ok {
		d.log.Warn("unsupported action", "action", string(decision.Action))
		return ActionResult{
			Action:  decision.Action,
			Message: msgProcessingError,
			Reason:  "unsupported action",
		}
	}
	return handler(ctx, decision, conv)
}

func (d *Dispatcher) handleSearchCars(_ context.Context, decision Decision, conv *session.ConversationContext) ActionResult {
	result, err := d.catalog.Search(catalogservice.SearchParams{
		Make:          decision.Make,
		Model:         decision.Model,
		Year:          decision.Year,
		PriceMax:      decision.PriceMax,
		KilometersMax: decision.KilometersMax,
	})
	if err != nil {
		d.log.Error("catalog search failed", "error", err.Error())
		return ActionResult{Action: decision.Action, Message: msgProcessingError, Reason: err.Error()}
	}

	stockIDs := make([]int, 0, len(result.Vehicles))
	for _, v := range result.Vehicles {
		stockIDs = append(stockIDs, v.StockID)
	}
	conv.SetSearchResults(stockIDs)
	conv.SelectedStockID = nil

	return ActionResult{
		Success:      true,
		Action:       decision.Action,
		Message:      searchMessage(decision, len(result.Vehicles), result.CorrectedMake, result.CorrectedModel),
		Vehicles:     summarizeAll(result.Vehicles),
		FuzzyMatched: result.FuzzyMatched,
	}
}

func searchMessage(decision Decision, count int, correctedMake, correctedModel string) string {
	switch {
	case count == 0:
		criteria := ""
		if decision.Make != "" {
			criteria = decision.Make
		}
		if decision.Model != "" {
			if criteria != "" {
				criteria += " "
			}
			criteria += decision.Model
		}
		if criteria != "" {
			return fmt.Sprintf("No encontré %s con esos criterios. ¿Te gustaría buscar algo diferente?", criteria)
		}
		return "No encontré vehículos con esos criterios. ¿Te gustaría buscar algo diferente?"
	case count == 1:
		return "¡Encontré 1 vehículo que coincide con tu búsqueda!"
	default:
		message := fmt.Sprintf("¡Encontré %d vehículos que coinciden con tu búsqueda!", count)
		if correctedMake != "" || correctedModel != "" {
			message += " (Busqué " + joinNonEmpty(correctedMake, correctedModel) + ", espero no equivocarme.)"
		}
		return message
	}
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}

func (d *Dispatcher) handleGetCarDetails(_ context.Context, decision Decision, conv *session.ConversationContext) ActionResult {
	stockID, resolution := resolveVehicle(decision, conv)
	switch resolution {
	case resolvedAmbiguous:
		return clarifyResult(decision, msgWhichVehicle, nil)
	case resolvedNone:
		return clarifyResult(decision, "¿Qué vehículo te interesa? Puedes decirme la marca y el modelo o buscar primero.", []string{"make", "model"})
	}

	vehicle, err := d.catalog.GetByStockID(stockID)
	if err != nil {
		return ActionResult{
			Action:  decision.Action,
			Message: fmt.Sprintf("No encontré un vehículo con ID %d. ¿Quieres que busquemos otra opción?", stockID),
			Reason:  "vehicle not found",
		}
	}

	conv.SelectVehicle(vehicle.StockID)

	extras := ""
	if vehicle.Bluetooth {
		extras += " Cuenta con Bluetooth."
	}
	if vehicle.CarPlay {
		extras += " Cuenta con CarPlay."
	}

	return ActionResult{
		Success: true,
		Action:  decision.Action,
		Message: fmt.Sprintf(
			"Detalles del vehículo %d: %s %s %s %d, %s km, $%s MXN.%s",
			vehicle.StockID, vehicle.Make, vehicle.Model, vehicle.Version, vehicle.Year,
			formatThousands(vehicle.Kilometers), formatThousands(int(vehicle.PriceMXN)), extras,
		),
		Vehicles: []VehicleSummary{summarize(vehicle)},
	}
}

func (d *Dispatcher) handleGetFinancingOptions(_ context.Context, decision Decision, conv *session.ConversationContext) ActionResult {
	stockID, resolution := resolveVehicle(decision, conv)
	switch resolution {
	case resolvedAmbiguous:
		return clarifyResult(decision, "¿Cuál de los vehículos encontrados quieres financiar? Indícame el ID o dime marca y modelo.", nil)
	case resolvedNone:
		return ActionResult{
			Action:  decision.Action,
			Message: "¿Qué vehículo te interesa financiar? Puedes decirme la marca y el modelo.",
			Clarify: true,
			Reason:  "no vehicle context",
		}
	}

	vehicle, err := d.catalog.GetByStockID(stockID)
	if err != nil {
		return ActionResult{
			Action:  decision.Action,
			Message: fmt.Sprintf("No encontré un vehículo con ID %d para cotizar financiamiento.", stockID),
			Reason:  "vehicle not found",
		}
	}

	downPercent := financing.DefaultDownPaymentPercent
	if decision.DownPaymentPercent != nil {
		downPercent = *decision.DownPaymentPercent
	}
	rate := financing.DefaultAnnualRatePercent
	if decision.AnnualRatePercent != nil {
		rate = *decision.AnnualRatePercent
	}

	var quotes []financing.Quote
	if decision.TermMonths > 0 {
		quote, err := financing.Compute(vehicle.PriceMXN, rate, decision.TermMonths, downPercent)
		if err != nil {
			return ActionResult{Action: decision.Action, Message: msgProcessingError, Reason: err.Error()}
		}
		quotes = []financing.Quote{quote}
	} else {
		var err error
		quotes, err = financing.Options(vehicle.PriceMXN, downPercent)
		if err != nil {
			return ActionResult{Action: decision.Action, Message: msgProcessingError, Reason: err.Error()}
		}
	}

	conv.SelectVehicle(vehicle.StockID)

	return ActionResult{
		Success: true,
		Action:  decision.Action,
		Message: fmt.Sprintf(
			"Opciones de financiamiento para %s %s %d con precio $%s MXN (enganche %.0f%%).",
			vehicle.Make, vehicle.Model, vehicle.Year, formatThousands(int(vehicle.PriceMXN)), downPercent,
		),
		Vehicles: []VehicleSummary{summarize(vehicle)},
		Financing: &FinancingInfo{
			VehiclePrice: vehicle.PriceMXN,
			StockID:      vehicle.StockID,
			Options:      quotes,
		},
	}
}

func (d *Dispatcher) handleGetCompanyInfo(_ context.Context, decision Decision, _ *session.ConversationContext) ActionResult {
	query := decision.InfoQuery
	if query == "" {
		query = "información general"
	}

	answer, err := d.info.Lookup(query)
	if err != nil || answer == "" {
		if err != nil {
			d.log.Warn("company info lookup failed", "error", err.Error())
		}
		return ActionResult{
			Action:  decision.Action,
			Message: msgNoCompanyInfo,
			Reason:  "info lookup failed",
		}
	}

	return ActionResult{
		Success: true,
		Action:  decision.Action,
		Message: answer,
	}
}

func (d *Dispatcher) handleRespond(_ context.Context, decision Decision, _ *session.ConversationContext) ActionResult {
	if decision.Message == "" {
		return ActionResult{
			Action:  decision.Action,
			Message: msgProcessingError,
			Reason:  "respond action without message",
		}
	}
	return ActionResult{Success: true, Action: decision.Action, Message: decision.Message}
}

func (d *Dispatcher) handleClarify(_ context.Context, decision Decision, _ *session.ConversationContext) ActionResult {
	message := decision.Message
	if message == "" {
		message = msgDefaultClarify
	}
	return clarifyResult(decision, message, decision.MissingFields)
}

func (d *Dispatcher) handleOutOfScope(_ context.Context, decision Decision, _ *session.ConversationContext) ActionResult {
	return ActionResult{
		Success: true,
		Action:  decision.Action,
		Message: msgOutOfScope,
		Reason:  decision.Reason,
	}
}

func clarifyResult(decision Decision, message string, missing []string) ActionResult {
	return ActionResult{
		Success:       true,
		Action:        decision.Action,
		Message:       message,
		Clarify:       true,
		MissingFields: missing,
	}
}

type vehicleResolution int

const (
	resolvedOK vehicleResolution = iota
	resolvedAmbiguous
	resolvedNone
)

// resolveVehicle picks the vehicle a reference-style decision talks about:
// explicit stock ID first, then the context's selected vehicle, then the
// previous search when it has exactly one hit. Multiple prior hits are
// ambiguous and become a clarification, never a guess.
func resolveVehicle(decision Decision, conv *session.ConversationContext) (int, vehicleResolution) {
	if decision.StockID != 0 {
		return decision.StockID, resolvedOK
	}
	if conv.SelectedStockID != nil {
		return *conv.SelectedStockID, resolvedOK
	}
	switch len(conv.LastSearchResults) {
	case 0:
		return 0, resolvedNone
	case 1:
		return conv.LastSearchResults[0], resolvedOK
	default:
		return 0, resolvedAmbiguous
	}
}

func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
