package contract

import (
	"github.com/leverege/meetingmind/pkg/model"
)

// layerTable maps each intent to its fixed data-scope permissions. Pure and
// table-driven: no I/O, and later components may consult the result but
// never use it to change intent or contract.
var layerTable = map[model.Intent]model.ContextLayers{
	model.IntentSingleMeeting:    {SingleMeeting: true},
	model.IntentMultiMeeting:     {MultiMeeting: true},
	model.IntentProductKnowledge: {ProductSSOT: true},
	model.IntentExternalResearch: {ProductSSOT: true, Documents: true},
	model.IntentDocumentSearch:   {Documents: true},
	model.IntentGeneralHelp:      {SingleMeeting: true, ProductSSOT: true},
	model.IntentRefuse:           {},
	model.IntentClarify:          {},
}

// ComputeContextLayers derives the enabled data scopes from the intent
func ComputeContextLayers(intent model.Intent) model.ContextLayers {
	return layerTable[intent]
}
