package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/leverege/meetingmind/pkg/model"
)

func TestContractConstraints(t *testing.T) {
	tests := []struct {
		name     string
		contract model.AnswerContract
		mode     model.SSOTMode
		evidence bool
	}{
		{"extractive fact", model.ContractExtractiveFact, model.SSOTNone, true},
		{"product explanation", model.ContractProductExplanation, model.SSOTDescriptive, false},
		{"product spec", model.ContractProductSpec, model.SSOTAuthoritative, true},
		{"general response", model.ContractGeneralResponse, model.SSOTNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := tt.contract.Constraints()
			gt.NoError(t, err)
			gt.V(t, cs.Mode).Equal(tt.mode)
			gt.V(t, cs.RequiresEvidence).Equal(tt.evidence)
		})
	}

	t.Run("unknown contract", func(t *testing.T) {
		_, err := model.AnswerContract("PRICING_TOPIC").Constraints()
		gt.Error(t, err)
		gt.B(t, errors.Is(err, model.ErrInvalidContract)).True()
	})
}

func TestChainValidate(t *testing.T) {
	t.Run("empty chain rejected", func(t *testing.T) {
		ch := &model.ContractChain{Primary: model.ContractExtractiveFact}
		gt.Error(t, ch.Validate())
	})

	t.Run("single step is valid", func(t *testing.T) {
		ch := model.SingleChain(model.ContractPatternAnalysis)
		gt.NoError(t, ch.Validate())
	})

	t.Run("extractive to descriptive allowed", func(t *testing.T) {
		ch := &model.ContractChain{
			Primary: model.ContractExtractiveFact,
			Steps:   []model.AnswerContract{model.ContractExtractiveFact, model.ContractProductExplanation},
		}
		gt.NoError(t, ch.Validate())
	})

	t.Run("extractive to authoritative rejected", func(t *testing.T) {
		ch := &model.ContractChain{
			Primary: model.ContractExtractiveFact,
			Steps:   []model.AnswerContract{model.ContractExtractiveFact, model.ContractProductSpec},
		}
		err := ch.Validate()
		gt.Error(t, err)
		gt.B(t, errors.Is(err, model.ErrAuthorityEscalate)).True()
	})

	t.Run("descriptive to authoritative rejected", func(t *testing.T) {
		ch := &model.ContractChain{
			Primary: model.ContractProductExplanation,
			Steps:   []model.AnswerContract{model.ContractProductExplanation, model.ContractProductSpec},
		}
		err := ch.Validate()
		gt.Error(t, err)
		gt.B(t, errors.Is(err, model.ErrAuthorityEscalate)).True()
	})

	t.Run("authority may decrease", func(t *testing.T) {
		ch := &model.ContractChain{
			Primary: model.ContractProductSpec,
			Steps:   []model.AnswerContract{model.ContractProductSpec, model.ContractExtractiveFact},
		}
		gt.NoError(t, ch.Validate())
	})
}

func TestIntentValidate(t *testing.T) {
	for _, intent := range []model.Intent{
		model.IntentSingleMeeting, model.IntentMultiMeeting,
		model.IntentProductKnowledge, model.IntentExternalResearch,
		model.IntentDocumentSearch, model.IntentGeneralHelp,
		model.IntentRefuse, model.IntentClarify,
	} {
		gt.NoError(t, intent.Validate())
	}

	gt.Error(t, model.Intent("billing").Validate())
}
