package transform

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"

	"kyc-intake/internal/kyc/kyctest"
	"kyc-intake/internal/kyc/models"
)

type TransformSuite struct {
	suite.Suite
}

func TestTransformSuite(t *testing.T) {
	suite.Run(t, new(TransformSuite))
}

func (s *TransformSuite) transform(m *models.FormModel) TaskVariableMap {
	vars, err := Transform(m)
	s.Require().NoError(err)
	return vars
}

func (s *TransformSuite) TestIndividualScenario() {
	vars := s.transform(kyctest.ValidIndividual())

	s.Equal(Variable{Value: "Jane Doe", Type: TypeString}, vars["fullName"])
	s.Equal(Variable{Value: false, Type: TypeBoolean}, vars["usPerson"])
	s.Equal(Variable{Value: "A123", Type: TypeString}, vars["alienRegistrationNumber"])
	s.Equal(Variable{Value: "passport", Type: TypeString}, vars["idType"])
	s.Equal(Variable{Value: "salary", Type: TypeString}, vars["sourceOfFunds"])
	s.NotContains(vars, "ssn")

	s.Run("no entity or ownership keys", func() {
		for _, key := range []string{"legalName", "entityType", "registrationNumber", "businessAddress", "hasOwners", "owners", "controlPerson"} {
			s.NotContains(vars, key)
		}
	})

	s.Run("no detail keys for unanswered or negative questions", func() {
		for _, key := range []string{"businessDetails", "sanctionedJurisdictionDetails", "foreignBeneficialOwnersDetails",
			"internationalWiresDetails", "otherSource", "businessRevenuesDetails", "thirdPartyFundingDetails",
			"largeCashActivityDetails", "foreignBeneficialOwnersOrPEPsDetails"} {
			s.NotContains(vars, key)
		}
	})
}

func (s *TransformSuite) TestEntityComposites() {
	vars := s.transform(kyctest.ValidEntity())

	s.Equal(Variable{Value: "Acme Holdings LLC", Type: TypeString}, vars["legalName"])
	s.Equal(Variable{Value: true, Type: TypeBoolean}, vars["hasOwners"])
	s.NotContains(vars, "fullName")

	owners, ok := vars.String("owners")
	s.Require().True(ok)
	s.JSONEq(`[{"name":"John Roe","dateOfBirth":"1975-09-30","address":"9 Elm Road, Oakland","ownershipPercentage":60}]`, owners)

	controlPerson, ok := vars.String("controlPerson")
	s.Require().True(ok)
	s.JSONEq(`{"name":"Mary Major","title":"CEO","dateOfBirth":"1980-02-14","address":"12 Pine Avenue, Berkeley"}`, controlPerson)

	business, ok := vars.String("businessDetails")
	s.Require().True(ok)
	s.Equal(`{"industry":"Wholesale","naicsCode":"423430","transactionTypes":["ACH","Wires"],"monthlyVolume":"50-250k","internationalTransactions":false}`, business)

	_, ok = vars.String("businessRevenuesDetails")
	s.True(ok)
}

func (s *TransformSuite) TestOmissionLaw() {
	s.Run("stale details behind a negative answer are dropped", func() {
		m := kyctest.ValidIndividual()
		m.Sanctions.SanctionedJurisdictionDetails = &models.SanctionedJurisdictionDetails{NatureOfInteraction: "Trade"}
		m.OngoingMonitoring.ThirdPartyFundingDetails = &models.ThirdPartyFundingDetails{ThirdPartyName: "Uncle Bob"}

		vars := s.transform(m)
		s.Equal(Variable{Value: false, Type: TypeBoolean}, vars["sanctionedJurisdiction"])
		s.NotContains(vars, "sanctionedJurisdictionDetails")
		s.NotContains(vars, "thirdPartyFundingDetails")
	})

	s.Run("details follow a positive answer", func() {
		m := kyctest.ValidIndividual()
		m.Sanctions.SanctionedJurisdiction = models.Bool(true)
		m.Sanctions.SanctionedJurisdictionDetails = &models.SanctionedJurisdictionDetails{
			NatureOfInteraction: "Trade",
			Counterparties:      []string{"Acme"},
		}

		got, ok := s.transform(m).String("sanctionedJurisdictionDetails")
		s.Require().True(ok)
		s.Equal(`{"natureOfInteraction":"Trade","counterparties":["Acme"]}`, got)
	})

	s.Run("positive answer without a record emits nothing", func() {
		m := kyctest.ValidIndividual()
		m.OngoingMonitoring.LargeCashActivity = models.Bool(true)

		vars := s.transform(m)
		s.Contains(vars, "largeCashActivity")
		s.NotContains(vars, "largeCashActivityDetails")
	})

	s.Run("other source only for source other", func() {
		m := kyctest.ValidIndividual()
		m.SourceOfFunds.OtherSource = "Lottery"
		s.NotContains(s.transform(m), "otherSource")

		m.SourceOfFunds.Source = models.FundsSourceOther
		s.Equal(Variable{Value: "Lottery", Type: TypeString}, s.transform(m)["otherSource"])
	})

	s.Run("owners need a positive ownership answer", func() {
		m := kyctest.ValidEntity()
		m.BeneficialOwnership.HasOwners = models.Bool(false)

		vars := s.transform(m)
		s.NotContains(vars, "owners")
		s.Contains(vars, "controlPerson")
	})

	s.Run("business details only for operating accounts", func() {
		m := kyctest.ValidEntity()
		m.Relationship.Purpose = models.PurposeTradeFinance
		s.NotContains(s.transform(m), "businessDetails")
	})

	s.Run("identity block must match customer type", func() {
		m := kyctest.ValidIndividual()
		m.CustomerType = models.CustomerTypeEntity

		vars := s.transform(m)
		s.NotContains(vars, "fullName")
		s.Equal(Variable{Value: "entity", Type: TypeString}, vars["customerType"])
	})
}

func (s *TransformSuite) TestIncompleteFormDoesNotFail() {
	vars := s.transform(&models.FormModel{})

	s.Len(vars, 1)
	s.Equal(Variable{Value: "{}", Type: TypeString}, vars[KeyCompleteFormData])
}

func (s *TransformSuite) TestNilForm() {
	vars, err := Transform(nil)
	s.ErrorIs(err, ErrNoFormData)
	s.Nil(vars)
}

func (s *TransformSuite) TestIdempotent() {
	for name, build := range map[string]func() *models.FormModel{
		"individual": kyctest.ValidIndividual,
		"entity":     kyctest.ValidEntity,
	} {
		s.Run(name, func() {
			m := build()
			first, err := json.Marshal(s.transform(m))
			s.Require().NoError(err)
			second, err := json.Marshal(s.transform(m))
			s.Require().NoError(err)
			s.Equal(string(first), string(second))
		})
	}
}

func (s *TransformSuite) TestBackupRoundTrips() {
	for name, m := range map[string]*models.FormModel{
		"individual": kyctest.ValidIndividual(),
		"entity":     kyctest.ValidEntity(),
	} {
		s.Run(name, func() {
			raw, ok := s.transform(m).String(KeyCompleteFormData)
			s.Require().True(ok)

			var decoded models.FormModel
			s.Require().NoError(json.Unmarshal([]byte(raw), &decoded))
			s.Equal(m, &decoded)
		})
	}
}

const receivedEntityForm = `{"customerType":"entity",` +
	`"entity":{"legalName":"Acme & Sons","entityType":"LLC","registrationNumber":"","businessAddress":"1 Main St"},` +
	`"beneficialOwnership":{"hasOwners":false,"owners":[]},` +
	`"relationship":{"purpose":"businessOperating","businessDetails":{"industry":"Retail","transactionTypes":[],` +
	`"monthlyVolume":"<10k","internationalTransactions":false,"countries":[]}},` +
	`"sanctions":{"sanctionedJurisdiction":false,"foreignBeneficialOwners":false,"internationalWires":false},` +
	`"sourceOfFunds":{"source":"salary"},` +
	`"ongoingMonitoring":{"thirdPartyFunding":false,"largeCashActivity":false,"foreignBeneficialOwnersOrPEPs":false},` +
	`"referralCode":"spring-campaign"}`

func (s *TransformSuite) TestBackupKeepsReceivedForm() {
	var sub models.Submission
	s.Require().NoError(json.Unmarshal([]byte(`{"taskId":"task-1","formData":`+receivedEntityForm+`}`), &sub))
	s.Require().NotNil(sub.FormData)

	vars, err := Transform(sub.FormData, WithBackup(sub.RawFormData))
	s.Require().NoError(err)
	raw, ok := vars.String(KeyCompleteFormData)
	s.Require().True(ok)

	s.Run("byte for byte", func() {
		s.Equal(receivedEntityForm, raw)
	})

	s.Run("decodes to the received document", func() {
		var want, got map[string]any
		s.Require().NoError(json.Unmarshal([]byte(receivedEntityForm), &want))
		s.Require().NoError(json.Unmarshal([]byte(raw), &got))
		s.Equal(want, got)
	})
}

func (s *TransformSuite) TestBackupFallbackDoesNotEscapeHTML() {
	m := kyctest.ValidEntity()
	m.Entity.LegalName = "Acme & Sons <EU>"

	for name, opts := range map[string][]Option{
		"no backup":      nil,
		"invalid backup": {WithBackup([]byte(`{"customerType":`))},
	} {
		s.Run(name, func() {
			vars, err := Transform(m, opts...)
			s.Require().NoError(err)
			raw, ok := vars.String(KeyCompleteFormData)
			s.Require().True(ok)
			s.Contains(raw, `"legalName":"Acme & Sons <EU>"`)
			s.NotContains(raw, `\u003c`)
		})
	}
}

func (s *TransformSuite) TestCompositesDoNotEscapeHTML() {
	m := kyctest.ValidEntity()
	m.Relationship.BusinessDetails.MonthlyVolume = models.MonthlyVolumeUnder10k

	business, ok := s.transform(m).String("businessDetails")
	s.Require().True(ok)
	s.Contains(business, `"monthlyVolume":"<10k"`)
}

func (s *TransformSuite) TestEmittedKeysAreDocumented() {
	s.Equal([]string{
		"customerType", "fullName", "dateOfBirth", "residentialAddress", "nationality", "usPerson", "ssn",
		"alienRegistrationNumber", "idType", "legalName", "entityType", "registrationNumber", "businessAddress",
		"hasOwners", "owners", "controlPerson", "purpose", "businessDetails",
		"sanctionedJurisdiction", "sanctionedJurisdictionDetails", "foreignBeneficialOwners",
		"foreignBeneficialOwnersDetails", "internationalWires", "internationalWiresDetails",
		"sourceOfFunds", "otherSource", "businessRevenuesDetails",
		"thirdPartyFunding", "thirdPartyFundingDetails", "largeCashActivity", "largeCashActivityDetails",
		"foreignBeneficialOwnersOrPEPs", "foreignBeneficialOwnersOrPEPsDetails", "completeFormData",
	}, Keys())

	documented := map[string]bool{}
	for _, k := range Keys() {
		documented[k] = true
	}
	for _, m := range []*models.FormModel{kyctest.ValidIndividual(), kyctest.ValidEntity()} {
		for key := range s.transform(m) {
			s.True(documented[key], key)
		}
	}
}
