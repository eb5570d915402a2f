package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type SetFieldSuite struct {
	suite.Suite
}

func TestSetFieldSuite(t *testing.T) {
	suite.Run(t, new(SetFieldSuite))
}

func (s *SetFieldSuite) TestScalars() {
	s.Run("string leaf allocates parent record", func() {
		m := &FormModel{}
		s.Require().NoError(m.SetField("individual.fullName", "Jane Doe"))
		s.Require().NotNil(m.Individual)
		s.Equal("Jane Doe", m.Individual.FullName)
	})

	s.Run("named string type", func() {
		m := &FormModel{}
		s.Require().NoError(m.SetField("customerType", "entity"))
		s.Equal(CustomerTypeEntity, m.CustomerType)
	})

	s.Run("tri-state boolean", func() {
		m := &FormModel{}
		s.Require().NoError(m.SetField("individual.usPerson", false))
		s.Require().NotNil(m.Individual.USPerson)
		s.False(*m.Individual.USPerson)
	})

	s.Run("nested detail record", func() {
		m := &FormModel{}
		s.Require().NoError(m.SetField("sourceOfFunds.businessRevenuesDetails.highRiskSectors", true))
		s.True(IsTrue(m.SourceOfFunds.BusinessRevenuesDetails.HighRiskSectors))
	})
}

func (s *SetFieldSuite) TestNumbersAndLists() {
	s.Run("integer widens to float", func() {
		m := &FormModel{}
		s.Require().NoError(m.SetField("beneficialOwnership.owners.0.ownershipPercentage", 40))
		s.Require().NotNil(m.BeneficialOwnership.Owners[0].OwnershipPercentage)
		s.InDelta(40.0, *m.BeneficialOwnership.Owners[0].OwnershipPercentage, 0.0001)
	})

	s.Run("index grows owner list", func() {
		m := &FormModel{}
		s.Require().NoError(m.SetField("beneficialOwnership.owners.0.name", "A"))
		s.Require().NoError(m.SetField("beneficialOwnership.owners.2.name", "C"))
		s.Len(m.BeneficialOwnership.Owners, 3)
		s.Equal("A", m.BeneficialOwnership.Owners[0].Name)
		s.Equal("", m.BeneficialOwnership.Owners[1].Name)
		s.Equal("C", m.BeneficialOwnership.Owners[2].Name)
	})

	s.Run("string list", func() {
		m := &FormModel{}
		s.Require().NoError(m.SetField("relationship.businessDetails.transactionTypes", []string{"ACH", "Wires"}))
		s.Equal([]string{"ACH", "Wires"}, m.Relationship.BusinessDetails.TransactionTypes)
	})

	s.Run("decoded JSON list", func() {
		m := &FormModel{}
		s.Require().NoError(m.SetField("sanctions.internationalWiresDetails.currencies", []any{"USD", "EUR"}))
		s.Equal([]string{"USD", "EUR"}, m.Sanctions.InternationalWiresDetails.Currencies)
	})
}

func (s *SetFieldSuite) TestRejections() {
	s.Run("unknown field leaves model untouched", func() {
		m := &FormModel{}
		err := m.SetField("individual.favouriteColour", "blue")
		s.ErrorIs(err, ErrUnknownField)
		s.Nil(m.Individual)
	})

	s.Run("type mismatch leaves model untouched", func() {
		m := &FormModel{}
		err := m.SetField("individual.usPerson", "yes")
		s.ErrorIs(err, ErrTypeMismatch)
		s.Nil(m.Individual)
	})

	s.Run("owner index beyond limit", func() {
		m := &FormModel{}
		err := m.SetField("beneficialOwnership.owners.4.name", "E")
		s.ErrorIs(err, ErrUnknownField)
	})

	s.Run("indexing a string list", func() {
		m := &FormModel{}
		err := m.SetField("relationship.businessDetails.countries.0", "DE")
		s.ErrorIs(err, ErrUnknownField)
	})

	s.Run("whole record cannot be assigned", func() {
		m := &FormModel{}
		err := m.SetField("individual", "Jane")
		s.ErrorIs(err, ErrTypeMismatch)
	})

	s.Run("empty path", func() {
		m := &FormModel{}
		s.ErrorIs(m.SetField("", "x"), ErrUnknownField)
	})
}

func (s *SetFieldSuite) TestNilClears() {
	m := &FormModel{}
	s.Require().NoError(m.SetField("sourceOfFunds.otherSource", "lottery"))
	s.Require().NoError(m.SetField("sourceOfFunds.otherSource", nil))
	s.Equal("", m.SourceOfFunds.OtherSource)

	s.Require().NoError(m.SetField("sanctions.sanctionedJurisdictionDetails.natureOfInteraction", "trade"))
	s.Require().NoError(m.SetField("sanctions.sanctionedJurisdictionDetails", nil))
	s.Nil(m.Sanctions.SanctionedJurisdictionDetails)
}
