package validation

import "kyc-intake/internal/kyc/models"

// Nil-safe record accessors used by the rule table.

func individualOf(m *models.FormModel) *models.Individual { return m.Individual }

func entityOf(m *models.FormModel) *models.Entity { return m.Entity }

func controlPersonOf(m *models.FormModel) *models.ControlPerson {
	if bo := m.BeneficialOwnership; bo != nil {
		return bo.ControlPerson
	}
	return nil
}

func businessDetailsOf(m *models.FormModel) *models.BusinessDetails {
	if r := m.Relationship; r != nil {
		return r.BusinessDetails
	}
	return nil
}

func sanctionedJurisdictionOf(m *models.FormModel) *models.SanctionedJurisdictionDetails {
	if s := m.Sanctions; s != nil {
		return s.SanctionedJurisdictionDetails
	}
	return nil
}

func foreignOwnersOf(m *models.FormModel) *models.ForeignBeneficialOwnersDetails {
	if s := m.Sanctions; s != nil {
		return s.ForeignBeneficialOwnersDetails
	}
	return nil
}

func wiresOf(m *models.FormModel) *models.InternationalWiresDetails {
	if s := m.Sanctions; s != nil {
		return s.InternationalWiresDetails
	}
	return nil
}

func businessRevenuesOf(m *models.FormModel) *models.BusinessRevenuesDetails {
	if f := m.SourceOfFunds; f != nil {
		return f.BusinessRevenuesDetails
	}
	return nil
}

func thirdPartyOf(m *models.FormModel) *models.ThirdPartyFundingDetails {
	if o := m.OngoingMonitoring; o != nil {
		return o.ThirdPartyFundingDetails
	}
	return nil
}

func largeCashOf(m *models.FormModel) *models.LargeCashActivityDetails {
	if o := m.OngoingMonitoring; o != nil {
		return o.LargeCashActivityDetails
	}
	return nil
}

func pepsOf(m *models.FormModel) *models.ForeignBeneficialOwnersOrPEPsDetails {
	if o := m.OngoingMonitoring; o != nil {
		return o.ForeignBeneficialOwnersOrPEPsDetails
	}
	return nil
}
