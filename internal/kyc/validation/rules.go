package validation

import (
	"fmt"
	"strings"

	"kyc-intake/internal/kyc/models"
)

// Rules is the requirement table for sections 1 through 6, in display order.
var Rules = concat(
	identityRules(),
	ownershipRules(),
	relationshipRules(),
	sanctionsRules(),
	fundsRules(),
	monitoringRules(),
)

const (
	sectionIdentity = iota + 1
	sectionOwnership
	sectionRelationship
	sectionSanctions
	sectionFunds
	sectionMonitoring
)

// Section 1: basic customer identification.
func identityRules() []Rule {
	s := sectionIdentity
	person := func(m *models.FormModel) bool {
		return m.CustomerType == models.CustomerTypeIndividual && m.Individual != nil
	}
	company := func(m *models.FormModel) bool {
		return m.CustomerType == models.CustomerTypeEntity && m.Entity != nil
	}
	usPerson := func(m *models.FormModel) bool { return person(m) && models.IsTrue(m.Individual.USPerson) }
	foreigner := func(m *models.FormModel) bool { return person(m) && models.IsFalse(m.Individual.USPerson) }
	ind := func(f func(*models.Individual) string) func(*models.FormModel) string {
		return text(individualOf, f)
	}
	ent := func(f func(*models.Entity) string) func(*models.FormModel) string {
		return text(entityOf, f)
	}

	rules := []Rule{
		{
			Section: s, Field: "customerType", When: always,
			Violated: func(m *models.FormModel) bool { return !m.CustomerType.IsValid() },
			Message:  "Please select customer type",
		},
		{
			Section: s, Field: "customerType", When: always,
			Violated: func(m *models.FormModel) bool { return m.Individual != nil && m.Entity != nil },
			Message:  "Provide either individual or entity details, not both",
		},
		{
			Section: s, Field: "customerType",
			When: func(m *models.FormModel) bool { return m.Individual == nil || m.Entity == nil },
			Violated: func(m *models.FormModel) bool {
				return (m.CustomerType == models.CustomerTypeIndividual && m.Entity != nil) ||
					(m.CustomerType == models.CustomerTypeEntity && m.Individual != nil)
			},
			Message: "Identity details do not match customer type",
		},
		{
			Section: s, Field: "individual",
			When:     func(m *models.FormModel) bool { return m.CustomerType == models.CustomerTypeIndividual },
			Violated: func(m *models.FormModel) bool { return m.Individual == nil },
			Message:  "Individual details are required",
		},
		requireText(s, "individual.fullName", person, ind(func(i *models.Individual) string { return i.FullName }), "Full name is required"),
		requireText(s, "individual.dateOfBirth", person, ind(func(i *models.Individual) string { return i.DateOfBirth }), "Date of birth is required"),
		requireText(s, "individual.residentialAddress", person, ind(func(i *models.Individual) string { return i.ResidentialAddress }), "Address is required"),
		requireText(s, "individual.nationality", person, ind(func(i *models.Individual) string { return i.Nationality }), "Nationality is required"),
		requireAnswer(s, "individual.usPerson", person, func(m *models.FormModel) *bool { return m.Individual.USPerson }, "Please select U.S. person status"),
		requireText(s, "individual.ssn", usPerson, ind(func(i *models.Individual) string { return i.SSN }), "SSN is required for U.S. persons"),
		requireText(s, "individual.alienRegistrationNumber", foreigner, ind(func(i *models.Individual) string { return i.AlienRegistrationNumber }), "Alien registration number is required for non-U.S. persons"),
		{
			Section: s, Field: "individual.idType", When: person,
			Violated: func(m *models.FormModel) bool { return !m.Individual.IDType.IsValid() },
			Message:  "Please select ID type",
		},
	}

	rules = append(rules, documentRules(s, "individual", "passportDetails", person, func(m *models.FormModel) documents {
		i := m.Individual
		return documents{idType: i.IDType, license: i.DriverLicense, passport: i.PassportDetails, other: i.OtherID}
	})...)

	return append(rules,
		Rule{
			Section: s, Field: "entity",
			When:     func(m *models.FormModel) bool { return m.CustomerType == models.CustomerTypeEntity },
			Violated: func(m *models.FormModel) bool { return m.Entity == nil },
			Message:  "Entity details are required",
		},
		requireText(s, "entity.legalName", company, ent(func(e *models.Entity) string { return e.LegalName }), "Legal name is required"),
		requireText(s, "entity.entityType", company, ent(func(e *models.Entity) string { return e.EntityType }), "Entity type is required"),
		requireText(s, "entity.registrationNumber", company, ent(func(e *models.Entity) string { return e.RegistrationNumber }), "Registration number is required"),
		requireText(s, "entity.businessAddress", company, ent(func(e *models.Entity) string { return e.BusinessAddress }), "Business address is required"),
	)
}

// Section 2: beneficial ownership, required for legal entities.
func ownershipRules() []Rule {
	s := sectionOwnership
	entity := func(m *models.FormModel) bool { return m.CustomerType == models.CustomerTypeEntity }
	withOwners := func(m *models.FormModel) bool {
		return entity(m) && m.BeneficialOwnership != nil && models.IsTrue(m.BeneficialOwnership.HasOwners)
	}
	cp := func(f func(*models.ControlPerson) string) func(*models.FormModel) string {
		return text(controlPersonOf, f)
	}

	rules := []Rule{
		{
			Section: s, Field: "beneficialOwnership.hasOwners", When: entity,
			Violated: func(m *models.FormModel) bool {
				return m.BeneficialOwnership == nil || m.BeneficialOwnership.HasOwners == nil
			},
			Message: "Please select ownership status",
		},
		{
			Section: s, Field: "beneficialOwnership.owners", When: withOwners,
			Violated: func(m *models.FormModel) bool { return len(m.BeneficialOwnership.Owners) == 0 },
			Message:  "At least one beneficial owner is required",
		},
		{
			Section: s, Field: "beneficialOwnership.owners", When: entity,
			Violated: func(m *models.FormModel) bool {
				return m.BeneficialOwnership != nil && len(m.BeneficialOwnership.Owners) > models.MaxOwners
			},
			Message: fmt.Sprintf("No more than %d beneficial owners may be listed", models.MaxOwners),
		},
		{
			Section: s, Field: "beneficialOwnership.owners",
			Expand: func(m *models.FormModel) []Rule {
				if m.BeneficialOwnership == nil || len(m.BeneficialOwnership.Owners) > models.MaxOwners {
					return nil
				}
				var out []Rule
				for i := range m.BeneficialOwnership.Owners {
					out = append(out, ownerRules(i, withOwners)...)
				}
				return out
			},
		},
		requireText(s, "beneficialOwnership.controlPerson.name", entity, cp(func(c *models.ControlPerson) string { return c.Name }), "Control person name is required"),
		requireText(s, "beneficialOwnership.controlPerson.title", entity, cp(func(c *models.ControlPerson) string { return c.Title }), "Title is required"),
		requireText(s, "beneficialOwnership.controlPerson.dateOfBirth", entity, cp(func(c *models.ControlPerson) string { return c.DateOfBirth }), "Date of birth is required"),
		requireText(s, "beneficialOwnership.controlPerson.address", entity, cp(func(c *models.ControlPerson) string { return c.Address }), "Address is required"),
	}

	controlPersonListed := func(m *models.FormModel) bool { return entity(m) && controlPersonOf(m) != nil }
	return append(rules, documentRules(s, "beneficialOwnership.controlPerson", "passport", controlPersonListed, func(m *models.FormModel) documents {
		c := controlPersonOf(m)
		return documents{idType: c.IDType, license: c.DriverLicense, passport: c.Passport, other: c.OtherID}
	})...)
}

// ownerRules is the per-owner template instantiated for owner i.
func ownerRules(i int, when Guard) []Rule {
	s := sectionOwnership
	prefix := fmt.Sprintf("beneficialOwnership.owners.%d", i)
	owner := func(m *models.FormModel) *models.Owner {
		if bo := m.BeneficialOwnership; bo != nil && i < len(bo.Owners) {
			return &bo.Owners[i]
		}
		return nil
	}
	listed := func(m *models.FormModel) bool { return when(m) && owner(m) != nil }
	field := func(f func(*models.Owner) string) func(*models.FormModel) string {
		return text(owner, f)
	}

	rules := []Rule{
		requireText(s, prefix+".name", listed, field(func(o *models.Owner) string { return o.Name }), "Owner name is required"),
		requireText(s, prefix+".dateOfBirth", listed, field(func(o *models.Owner) string { return o.DateOfBirth }), "Date of birth is required"),
		requireText(s, prefix+".address", listed, field(func(o *models.Owner) string { return o.Address }), "Address is required"),
		{
			Section: s, Field: prefix + ".ownershipPercentage", When: listed,
			Violated: func(m *models.FormModel) bool { return owner(m).OwnershipPercentage == nil },
			Message:  "Ownership percentage is required",
		},
		{
			Section: s, Field: prefix + ".ownershipPercentage",
			When: func(m *models.FormModel) bool { return listed(m) && owner(m).OwnershipPercentage != nil },
			Violated: func(m *models.FormModel) bool {
				p := *owner(m).OwnershipPercentage
				return p < 25 || p > 100
			},
			Message: "Ownership percentage must be between 25 and 100",
		},
	}

	return append(rules, documentRules(s, prefix, "passport", listed, func(m *models.FormModel) documents {
		o := owner(m)
		return documents{idType: o.IDType, license: o.DriverLicense, passport: o.Passport, other: o.OtherID}
	})...)
}

// Section 3: nature of relationship.
func relationshipRules() []Rule {
	s := sectionRelationship
	operating := func(m *models.FormModel) bool {
		return m.Relationship != nil && m.Relationship.Purpose == models.PurposeBusinessOperating
	}
	international := func(m *models.FormModel) bool {
		bd := businessDetailsOf(m)
		return operating(m) && bd != nil && models.IsTrue(bd.InternationalTransactions)
	}

	return []Rule{
		{
			Section: s, Field: "relationship.purpose", When: always,
			Violated: func(m *models.FormModel) bool { return m.Relationship == nil || !m.Relationship.Purpose.IsValid() },
			Message:  "Please select purpose",
		},
		requireText(s, "relationship.businessDetails.industry", operating,
			text(businessDetailsOf, func(b *models.BusinessDetails) string { return b.Industry }),
			"Industry is required for business accounts"),
		{
			Section: s, Field: "relationship.businessDetails.monthlyVolume", When: operating,
			Violated: func(m *models.FormModel) bool {
				bd := businessDetailsOf(m)
				return bd == nil || !bd.MonthlyVolume.IsValid()
			},
			Message: "Monthly volume is required",
		},
		{
			Section: s, Field: "relationship.businessDetails.countries", When: international,
			Violated: func(m *models.FormModel) bool { return len(businessDetailsOf(m).Countries) == 0 },
			Message:  "Countries are required for international transactions",
		},
	}
}

// Section 4: sanctions and geographic risk.
func sanctionsRules() []Rule {
	s := sectionSanctions
	flag := func(get func(*models.Sanctions) *bool) func(*models.FormModel) *bool {
		return func(m *models.FormModel) *bool {
			if m.Sanctions == nil {
				return nil
			}
			return get(m.Sanctions)
		}
	}
	jurisdiction := flag(func(x *models.Sanctions) *bool { return x.SanctionedJurisdiction })
	foreignOwners := flag(func(x *models.Sanctions) *bool { return x.ForeignBeneficialOwners })
	wires := flag(func(x *models.Sanctions) *bool { return x.InternationalWires })
	yes := func(get func(*models.FormModel) *bool) Guard {
		return func(m *models.FormModel) bool { return models.IsTrue(get(m)) }
	}

	return []Rule{
		requireAnswer(s, "sanctions.sanctionedJurisdiction", always, jurisdiction, "Please answer the sanctioned jurisdiction question"),
		requireText(s, "sanctions.sanctionedJurisdictionDetails.natureOfInteraction", yes(jurisdiction),
			text(sanctionedJurisdictionOf, func(d *models.SanctionedJurisdictionDetails) string { return d.NatureOfInteraction }),
			"Nature of interaction is required"),
		requireAnswer(s, "sanctions.foreignBeneficialOwners", always, foreignOwners, "Please answer the foreign beneficial owners question"),
		requireText(s, "sanctions.foreignBeneficialOwnersDetails.country", yes(foreignOwners),
			text(foreignOwnersOf, func(d *models.ForeignBeneficialOwnersDetails) string { return d.Country }),
			"Country is required"),
		requireText(s, "sanctions.foreignBeneficialOwnersDetails.passportNumber", yes(foreignOwners),
			text(foreignOwnersOf, func(d *models.ForeignBeneficialOwnersDetails) string { return d.PassportNumber }),
			"Passport number is required"),
		requireText(s, "sanctions.foreignBeneficialOwnersDetails.details", yes(foreignOwners),
			text(foreignOwnersOf, func(d *models.ForeignBeneficialOwnersDetails) string { return d.Details }),
			"Details are required"),
		requireAnswer(s, "sanctions.internationalWires", always, wires, "Please answer the international wires question"),
		requireText(s, "sanctions.internationalWiresDetails.frequency", yes(wires),
			text(wiresOf, func(d *models.InternationalWiresDetails) string { return d.Frequency }),
			"Frequency is required"),
	}
}

// Section 5: source of funds.
func fundsRules() []Rule {
	s := sectionFunds
	source := func(src models.FundsSource) Guard {
		return func(m *models.FormModel) bool { return m.SourceOfFunds != nil && m.SourceOfFunds.Source == src }
	}
	revenues := source(models.FundsSourceBusinessRevenues)
	highRisk := func(m *models.FormModel) bool {
		d := businessRevenuesOf(m)
		return revenues(m) && d != nil && models.IsTrue(d.HighRiskSectors)
	}
	rev := func(f func(*models.BusinessRevenuesDetails) string) func(*models.FormModel) string {
		return text(businessRevenuesOf, f)
	}

	return []Rule{
		{
			Section: s, Field: "sourceOfFunds.source", When: always,
			Violated: func(m *models.FormModel) bool { return m.SourceOfFunds == nil || !m.SourceOfFunds.Source.IsValid() },
			Message:  "Please select source of funds",
		},
		requireText(s, "sourceOfFunds.otherSource", source(models.FundsSourceOther),
			func(m *models.FormModel) string { return m.SourceOfFunds.OtherSource },
			"Please specify other source"),
		requireText(s, "sourceOfFunds.businessRevenuesDetails.natureOfBusiness", revenues,
			rev(func(d *models.BusinessRevenuesDetails) string { return d.NatureOfBusiness }),
			"Nature of business is required"),
		requireText(s, "sourceOfFunds.businessRevenuesDetails.primaryClients", revenues,
			rev(func(d *models.BusinessRevenuesDetails) string { return d.PrimaryClients }),
			"Primary clients information is required"),
		requireText(s, "sourceOfFunds.businessRevenuesDetails.highRiskSectorDetails", highRisk,
			rev(func(d *models.BusinessRevenuesDetails) string { return d.HighRiskSectorDetails }),
			"High-risk sector details are required"),
	}
}

// Section 6: ongoing monitoring.
func monitoringRules() []Rule {
	s := sectionMonitoring
	flag := func(get func(*models.OngoingMonitoring) *bool) func(*models.FormModel) *bool {
		return func(m *models.FormModel) *bool {
			if m.OngoingMonitoring == nil {
				return nil
			}
			return get(m.OngoingMonitoring)
		}
	}
	thirdParty := flag(func(x *models.OngoingMonitoring) *bool { return x.ThirdPartyFunding })
	cash := flag(func(x *models.OngoingMonitoring) *bool { return x.LargeCashActivity })
	peps := flag(func(x *models.OngoingMonitoring) *bool { return x.ForeignBeneficialOwnersOrPEPs })
	yes := func(get func(*models.FormModel) *bool) Guard {
		return func(m *models.FormModel) bool { return models.IsTrue(get(m)) }
	}
	pep := func(f func(*models.ForeignBeneficialOwnersOrPEPsDetails) string) func(*models.FormModel) string {
		return text(pepsOf, f)
	}

	return []Rule{
		requireAnswer(s, "ongoingMonitoring.thirdPartyFunding", always, thirdParty, "Please answer the third-party funding question"),
		requireText(s, "ongoingMonitoring.thirdPartyFundingDetails.thirdPartyName", yes(thirdParty),
			text(thirdPartyOf, func(d *models.ThirdPartyFundingDetails) string { return d.ThirdPartyName }),
			"Third party name is required"),
		requireText(s, "ongoingMonitoring.thirdPartyFundingDetails.relationship", yes(thirdParty),
			text(thirdPartyOf, func(d *models.ThirdPartyFundingDetails) string { return d.Relationship }),
			"Relationship is required"),
		requireAnswer(s, "ongoingMonitoring.largeCashActivity", always, cash, "Please answer the large cash activity question"),
		requireText(s, "ongoingMonitoring.largeCashActivityDetails.frequency", yes(cash),
			text(largeCashOf, func(d *models.LargeCashActivityDetails) string { return d.Frequency }),
			"Frequency is required"),
		requireText(s, "ongoingMonitoring.largeCashActivityDetails.thresholds", yes(cash),
			text(largeCashOf, func(d *models.LargeCashActivityDetails) string { return d.Thresholds }),
			"Thresholds are required"),
		requireAnswer(s, "ongoingMonitoring.foreignBeneficialOwnersOrPEPs", always, peps, "Please answer the politically exposed persons question"),
		requireText(s, "ongoingMonitoring.foreignBeneficialOwnersOrPEPsDetails.details", yes(peps),
			pep(func(d *models.ForeignBeneficialOwnersOrPEPsDetails) string { return d.Details }), "Details are required"),
		requireText(s, "ongoingMonitoring.foreignBeneficialOwnersOrPEPsDetails.officeHeld", yes(peps),
			pep(func(d *models.ForeignBeneficialOwnersOrPEPsDetails) string { return d.OfficeHeld }), "Office held is required"),
		requireText(s, "ongoingMonitoring.foreignBeneficialOwnersOrPEPsDetails.country", yes(peps),
			pep(func(d *models.ForeignBeneficialOwnersOrPEPsDetails) string { return d.Country }), "Country is required"),
		requireText(s, "ongoingMonitoring.foreignBeneficialOwnersOrPEPsDetails.exposureRisk", yes(peps),
			pep(func(d *models.ForeignBeneficialOwnersOrPEPsDetails) string { return d.ExposureRisk }), "Exposure risk is required"),
	}
}

// documents is the identity document set shared by individuals, owners and
// control persons.
type documents struct {
	idType   models.IDType
	license  *models.DriverLicense
	passport *models.PassportDetails
	other    *models.OtherID
}

// documentRules requires the sub-fields of whichever document idType selects.
// Passport details sit under passportKey, which differs between individuals
// and owners.
func documentRules(s int, prefix, passportKey string, when Guard, docs func(*models.FormModel) documents) []Rule {
	is := func(t models.IDType) Guard {
		return func(m *models.FormModel) bool { return when(m) && docs(m).idType == t }
	}
	license := func(f func(*models.DriverLicense) string) func(*models.FormModel) string {
		return text(func(m *models.FormModel) *models.DriverLicense { return docs(m).license }, f)
	}
	passport := func(f func(*models.PassportDetails) string) func(*models.FormModel) string {
		return text(func(m *models.FormModel) *models.PassportDetails { return docs(m).passport }, f)
	}
	other := func(f func(*models.OtherID) string) func(*models.FormModel) string {
		return text(func(m *models.FormModel) *models.OtherID { return docs(m).other }, f)
	}
	dl, pp, ot := is(models.IDTypeDriverLicense), is(models.IDTypePassport), is(models.IDTypeOther)

	return []Rule{
		requireText(s, prefix+".driverLicense.number", dl, license(func(d *models.DriverLicense) string { return d.Number }), "License number is required"),
		requireText(s, prefix+".driverLicense.issuingState", dl, license(func(d *models.DriverLicense) string { return d.IssuingState }), "Issuing state is required"),
		requireText(s, prefix+".driverLicense.expirationDate", dl, license(func(d *models.DriverLicense) string { return d.ExpirationDate }), "Expiration date is required"),
		requireText(s, prefix+"."+passportKey+".number", pp, passport(func(d *models.PassportDetails) string { return d.Number }), "Passport number is required"),
		requireText(s, prefix+"."+passportKey+".issuingCountry", pp, passport(func(d *models.PassportDetails) string { return d.IssuingCountry }), "Issuing country is required"),
		requireText(s, prefix+"."+passportKey+".expirationDate", pp, passport(func(d *models.PassportDetails) string { return d.ExpirationDate }), "Expiration date is required"),
		requireText(s, prefix+".otherId.type", ot, other(func(d *models.OtherID) string { return d.Type }), "ID type is required"),
		requireText(s, prefix+".otherId.issuingAuthority", ot, other(func(d *models.OtherID) string { return d.IssuingAuthority }), "Issuing authority is required"),
		requireText(s, prefix+".otherId.number", ot, other(func(d *models.OtherID) string { return d.Number }), "ID number is required"),
		requireText(s, prefix+".otherId.expirationDate", ot, other(func(d *models.OtherID) string { return d.ExpirationDate }), "Expiration date is required"),
	}
}

func requireText(s int, field string, when Guard, get func(*models.FormModel) string, msg string) Rule {
	return Rule{
		Section:  s,
		Field:    field,
		When:     when,
		Violated: func(m *models.FormModel) bool { return strings.TrimSpace(get(m)) == "" },
		Message:  msg,
	}
}

func requireAnswer(s int, field string, when Guard, get func(*models.FormModel) *bool, msg string) Rule {
	return Rule{
		Section:  s,
		Field:    field,
		When:     when,
		Violated: func(m *models.FormModel) bool { return get(m) == nil },
		Message:  msg,
	}
}

// text lifts a field accessor over a record that may be absent; an absent
// record reads as an empty answer.
func text[T any](record func(*models.FormModel) *T, field func(*T) string) func(*models.FormModel) string {
	return func(m *models.FormModel) string {
		if r := record(m); r != nil {
			return field(r)
		}
		return ""
	}
}

func always(*models.FormModel) bool { return true }

func concat(groups ...[]Rule) []Rule {
	var out []Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
