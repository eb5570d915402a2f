// Package transform turns a validated KYC form into the flat, typed variable
// map the workflow engine expects when an external task is completed.
//
// This is pure domain logic: no I/O, no clock, no randomness. The same form
// always produces the same map.
package transform

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"kyc-intake/internal/kyc/models"
)

// KeyCompleteFormData holds the whole form as a JSON backup.
const KeyCompleteFormData = "completeFormData"

var ErrNoFormData = errors.New("form data is required")

// Option adjusts a single Transform call.
type Option func(*options)

type options struct {
	backup json.RawMessage
}

// WithBackup stores raw, the formData object as it was received, as the
// completeFormData value. Without it, or when raw is not valid JSON, the
// backup is re-encoded from the model.
func WithBackup(raw json.RawMessage) Option {
	return func(o *options) {
		o.backup = raw
	}
}

// emission is one row of the output table: the variable is written only
// when emit holds for the form.
type emission struct {
	key   string
	emit  func(m *models.FormModel) bool
	value func(m *models.FormModel) (Variable, error)
}

// Transform builds the task variables for m. It does not validate: answers
// that are missing, or records whose governing answer does not hold, are
// left out of the map rather than reported.
func Transform(m *models.FormModel, opts ...Option) (TaskVariableMap, error) {
	if m == nil {
		return nil, ErrNoFormData
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	vars := make(TaskVariableMap, len(emissions)+1)
	for _, e := range emissions {
		if !e.emit(m) {
			continue
		}
		v, err := e.value(m)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", e.key, err)
		}
		vars[e.key] = v
	}

	backup := o.backup
	if len(backup) == 0 || !json.Valid(backup) {
		var err error
		if backup, err = json.MarshalNoEscape(m); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", KeyCompleteFormData, err)
		}
	}
	vars[KeyCompleteFormData] = Variable{Value: string(backup), Type: TypeString}

	return vars, nil
}

var emissions = concat(
	identityEmissions(),
	ownershipEmissions(),
	relationshipEmissions(),
	sanctionsEmissions(),
	fundsEmissions(),
	monitoringEmissions(),
)

func identityEmissions() []emission {
	person := func(m *models.FormModel) *models.Individual {
		if m.CustomerType != models.CustomerTypeIndividual {
			return nil
		}
		return m.Individual
	}
	company := func(m *models.FormModel) *models.Entity {
		if m.CustomerType != models.CustomerTypeEntity {
			return nil
		}
		return m.Entity
	}

	return []emission{
		str("customerType", func(m *models.FormModel) string { return string(m.CustomerType) }),
		str("fullName", field(person, func(i *models.Individual) string { return i.FullName })),
		str("dateOfBirth", field(person, func(i *models.Individual) string { return i.DateOfBirth })),
		str("residentialAddress", field(person, func(i *models.Individual) string { return i.ResidentialAddress })),
		str("nationality", field(person, func(i *models.Individual) string { return i.Nationality })),
		flag("usPerson", field(person, func(i *models.Individual) *bool { return i.USPerson })),
		str("ssn", field(person, func(i *models.Individual) string { return i.SSN })),
		str("alienRegistrationNumber", field(person, func(i *models.Individual) string { return i.AlienRegistrationNumber })),
		str("idType", field(person, func(i *models.Individual) string { return string(i.IDType) })),
		str("legalName", field(company, func(e *models.Entity) string { return e.LegalName })),
		str("entityType", field(company, func(e *models.Entity) string { return e.EntityType })),
		str("registrationNumber", field(company, func(e *models.Entity) string { return e.RegistrationNumber })),
		str("businessAddress", field(company, func(e *models.Entity) string { return e.BusinessAddress })),
	}
}

// Beneficial ownership is only collected for legal entities.
func ownershipEmissions() []emission {
	ownership := func(m *models.FormModel) *models.BeneficialOwnership {
		if m.CustomerType != models.CustomerTypeEntity {
			return nil
		}
		return m.BeneficialOwnership
	}
	owners := func(m *models.FormModel) []models.Owner {
		if bo := ownership(m); bo != nil && models.IsTrue(bo.HasOwners) {
			return bo.Owners
		}
		return nil
	}

	return []emission{
		flag("hasOwners", field(ownership, func(b *models.BeneficialOwnership) *bool { return b.HasOwners })),
		blob("owners", func(m *models.FormModel) bool { return len(owners(m)) > 0 }, owners),
		detail("controlPerson", present, field(ownership, func(b *models.BeneficialOwnership) *models.ControlPerson { return b.ControlPerson })),
	}
}

func relationshipEmissions() []emission {
	operating := func(m *models.FormModel) bool {
		return m.Relationship != nil && m.Relationship.Purpose == models.PurposeBusinessOperating
	}

	return []emission{
		str("purpose", field(relationshipOf, func(r *models.Relationship) string { return string(r.Purpose) })),
		detail("businessDetails", operating, field(relationshipOf, func(r *models.Relationship) *models.BusinessDetails { return r.BusinessDetails })),
	}
}

func sanctionsEmissions() []emission {
	jurisdiction := field(sanctionsOf, func(s *models.Sanctions) *bool { return s.SanctionedJurisdiction })
	foreignOwners := field(sanctionsOf, func(s *models.Sanctions) *bool { return s.ForeignBeneficialOwners })
	wires := field(sanctionsOf, func(s *models.Sanctions) *bool { return s.InternationalWires })

	return []emission{
		flag("sanctionedJurisdiction", jurisdiction),
		detail("sanctionedJurisdictionDetails", yes(jurisdiction),
			field(sanctionsOf, func(s *models.Sanctions) *models.SanctionedJurisdictionDetails { return s.SanctionedJurisdictionDetails })),
		flag("foreignBeneficialOwners", foreignOwners),
		detail("foreignBeneficialOwnersDetails", yes(foreignOwners),
			field(sanctionsOf, func(s *models.Sanctions) *models.ForeignBeneficialOwnersDetails { return s.ForeignBeneficialOwnersDetails })),
		flag("internationalWires", wires),
		detail("internationalWiresDetails", yes(wires),
			field(sanctionsOf, func(s *models.Sanctions) *models.InternationalWiresDetails { return s.InternationalWiresDetails })),
	}
}

func fundsEmissions() []emission {
	source := func(src models.FundsSource) func(m *models.FormModel) bool {
		return func(m *models.FormModel) bool { return m.SourceOfFunds != nil && m.SourceOfFunds.Source == src }
	}
	other := field(fundsOf, func(f *models.SourceOfFunds) string { return f.OtherSource })

	return []emission{
		str("sourceOfFunds", field(fundsOf, func(f *models.SourceOfFunds) string { return string(f.Source) })),
		str("otherSource", func(m *models.FormModel) string {
			if !source(models.FundsSourceOther)(m) {
				return ""
			}
			return other(m)
		}),
		detail("businessRevenuesDetails", source(models.FundsSourceBusinessRevenues),
			field(fundsOf, func(f *models.SourceOfFunds) *models.BusinessRevenuesDetails { return f.BusinessRevenuesDetails })),
	}
}

func monitoringEmissions() []emission {
	thirdParty := field(monitoringOf, func(o *models.OngoingMonitoring) *bool { return o.ThirdPartyFunding })
	cash := field(monitoringOf, func(o *models.OngoingMonitoring) *bool { return o.LargeCashActivity })
	peps := field(monitoringOf, func(o *models.OngoingMonitoring) *bool { return o.ForeignBeneficialOwnersOrPEPs })

	return []emission{
		flag("thirdPartyFunding", thirdParty),
		detail("thirdPartyFundingDetails", yes(thirdParty),
			field(monitoringOf, func(o *models.OngoingMonitoring) *models.ThirdPartyFundingDetails { return o.ThirdPartyFundingDetails })),
		flag("largeCashActivity", cash),
		detail("largeCashActivityDetails", yes(cash),
			field(monitoringOf, func(o *models.OngoingMonitoring) *models.LargeCashActivityDetails { return o.LargeCashActivityDetails })),
		flag("foreignBeneficialOwnersOrPEPs", peps),
		detail("foreignBeneficialOwnersOrPEPsDetails", yes(peps),
			field(monitoringOf, func(o *models.OngoingMonitoring) *models.ForeignBeneficialOwnersOrPEPsDetails {
				return o.ForeignBeneficialOwnersOrPEPsDetails
			})),
	}
}

// str emits a String variable for a non-empty answer.
func str(key string, get func(*models.FormModel) string) emission {
	return emission{
		key:  key,
		emit: func(m *models.FormModel) bool { return get(m) != "" },
		value: func(m *models.FormModel) (Variable, error) {
			return Variable{Value: get(m), Type: TypeString}, nil
		},
	}
}

// flag emits a Boolean variable for an answered yes/no question.
func flag(key string, get func(*models.FormModel) *bool) emission {
	return emission{
		key:  key,
		emit: func(m *models.FormModel) bool { return get(m) != nil },
		value: func(m *models.FormModel) (Variable, error) {
			return Variable{Value: *get(m), Type: TypeBoolean}, nil
		},
	}
}

// detail emits a record as a JSON string when when holds and the record is
// present.
func detail[T any](key string, when func(*models.FormModel) bool, get func(*models.FormModel) *T) emission {
	return blob(key, func(m *models.FormModel) bool { return when(m) && get(m) != nil }, get)
}

func blob[T any](key string, emit func(*models.FormModel) bool, get func(*models.FormModel) T) emission {
	return emission{
		key:  key,
		emit: emit,
		value: func(m *models.FormModel) (Variable, error) {
			raw, err := json.MarshalNoEscape(get(m))
			if err != nil {
				return Variable{}, err
			}
			return Variable{Value: string(raw), Type: TypeString}, nil
		},
	}
}

// field reads through a record that may be absent; an absent record yields
// the zero value.
func field[R, V any](record func(*models.FormModel) *R, get func(*R) V) func(*models.FormModel) V {
	return func(m *models.FormModel) V {
		if r := record(m); r != nil {
			return get(r)
		}
		var zero V
		return zero
	}
}

func yes(get func(*models.FormModel) *bool) func(*models.FormModel) bool {
	return func(m *models.FormModel) bool { return models.IsTrue(get(m)) }
}

func present(*models.FormModel) bool { return true }

func relationshipOf(m *models.FormModel) *models.Relationship { return m.Relationship }
func sanctionsOf(m *models.FormModel) *models.Sanctions { return m.Sanctions }
func fundsOf(m *models.FormModel) *models.SourceOfFunds { return m.SourceOfFunds }
func monitoringOf(m *models.FormModel) *models.OngoingMonitoring { return m.OngoingMonitoring }

func concat(groups ...[]emission) []emission {
	var out []emission
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
