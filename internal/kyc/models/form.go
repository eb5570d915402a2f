package models

import (
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// FormModel is the answer set of one KYC questionnaire, organised in the six
// sections of the form.
//
// Invariants (checked by validation, not by construction):
//   - exactly one of Individual/Entity is populated and it matches CustomerType
//   - every *Details record is present only while its governing answer holds
//
// The model tolerates inconsistent states while it is being edited.
type FormModel struct {
	// Section 1: basic customer identification
	CustomerType CustomerType `json:"customerType,omitempty"`
	Individual   *Individual  `json:"individual,omitempty"`
	Entity       *Entity      `json:"entity,omitempty"`

	// Section 2: beneficial ownership
	BeneficialOwnership *BeneficialOwnership `json:"beneficialOwnership,omitempty"`

	// Section 3: nature of relationship
	Relationship *Relationship `json:"relationship,omitempty"`

	// Section 4: sanctions and geographic risk
	Sanctions *Sanctions `json:"sanctions,omitempty"`

	// Section 5: source of funds
	SourceOfFunds *SourceOfFunds `json:"sourceOfFunds,omitempty"`

	// Section 6: ongoing monitoring
	OngoingMonitoring *OngoingMonitoring `json:"ongoingMonitoring,omitempty"`
}

type Individual struct {
	FullName                string           `json:"fullName,omitempty"`
	DateOfBirth             string           `json:"dateOfBirth,omitempty"`
	ResidentialAddress      string           `json:"residentialAddress,omitempty"`
	Nationality             string           `json:"nationality,omitempty"`
	USPerson                *bool            `json:"usPerson,omitempty"`
	SSN                     string           `json:"ssn,omitempty"`
	AlienRegistrationNumber string           `json:"alienRegistrationNumber,omitempty"`
	PassportDetails         *PassportDetails `json:"passportDetails,omitempty"`
	IDType                  IDType           `json:"idType,omitempty"`
	DriverLicense           *DriverLicense   `json:"driverLicense,omitempty"`
	OtherID                 *OtherID         `json:"otherId,omitempty"`
}

type Entity struct {
	LegalName          string `json:"legalName,omitempty"`
	EntityType         string `json:"entityType,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	BusinessAddress    string `json:"businessAddress,omitempty"`
}

type PassportDetails struct {
	Number         string `json:"number,omitempty"`
	IssuingCountry string `json:"issuingCountry,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
}

type DriverLicense struct {
	Number         string `json:"number,omitempty"`
	IssuingState   string `json:"issuingState,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
}

type OtherID struct {
	Type             string `json:"type,omitempty"`
	IssuingAuthority string `json:"issuingAuthority,omitempty"`
	Number           string `json:"number,omitempty"`
	ExpirationDate   string `json:"expirationDate,omitempty"`
}

// BeneficialOwnership lists individuals owning 25% or more of an entity and
// the person who controls it.
type BeneficialOwnership struct {
	HasOwners     *bool          `json:"hasOwners,omitempty"`
	Owners        []Owner        `json:"owners,omitempty"`
	ControlPerson *ControlPerson `json:"controlPerson,omitempty"`
}

type Owner struct {
	Name                string           `json:"name,omitempty"`
	DateOfBirth         string           `json:"dateOfBirth,omitempty"`
	Address             string           `json:"address,omitempty"`
	OwnershipPercentage *float64         `json:"ownershipPercentage,omitempty"`
	IDType              IDType           `json:"idType,omitempty"`
	DriverLicense       *DriverLicense   `json:"driverLicense,omitempty"`
	Passport            *PassportDetails `json:"passport,omitempty"`
	OtherID             *OtherID         `json:"otherId,omitempty"`
}

type ControlPerson struct {
	Name          string           `json:"name,omitempty"`
	Title         string           `json:"title,omitempty"`
	DateOfBirth   string           `json:"dateOfBirth,omitempty"`
	Address       string           `json:"address,omitempty"`
	IDType        IDType           `json:"idType,omitempty"`
	DriverLicense *DriverLicense   `json:"driverLicense,omitempty"`
	Passport      *PassportDetails `json:"passport,omitempty"`
	OtherID       *OtherID         `json:"otherId,omitempty"`
}

type Relationship struct {
	Purpose         Purpose          `json:"purpose,omitempty"`
	BusinessDetails *BusinessDetails `json:"businessDetails,omitempty"`
}

type BusinessDetails struct {
	Industry                  string        `json:"industry,omitempty"`
	NAICSCode                 string        `json:"naicsCode,omitempty"`
	TransactionTypes          []string      `json:"transactionTypes,omitempty"`
	MonthlyVolume             MonthlyVolume `json:"monthlyVolume,omitempty"`
	InternationalTransactions *bool         `json:"internationalTransactions,omitempty"`
	Countries                 []string      `json:"countries,omitempty"`
}

type Sanctions struct {
	SanctionedJurisdiction         *bool                           `json:"sanctionedJurisdiction,omitempty"`
	SanctionedJurisdictionDetails  *SanctionedJurisdictionDetails  `json:"sanctionedJurisdictionDetails,omitempty"`
	ForeignBeneficialOwners        *bool                           `json:"foreignBeneficialOwners,omitempty"`
	ForeignBeneficialOwnersDetails *ForeignBeneficialOwnersDetails `json:"foreignBeneficialOwnersDetails,omitempty"`
	InternationalWires             *bool                           `json:"internationalWires,omitempty"`
	InternationalWiresDetails      *InternationalWiresDetails      `json:"internationalWiresDetails,omitempty"`
}

type SanctionedJurisdictionDetails struct {
	NatureOfInteraction string   `json:"natureOfInteraction,omitempty"`
	Counterparties      []string `json:"counterparties,omitempty"`
}

type ForeignBeneficialOwnersDetails struct {
	Country        string `json:"country,omitempty"`
	PassportNumber string `json:"passportNumber,omitempty"`
	Details        string `json:"details,omitempty"`
}

type InternationalWiresDetails struct {
	Frequency  string   `json:"frequency,omitempty"`
	Countries  []string `json:"countries,omitempty"`
	Currencies []string `json:"currencies,omitempty"`
}

type SourceOfFunds struct {
	Source                  FundsSource              `json:"source,omitempty"`
	OtherSource             string                   `json:"otherSource,omitempty"`
	BusinessRevenuesDetails *BusinessRevenuesDetails `json:"businessRevenuesDetails,omitempty"`
}

type BusinessRevenuesDetails struct {
	NatureOfBusiness      string `json:"natureOfBusiness,omitempty"`
	PrimaryClients        string `json:"primaryClients,omitempty"`
	PrimaryVendors        string `json:"primaryVendors,omitempty"`
	HighRiskSectors       *bool  `json:"highRiskSectors,omitempty"`
	HighRiskSectorDetails string `json:"highRiskSectorDetails,omitempty"`
}

type OngoingMonitoring struct {
	ThirdPartyFunding                    *bool                                 `json:"thirdPartyFunding,omitempty"`
	ThirdPartyFundingDetails             *ThirdPartyFundingDetails             `json:"thirdPartyFundingDetails,omitempty"`
	LargeCashActivity                    *bool                                 `json:"largeCashActivity,omitempty"`
	LargeCashActivityDetails             *LargeCashActivityDetails             `json:"largeCashActivityDetails,omitempty"`
	ForeignBeneficialOwnersOrPEPs        *bool                                 `json:"foreignBeneficialOwnersOrPEPs,omitempty"`
	ForeignBeneficialOwnersOrPEPsDetails *ForeignBeneficialOwnersOrPEPsDetails `json:"foreignBeneficialOwnersOrPEPsDetails,omitempty"`
}

type ThirdPartyFundingDetails struct {
	ThirdPartyName string `json:"thirdPartyName,omitempty"`
	Relationship   string `json:"relationship,omitempty"`
}

type LargeCashActivityDetails struct {
	Frequency  string `json:"frequency,omitempty"`
	Thresholds string `json:"thresholds,omitempty"`
}

// ForeignBeneficialOwnersOrPEPsDetails describes exposure to politically
// exposed persons.
type ForeignBeneficialOwnersOrPEPsDetails struct {
	Details      string `json:"details,omitempty"`
	OfficeHeld   string `json:"officeHeld,omitempty"`
	Country      string `json:"country,omitempty"`
	ExposureRisk string `json:"exposureRisk,omitempty"`
}

// Submission is the inbound envelope posted by the form.
type Submission struct {
	TaskID            string     `json:"taskId,omitempty"`
	ProcessInstanceID string     `json:"processInstanceId,omitempty"`
	FormData          *FormModel `json:"formData,omitempty"`

	// RawFormData is the formData object exactly as it was received,
	// including empty lists and keys the model does not declare.
	RawFormData json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the envelope and keeps the raw formData object.
func (s *Submission) UnmarshalJSON(data []byte) error {
	type envelope Submission
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*s = Submission(env)
	if raw := gjson.GetBytes(data, "formData"); raw.IsObject() {
		s.RawFormData = json.RawMessage(raw.Raw)
	}
	return nil
}

// Bool returns a pointer to b, for building tri-state answers.
func Bool(b bool) *bool {
	return &b
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}

// IsTrue reports whether a tri-state answer is an explicit yes.
func IsTrue(b *bool) bool {
	return b != nil && *b
}

// IsFalse reports whether a tri-state answer is an explicit no.
func IsFalse(b *bool) bool {
	return b != nil && !*b
}
