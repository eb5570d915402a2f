package models

// CustomerType selects which identity record the form carries.
// Invariant: must be individual or entity before submission.
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeEntity     CustomerType = "entity"
)

var validCustomerTypes = map[CustomerType]bool{
	CustomerTypeIndividual: true,
	CustomerTypeEntity:     true,
}

func (c CustomerType) IsValid() bool {
	return validCustomerTypes[c]
}

func (c CustomerType) String() string {
	return string(c)
}

// IDType selects which identity document accompanies a person.
type IDType string

const (
	IDTypeDriverLicense IDType = "driverLicense"
	IDTypePassport      IDType = "passport"
	IDTypeOther         IDType = "other"
)

var validIDTypes = map[IDType]bool{
	IDTypeDriverLicense: true,
	IDTypePassport:      true,
	IDTypeOther:         true,
}

func (t IDType) IsValid() bool {
	return validIDTypes[t]
}

// Purpose is the declared reason for opening the relationship.
type Purpose string

const (
	PurposePersonalBanking   Purpose = "personalBanking"
	PurposeBusinessOperating Purpose = "businessOperating"
	PurposeTradeFinance      Purpose = "tradeFinance"
	PurposeInvestments       Purpose = "investments"
	PurposeEscrow            Purpose = "escrow"
	PurposeOther             Purpose = "other"
)

var validPurposes = map[Purpose]bool{
	PurposePersonalBanking:   true,
	PurposeBusinessOperating: true,
	PurposeTradeFinance:      true,
	PurposeInvestments:       true,
	PurposeEscrow:            true,
	PurposeOther:             true,
}

func (p Purpose) IsValid() bool {
	return validPurposes[p]
}

// MonthlyVolume buckets expected monthly transaction volume.
type MonthlyVolume string

const (
	MonthlyVolumeUnder10k MonthlyVolume = "<10k"
	MonthlyVolume10To50k  MonthlyVolume = "10-50k"
	MonthlyVolume50To250k MonthlyVolume = "50-250k"
	MonthlyVolumeOver250k MonthlyVolume = "250k+"
)

var validMonthlyVolumes = map[MonthlyVolume]bool{
	MonthlyVolumeUnder10k: true,
	MonthlyVolume10To50k:  true,
	MonthlyVolume50To250k: true,
	MonthlyVolumeOver250k: true,
}

func (v MonthlyVolume) IsValid() bool {
	return validMonthlyVolumes[v]
}

// FundsSource is the declared origin of the customer's funds.
type FundsSource string

const (
	FundsSourceSalary           FundsSource = "salary"
	FundsSourceInvestments      FundsSource = "investments"
	FundsSourceBusinessRevenues FundsSource = "businessRevenues"
	FundsSourceInheritance      FundsSource = "inheritance"
	FundsSourceSaleOfAssets     FundsSource = "saleOfAssets"
	FundsSourceOther            FundsSource = "other"
)

var validFundsSources = map[FundsSource]bool{
	FundsSourceSalary:           true,
	FundsSourceInvestments:      true,
	FundsSourceBusinessRevenues: true,
	FundsSourceInheritance:      true,
	FundsSourceSaleOfAssets:     true,
	FundsSourceOther:            true,
}

func (s FundsSource) IsValid() bool {
	return validFundsSources[s]
}
