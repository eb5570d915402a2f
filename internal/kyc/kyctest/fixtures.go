// Package kyctest provides complete, valid forms for tests across the kyc
// packages. Each call returns a fresh copy that callers may mutate.
package kyctest

import "kyc-intake/internal/kyc/models"

// ValidIndividual returns a non-U.S. individual with a passport and no
// triggered risk answers.
func ValidIndividual() *models.FormModel {
	return &models.FormModel{
		CustomerType: models.CustomerTypeIndividual,
		Individual: &models.Individual{
			FullName:                "Jane Doe",
			DateOfBirth:             "1990-04-12",
			ResidentialAddress:      "1 Main Street, Springfield",
			Nationality:             "CA",
			USPerson:                models.Bool(false),
			AlienRegistrationNumber: "A123",
			IDType:                  models.IDTypePassport,
			PassportDetails: &models.PassportDetails{
				Number:         "P1234567",
				IssuingCountry: "CA",
				ExpirationDate: "2031-01-01",
			},
		},
		Relationship:      &models.Relationship{Purpose: models.PurposePersonalBanking},
		Sanctions:         quietSanctions(),
		SourceOfFunds:     &models.SourceOfFunds{Source: models.FundsSourceSalary},
		OngoingMonitoring: quietMonitoring(),
	}
}

// ValidEntity returns a legal entity with one beneficial owner operating a
// business account funded by business revenues.
func ValidEntity() *models.FormModel {
	return &models.FormModel{
		CustomerType: models.CustomerTypeEntity,
		Entity: &models.Entity{
			LegalName:          "Acme Holdings LLC",
			EntityType:         "LLC",
			RegistrationNumber: "REG-001",
			BusinessAddress:    "500 Market Street, San Francisco",
		},
		BeneficialOwnership: &models.BeneficialOwnership{
			HasOwners: models.Bool(true),
			Owners: []models.Owner{{
				Name:                "John Roe",
				DateOfBirth:         "1975-09-30",
				Address:             "9 Elm Road, Oakland",
				OwnershipPercentage: models.Float(60),
			}},
			ControlPerson: &models.ControlPerson{
				Name:        "Mary Major",
				Title:       "CEO",
				DateOfBirth: "1980-02-14",
				Address:     "12 Pine Avenue, Berkeley",
			},
		},
		Relationship: &models.Relationship{
			Purpose: models.PurposeBusinessOperating,
			BusinessDetails: &models.BusinessDetails{
				Industry:                  "Wholesale",
				NAICSCode:                 "423430",
				TransactionTypes:          []string{"ACH", "Wires"},
				MonthlyVolume:             models.MonthlyVolume50To250k,
				InternationalTransactions: models.Bool(false),
			},
		},
		Sanctions: quietSanctions(),
		SourceOfFunds: &models.SourceOfFunds{
			Source: models.FundsSourceBusinessRevenues,
			BusinessRevenuesDetails: &models.BusinessRevenuesDetails{
				NatureOfBusiness: "Computer hardware distribution",
				PrimaryClients:   "Regional retailers",
				PrimaryVendors:   "OEM manufacturers",
				HighRiskSectors:  models.Bool(false),
			},
		},
		OngoingMonitoring: quietMonitoring(),
	}
}

func quietSanctions() *models.Sanctions {
	return &models.Sanctions{
		SanctionedJurisdiction:  models.Bool(false),
		ForeignBeneficialOwners: models.Bool(false),
		InternationalWires:      models.Bool(false),
	}
}

func quietMonitoring() *models.OngoingMonitoring {
	return &models.OngoingMonitoring{
		ThirdPartyFunding:             models.Bool(false),
		LargeCashActivity:             models.Bool(false),
		ForeignBeneficialOwnersOrPEPs: models.Bool(false),
	}
}
