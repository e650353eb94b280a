package models

import "strings"

// CategoryOther is the fallback category for anything unrecognised.
const CategoryOther = "Other"

// DefaultCategories is the initial expense category list.
func DefaultCategories() []string {
	return []string{
		"Materials", "Sub-Contractors", "Tools", "Office", "Dump",
		"Porta John", "Fuel", "Travel", "Permits", CategoryOther,
	}
}

// NormalizeCategory maps c onto the matching entry of categories ignoring
// case, or onto CategoryOther.
func NormalizeCategory(c string, categories []string) string {
	c = strings.TrimSpace(c)
	for _, known := range categories {
		if strings.EqualFold(known, c) {
			return known
		}
	}
	return CategoryOther
}

// ContractorProfile is the branding shown in the client header.
type ContractorProfile struct {
	CompanyName string `json:"companyName"`
	LogoEmoji   string `json:"logoEmoji"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

func DefaultProfile() ContractorProfile {
	return ContractorProfile{CompanyName: "ContractorBook", LogoEmoji: "🏗️"}
}
