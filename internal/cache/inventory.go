package cache

import (
	"fmt"
	"time"
)

// Namespaces versioned with Bump. A bump orphans every key built from the old version.
const (
	NamespaceCompanies = "companies"
	NamespaceOffers    = "offers"
)

const (
	CompanyListTTL = 5 * time.Minute
	CompanyTTL     = 10 * time.Minute
	OfferTTL       = 5 * time.Minute
)

func versionKey(namespace string) string {
	return namespace + ":version"
}

// CompanyListKey caches the verified company listing.
func CompanyListKey(version int64) string {
	return fmt.Sprintf("companies:v%d:verified", version)
}

// CompanyKey caches a single public company.
func CompanyKey(version int64, id uint) string {
	return fmt.Sprintf("companies:v%d:id:%d", version, id)
}

// OfferKey caches a single public offer.
func OfferKey(version int64, id uint) string {
	return fmt.Sprintf("offers:v%d:id:%d", version, id)
}
