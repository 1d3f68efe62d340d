// Package extract turns one fetched listing page into validated product records.
//
// Each product card goes through four steps: the raw title, price, and image
// elements are located (pre-validation rejects cards with any element absent),
// the raw elements are cleaned into typed values, the cleaned values are checked
// again (post-validation rejects empty titles, unparsable or zero prices, and
// missing image URLs), and only then is a catalog.Product emitted. Rejected
// cards are logged and skipped; they never abort the page.
//
// Selectors are fixed to the WooCommerce markup of the target shop.
package extract
