// Package recommend maps a trainset's attributes to a recommended next-day
// service status.
//
// The decision is a priority cascade evaluated from the most to the least
// urgent rule; the first rule that matches decides the status, confidence and
// priority. Risk annotations are appended afterwards and never change the
// status. Trainsets carrying certificate or job card data are scored on the
// certificate-aware thresholds, all others on the absolute thresholds.
//
// Recommend is pure: for a fixed trainset and evaluation time it always
// returns the same result.
package recommend
